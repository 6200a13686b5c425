package controllers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vnkt045/LekhyaAI-sub003/api/responses"
	"github.com/vnkt045/LekhyaAI-sub003/api/validators"
	"github.com/vnkt045/LekhyaAI-sub003/internal/audit"
	"github.com/vnkt045/LekhyaAI-sub003/pkg/db/models"
	"github.com/vnkt045/LekhyaAI-sub003/pkg/enums"
	pkgerrors "github.com/vnkt045/LekhyaAI-sub003/pkg/errors"
	"github.com/vnkt045/LekhyaAI-sub003/pkg/logger"
	"github.com/vnkt045/LekhyaAI-sub003/pkg/pagination"
)

const formatCSV = "csv"

type auditLogResponse struct {
	ID          uuid.UUID       `json:"id"`
	EntityType  string          `json:"entity_type"`
	EntityID    uuid.UUID       `json:"entity_id"`
	Action      string          `json:"action"`
	OldValue    json.RawMessage `json:"old_value,omitempty"`
	NewValue    json.RawMessage `json:"new_value,omitempty"`
	UserID      *uuid.UUID      `json:"user_id,omitempty"`
	UserName    string          `json:"user_name,omitempty"`
	UserEmail   string          `json:"user_email,omitempty"`
	Description string          `json:"description,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

func toAuditLogResponse(log *models.AuditLog) auditLogResponse {
	return auditLogResponse{
		ID:          log.ID,
		EntityType:  log.EntityType,
		EntityID:    log.EntityID,
		Action:      string(log.Action),
		OldValue:    log.OldValue,
		NewValue:    log.NewValue,
		UserID:      log.UserID,
		UserName:    log.UserName,
		UserEmail:   log.UserEmail,
		Description: log.Description,
		CreatedAt:   log.CreatedAt,
	}
}

type auditLogListResponse struct {
	Items  []auditLogResponse `json:"items"`
	Cursor string             `json:"cursor,omitempty"`
}

// AuditLogList returns the filtered audit trail, or streams it as CSV with
// ?format=csv.
func AuditLogList(svc audit.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, err := tenantFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := audit.ListParams{TenantID: tenantID}
		params.EntityType = strings.TrimSpace(r.URL.Query().Get("entityType"))
		if raw := strings.TrimSpace(r.URL.Query().Get("entityId")); raw != "" {
			entityID, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid entity id"))
				return
			}
			params.EntityID = &entityID
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("action")); raw != "" {
			action, err := enums.ParseAuditAction(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid action"))
				return
			}
			params.Action = &action
		}
		if params.From, err = queryDate(r, "from"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if params.To, err = queryDate(r, "to"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format"))) == formatCSV {
			w.Header().Set("Content-Type", "text/csv")
			w.Header().Set("Content-Disposition", `attachment; filename="audit-logs.csv"`)
			if err := svc.ExportCSV(r.Context(), params, w); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
			}
			return
		}

		if params.Limit, err = validators.ParseQueryInt(r, "limit", 0, 1, pagination.MaxLimit); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params.Cursor = strings.TrimSpace(r.URL.Query().Get("cursor"))

		result, err := svc.List(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := auditLogListResponse{
			Items:  make([]auditLogResponse, 0, len(result.Items)),
			Cursor: result.Cursor,
		}
		for i := range result.Items {
			out.Items = append(out.Items, toAuditLogResponse(&result.Items[i]))
		}
		responses.WriteSuccess(w, out)
	}
}

package audit

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"io"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vnkt045/LekhyaAI-sub003/pkg/db/models"
	"github.com/vnkt045/LekhyaAI-sub003/pkg/enums"
	pkgerrors "github.com/vnkt045/LekhyaAI-sub003/pkg/errors"
	"github.com/vnkt045/LekhyaAI-sub003/pkg/pagination"
)

// exportPageSize bounds how many rows each CSV export query pulls.
const exportPageSize = 500

// Service defines append and read operations over the audit trail.
type Service interface {
	Record(ctx context.Context, input RecordInput) (*models.AuditLog, error)
	RecordTx(ctx context.Context, tx *gorm.DB, input RecordInput) error
	List(ctx context.Context, params ListParams) (*ListResult, error)
	ExportCSV(ctx context.Context, params ListParams, w io.Writer) error
}

type service struct {
	repo Repository
}

// Actor identifies who performed an audited mutation.
type Actor struct {
	UserID uuid.UUID
	Name   string
	Email  string
}

// RecordInput captures one audit trail entry. OldValue and NewValue accept
// any JSON-marshalable snapshot of the entity before and after the change.
type RecordInput struct {
	TenantID    uuid.UUID
	EntityType  string
	EntityID    uuid.UUID
	Action      enums.AuditAction
	OldValue    any
	NewValue    any
	Actor       Actor
	Description string
}

// ListParams configures filtering and pagination for audit reads.
type ListParams struct {
	TenantID   uuid.UUID
	EntityType string
	EntityID   *uuid.UUID
	Action     *enums.AuditAction
	From       *time.Time
	To         *time.Time
	Limit      int
	Cursor     string
}

// ListResult wraps returned audit rows and the cursor for the next page.
type ListResult struct {
	Items  []models.AuditLog `json:"items"`
	Cursor string            `json:"cursor"`
}

// NewService wires the audit service with its repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "audit repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Record(ctx context.Context, input RecordInput) (*models.AuditLog, error) {
	log, err := buildLog(input)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, log); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert audit log")
	}
	return log, nil
}

// RecordTx appends an audit row using the caller's open transaction.
func (s *service) RecordTx(ctx context.Context, tx *gorm.DB, input RecordInput) error {
	log, err := buildLog(input)
	if err != nil {
		return err
	}
	if err := s.repo.WithTx(tx).Create(ctx, log); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert audit log")
	}
	return nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	query, err := buildListParams(params)
	if err != nil {
		return nil, err
	}

	rows, next, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list audit logs")
	}

	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}
	return &ListResult{Items: rows, Cursor: cursor}, nil
}

// ExportCSV streams the filtered audit trail as CSV, oldest page of filters
// first within the usual newest-first ordering.
func (s *service) ExportCSV(ctx context.Context, params ListParams, w io.Writer) error {
	query, err := buildListParams(params)
	if err != nil {
		return err
	}
	query.Limit = exportPageSize
	query.Cursor = nil

	writer := csv.NewWriter(w)
	header := []string{"created_at", "entity_type", "entity_id", "action", "user_name", "user_email", "description", "old_value", "new_value"}
	if err := writer.Write(header); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write csv header")
	}

	for {
		rows, next, err := s.repo.List(ctx, query)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "export audit logs")
		}
		for _, row := range rows {
			record := []string{
				row.CreatedAt.UTC().Format(time.RFC3339),
				row.EntityType,
				row.EntityID.String(),
				string(row.Action),
				row.UserName,
				row.UserEmail,
				row.Description,
				string(row.OldValue),
				string(row.NewValue),
			}
			if err := writer.Write(record); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write csv row")
			}
		}
		if next == nil {
			break
		}
		query.Cursor = next
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "flush csv")
	}
	return nil
}

func buildLog(input RecordInput) (*models.AuditLog, error) {
	if input.TenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id required")
	}
	if input.EntityType == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "entity type required")
	}
	if input.EntityID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "entity id required")
	}
	if !input.Action.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid audit action")
	}

	oldValue, err := marshalSnapshot(input.OldValue)
	if err != nil {
		return nil, err
	}
	newValue, err := marshalSnapshot(input.NewValue)
	if err != nil {
		return nil, err
	}

	log := &models.AuditLog{
		TenantID:    input.TenantID,
		EntityType:  input.EntityType,
		EntityID:    input.EntityID,
		Action:      input.Action,
		OldValue:    oldValue,
		NewValue:    newValue,
		UserName:    input.Actor.Name,
		UserEmail:   input.Actor.Email,
		Description: input.Description,
	}
	if input.Actor.UserID != uuid.Nil {
		userID := input.Actor.UserID
		log.UserID = &userID
	}
	return log, nil
}

func marshalSnapshot(value any) (json.RawMessage, error) {
	if value == nil {
		return nil, nil
	}
	if raw, ok := value.(json.RawMessage); ok {
		return raw, nil
	}
	encoded, err := json.Marshal(value)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marshal audit snapshot")
	}
	return encoded, nil
}

func buildListParams(params ListParams) (listParams, error) {
	if params.TenantID == uuid.Nil {
		return listParams{}, pkgerrors.New(pkgerrors.CodeValidation, "tenant id required")
	}
	query := listParams{
		TenantID:   params.TenantID,
		EntityType: params.EntityType,
		EntityID:   params.EntityID,
		Action:     params.Action,
		From:       params.From,
		To:         params.To,
		Limit:      params.Limit,
	}
	if params.Action != nil && !params.Action.IsValid() {
		return listParams{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid audit action filter")
	}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return listParams{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}
	return query, nil
}

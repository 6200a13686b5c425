package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/vnkt045/LekhyaAI-sub003/api/middleware"
	"github.com/vnkt045/LekhyaAI-sub003/internal/audit"
	pkgerrors "github.com/vnkt045/LekhyaAI-sub003/pkg/errors"
)

const dateLayout = "2006-01-02"

// tenantFrom reads the tenant scope the auth middleware seeded.
func tenantFrom(r *http.Request) (uuid.UUID, error) {
	raw := middleware.TenantIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeForbidden, "tenant context missing")
	}
	tenantID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeForbidden, err, "invalid tenant id")
	}
	return tenantID, nil
}

// actorFrom builds the audit attribution from the token claims.
func actorFrom(r *http.Request) audit.Actor {
	actor := audit.Actor{
		Name:  middleware.UserNameFromContext(r.Context()),
		Email: middleware.UserEmailFromContext(r.Context()),
	}
	if raw := middleware.UserIDFromContext(r.Context()); raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			actor.UserID = id
		}
	}
	return actor
}

func pathUUID(r *http.Request, param string) (uuid.UUID, error) {
	raw := chi.URLParam(r, param)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+param)
	}
	return id, nil
}

// queryDate parses an optional YYYY-MM-DD query parameter.
func queryDate(r *http.Request, key string) (*time.Time, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "date must be YYYY-MM-DD").WithDetails(map[string]any{"field": key})
	}
	return &parsed, nil
}

func requireQueryDate(r *http.Request, key string) (time.Time, error) {
	parsed, err := queryDate(r, key)
	if err != nil {
		return time.Time{}, err
	}
	if parsed == nil {
		return time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "query parameter required").WithDetails(map[string]any{"field": key})
	}
	return *parsed, nil
}

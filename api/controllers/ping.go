package controllers

import (
	"net/http"

	"github.com/vnkt045/LekhyaAI-sub003/api/middleware"
	"github.com/vnkt045/LekhyaAI-sub003/api/responses"
)

func PublicPing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{"scope": "public", "status": "ok"})
	}
}

// TenantPing confirms the auth and tenant middleware seeded the request context.
func TenantPing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload := map[string]string{"scope": "tenant", "status": "ok"}
		if tenant := middleware.TenantIDFromContext(r.Context()); tenant != "" {
			payload["tenant_id"] = tenant
		}
		responses.WriteSuccess(w, payload)
	}
}

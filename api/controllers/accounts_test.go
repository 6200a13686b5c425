package controllers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vnkt045/LekhyaAI-sub003/api/middleware"
	"github.com/vnkt045/LekhyaAI-sub003/internal/accounts"
	"github.com/vnkt045/LekhyaAI-sub003/internal/audit"
	"github.com/vnkt045/LekhyaAI-sub003/pkg/db/models"
	"github.com/vnkt045/LekhyaAI-sub003/pkg/logger"
)

type stubAccountsService struct {
	createFn     func(ctx context.Context, input accounts.CreateAccountInput) (*models.Account, error)
	deactivateFn func(ctx context.Context, tenantID, accountID uuid.UUID, actor audit.Actor) (*models.Account, error)
	listFn       func(ctx context.Context, tenantID uuid.UUID, includeInactive bool) ([]models.Account, error)
}

func (s *stubAccountsService) Create(ctx context.Context, input accounts.CreateAccountInput) (*models.Account, error) {
	if s.createFn != nil {
		return s.createFn(ctx, input)
	}
	return &models.Account{}, nil
}

func (s *stubAccountsService) Deactivate(ctx context.Context, tenantID, accountID uuid.UUID, actor audit.Actor) (*models.Account, error) {
	if s.deactivateFn != nil {
		return s.deactivateFn(ctx, tenantID, accountID, actor)
	}
	return &models.Account{}, nil
}

func (s *stubAccountsService) Get(ctx context.Context, tenantID, accountID uuid.UUID) (*models.Account, error) {
	return &models.Account{ID: accountID, TenantID: tenantID}, nil
}

func (s *stubAccountsService) List(ctx context.Context, tenantID uuid.UUID, includeInactive bool) ([]models.Account, error) {
	if s.listFn != nil {
		return s.listFn(ctx, tenantID, includeInactive)
	}
	return []models.Account{}, nil
}

func testControllerLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func tenantRequest(method, target string, body io.Reader, tenantID uuid.UUID) *http.Request {
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	ctx := middleware.WithTenantID(req.Context(), tenantID.String())
	ctx = middleware.WithUserID(ctx, uuid.NewString())
	ctx = middleware.WithActor(ctx, "Test User", "user@example.com")
	return req.WithContext(ctx)
}

func withPathParam(req *http.Request, key, value string) *http.Request {
	rc := chi.NewRouteContext()
	rc.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))
}

func TestAccountCreateParsesRequest(t *testing.T) {
	tenantID := uuid.New()
	var got accounts.CreateAccountInput
	svc := &stubAccountsService{
		createFn: func(ctx context.Context, input accounts.CreateAccountInput) (*models.Account, error) {
			got = input
			return &models.Account{ID: uuid.New(), TenantID: input.TenantID, Name: input.Name}, nil
		},
	}

	body := `{"name":"Cash in Hand","type":"asset","opening_balance":"1500.50","tax_category":"gst"}`
	req := tenantRequest(http.MethodPost, "/api/v1/accounts", strings.NewReader(body), tenantID)
	resp := httptest.NewRecorder()
	AccountCreate(svc, testControllerLogger())(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if got.TenantID != tenantID {
		t.Fatalf("expected tenant %s got %s", tenantID, got.TenantID)
	}
	if !got.OpeningBalance.Equal(decimal.RequireFromString("1500.50")) {
		t.Fatalf("expected opening balance 1500.50 got %s", got.OpeningBalance)
	}
	if string(got.TaxCategory) != "gst" {
		t.Fatalf("expected gst tax category got %s", got.TaxCategory)
	}
	if got.Actor.Name != "Test User" {
		t.Fatalf("expected actor from context got %q", got.Actor.Name)
	}
}

func TestAccountCreateRejectsUnknownType(t *testing.T) {
	svc := &stubAccountsService{}
	body := `{"name":"Cash","type":"treasure"}`
	req := tenantRequest(http.MethodPost, "/api/v1/accounts", strings.NewReader(body), uuid.New())
	resp := httptest.NewRecorder()
	AccountCreate(svc, testControllerLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestAccountCreateRequiresTenantContext(t *testing.T) {
	svc := &stubAccountsService{}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/accounts", strings.NewReader(`{"name":"Cash","type":"asset"}`))
	resp := httptest.NewRecorder()
	AccountCreate(svc, testControllerLogger())(resp, req)

	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 without tenant context got %d", resp.Code)
	}
}

func TestAccountListPassesIncludeInactive(t *testing.T) {
	var gotInclude bool
	svc := &stubAccountsService{
		listFn: func(ctx context.Context, tenantID uuid.UUID, includeInactive bool) ([]models.Account, error) {
			gotInclude = includeInactive
			return []models.Account{{ID: uuid.New()}}, nil
		},
	}

	req := tenantRequest(http.MethodGet, "/api/v1/accounts?includeInactive=true", nil, uuid.New())
	resp := httptest.NewRecorder()
	AccountList(svc, testControllerLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if !gotInclude {
		t.Fatalf("expected includeInactive to reach the service")
	}
}

func TestAccountDeactivateUsesPathID(t *testing.T) {
	accountID := uuid.New()
	var gotID uuid.UUID
	svc := &stubAccountsService{
		deactivateFn: func(ctx context.Context, tenantID, id uuid.UUID, actor audit.Actor) (*models.Account, error) {
			gotID = id
			return &models.Account{ID: id, IsActive: false}, nil
		},
	}

	req := tenantRequest(http.MethodDelete, "/api/v1/accounts/"+accountID.String(), nil, uuid.New())
	req = withPathParam(req, "accountId", accountID.String())
	resp := httptest.NewRecorder()
	AccountDeactivate(svc, testControllerLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if gotID != accountID {
		t.Fatalf("expected account %s got %s", accountID, gotID)
	}
}

func TestAccountDetailRejectsBadID(t *testing.T) {
	svc := &stubAccountsService{}
	req := tenantRequest(http.MethodGet, "/api/v1/accounts/not-a-uuid", nil, uuid.New())
	req = withPathParam(req, "accountId", "not-a-uuid")
	resp := httptest.NewRecorder()
	AccountDetail(svc, testControllerLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed id got %d", resp.Code)
	}
}

package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/pharmacy-backend/api/middleware"
	"github.com/angelmondragon/pharmacy-backend/internal/auth"
	"github.com/angelmondragon/pharmacy-backend/internal/users"
	"github.com/angelmondragon/pharmacy-backend/pkg/config"
	"github.com/angelmondragon/pharmacy-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/pharmacy-backend/pkg/errors"
	"github.com/angelmondragon/pharmacy-backend/pkg/pagination"
	"github.com/angelmondragon/pharmacy-backend/pkg/types"
)

type stubRegisterService struct {
	gotRole enums.UserRole
	gotReq  auth.RegisterRequest
	user    *users.UserDTO
	err     error
}

func (s *stubRegisterService) Register(ctx context.Context, req auth.RegisterRequest, role enums.UserRole) (*users.UserDTO, error) {
	s.gotRole = role
	s.gotReq = req
	return s.user, s.err
}

type stubUserService struct {
	user      *users.UserDTO
	page      *types.Page[users.UserDTO]
	err       error
	gotRole   enums.UserRole
	gotID     uuid.UUID
	gotParams pagination.Params
	deleted   bool
}

func (s *stubUserService) Get(ctx context.Context, id uuid.UUID, role enums.UserRole) (*users.UserDTO, error) {
	s.gotID, s.gotRole = id, role
	return s.user, s.err
}

func (s *stubUserService) List(ctx context.Context, role enums.UserRole, params pagination.Params) (*types.Page[users.UserDTO], error) {
	s.gotRole, s.gotParams = role, params
	return s.page, s.err
}

func (s *stubUserService) Delete(ctx context.Context, id uuid.UUID, role enums.UserRole) error {
	s.gotID, s.gotRole = id, role
	if s.err == nil {
		s.deleted = true
	}
	return s.err
}

func TestRegisterCreatesUser(t *testing.T) {
	svc := &stubRegisterService{user: &users.UserDTO{ID: uuid.New(), Email: "alice@example.com", Role: enums.UserRoleUser}}
	handler := Register(svc, enums.UserRoleUser, nil)

	body := []byte(`{"first_name":"Alice","last_name":"Buyer","email":"alice@example.com","password":"Secret123!"}`)
	req := httptest.NewRequest(http.MethodPost, "/users", bytes.NewReader(body))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.gotRole != enums.UserRoleUser || svc.gotReq.Email != "alice@example.com" {
		t.Fatalf("unexpected service call role=%s req=%+v", svc.gotRole, svc.gotReq)
	}

	var envelope struct {
		Data users.UserDTO `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Data.ID != svc.user.ID {
		t.Fatalf("expected user %s got %s", svc.user.ID, envelope.Data.ID)
	}
}

func TestRegisterValidationFailure(t *testing.T) {
	svc := &stubRegisterService{}
	handler := Register(svc, enums.UserRoleUser, nil)

	req := httptest.NewRequest(http.MethodPost, "/users", bytes.NewReader([]byte(`{"email":"not-an-email","password":"x"}`)))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	if svc.gotReq.Email != "" {
		t.Fatal("service should not be called on invalid input")
	}
}

func TestRegisterDuplicateIsConflict(t *testing.T) {
	svc := &stubRegisterService{err: pkgerrors.New(pkgerrors.CodeConflict, "user already exists")}
	handler := Register(svc, enums.UserRoleAdmin, nil)

	body := []byte(`{"first_name":"Ada","last_name":"Admin","email":"ada@example.com","password":"Secret123!"}`)
	req := httptest.NewRequest(http.MethodPost, "/admins", bytes.NewReader(body))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", resp.Code)
	}
	var envelope types.ErrorEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Error.Message != "user already exists" {
		t.Fatalf("unexpected message %q", envelope.Error.Message)
	}
}

func TestCurrentUserUsesContextIdentity(t *testing.T) {
	userID := uuid.New()
	svc := &stubUserService{user: &users.UserDTO{ID: userID}}
	handler := CurrentUser(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/users/current", nil)
	ctx := middleware.WithUserID(req.Context(), userID.String())
	ctx = middleware.WithRole(ctx, string(enums.UserRoleUser))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req.WithContext(ctx))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.gotID != userID || svc.gotRole != enums.UserRoleUser {
		t.Fatalf("unexpected lookup id=%s role=%s", svc.gotID, svc.gotRole)
	}
}

func TestCurrentUserWithoutAuthContext(t *testing.T) {
	handler := CurrentUser(&stubUserService{}, nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/users/current", nil))
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestListAccountsPassesPagination(t *testing.T) {
	svc := &stubUserService{page: &types.Page[users.UserDTO]{Items: []users.UserDTO{{ID: uuid.New()}}, NextCursor: "next"}}
	r := chi.NewRouter()
	r.Get("/users", ListAccounts(svc, enums.UserRoleUser, nil))

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/users?limit=10&cursor=abc", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.gotParams.Limit != 10 || svc.gotParams.Cursor != "abc" || svc.gotRole != enums.UserRoleUser {
		t.Fatalf("unexpected call %+v role=%s", svc.gotParams, svc.gotRole)
	}
}

func TestListAccountsRejectsBadLimit(t *testing.T) {
	svc := &stubUserService{}
	handler := ListAccounts(svc, enums.UserRoleUser, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/users?limit=1000", nil))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestGetAccountInvalidID(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/admins/{id}", GetAccount(&stubUserService{}, enums.UserRoleAdmin, nil))

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/admins/not-a-uuid", nil))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestDeleteAccountNoContent(t *testing.T) {
	svc := &stubUserService{}
	id := uuid.New()
	r := chi.NewRouter()
	r.Delete("/admins/{id}", DeleteAccount(svc, enums.UserRoleAdmin, nil))

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodDelete, "/admins/"+id.String(), nil))
	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204 got %d", resp.Code)
	}
	if !svc.deleted || svc.gotID != id || svc.gotRole != enums.UserRoleAdmin {
		t.Fatalf("unexpected delete call id=%s role=%s", svc.gotID, svc.gotRole)
	}
}

func TestDeleteAccountNotFound(t *testing.T) {
	svc := &stubUserService{err: pkgerrors.New(pkgerrors.CodeNotFound, "user not found")}
	r := chi.NewRouter()
	r.Delete("/users/{id}", DeleteAccount(svc, enums.UserRoleUser, nil))

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodDelete, "/users/"+uuid.NewString(), nil))
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}

func TestNilServiceIsInternalError(t *testing.T) {
	resp := httptest.NewRecorder()
	ListAccounts(nil, enums.UserRoleUser, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/users", nil))
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", resp.Code)
	}
}

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

func TestPing(t *testing.T) {
	resp := httptest.NewRecorder()
	Ping().ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/ping", nil))

	var envelope struct {
		Data map[string]string `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Data["message"] != "pong" {
		t.Fatalf("unexpected body %v", envelope.Data)
	}
}

func TestHealthReady(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "dev"}}

	resp := httptest.NewRecorder()
	HealthReady(cfg, map[string]Pinger{"db": stubPinger{}, "redis": stubPinger{}}, nil).
		ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	resp = httptest.NewRecorder()
	HealthReady(cfg, map[string]Pinger{"db": stubPinger{}, "redis": stubPinger{err: errors.New("down")}}, nil).
		ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", resp.Code)
	}
	if resp.Header().Get("X-Pharmacy-Env") != "dev" {
		t.Fatalf("expected env header")
	}
}

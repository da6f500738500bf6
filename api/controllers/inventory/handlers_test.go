package inventory

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/pharmacy-backend/internal/inventory"
	pkgerrors "github.com/angelmondragon/pharmacy-backend/pkg/errors"
	"github.com/angelmondragon/pharmacy-backend/pkg/pagination"
	"github.com/angelmondragon/pharmacy-backend/pkg/types"
)

type stubService struct {
	item       *inventory.ItemDTO
	page       *types.Page[inventory.ItemDTO]
	err        error
	gotCreate  inventory.CreateItemInput
	gotUpdate  inventory.UpdateItemInput
	gotID      uuid.UUID
	gotAmount  int
	gotParams  pagination.Params
	deleteCall bool
}

func (s *stubService) Create(ctx context.Context, input inventory.CreateItemInput) (*inventory.ItemDTO, error) {
	s.gotCreate = input
	return s.item, s.err
}

func (s *stubService) Get(ctx context.Context, id uuid.UUID) (*inventory.ItemDTO, error) {
	s.gotID = id
	return s.item, s.err
}

func (s *stubService) List(ctx context.Context, params pagination.Params) (*types.Page[inventory.ItemDTO], error) {
	s.gotParams = params
	return s.page, s.err
}

func (s *stubService) Update(ctx context.Context, id uuid.UUID, input inventory.UpdateItemInput) (*inventory.ItemDTO, error) {
	s.gotID = id
	s.gotUpdate = input
	return s.item, s.err
}

func (s *stubService) Restock(ctx context.Context, id uuid.UUID, amount int) (*inventory.ItemDTO, error) {
	s.gotID = id
	s.gotAmount = amount
	return s.item, s.err
}

func (s *stubService) Delete(ctx context.Context, id uuid.UUID) error {
	s.gotID = id
	s.deleteCall = true
	return s.err
}

func newRouter(svc inventory.Service) http.Handler {
	r := chi.NewRouter()
	r.Get("/inventories", List(svc, nil))
	r.Post("/inventories", Create(svc, nil))
	r.Get("/inventories/{id}", Get(svc, nil))
	r.Patch("/inventories/{id}", Update(svc, nil))
	r.Post("/inventories/{id}/restock", Restock(svc, nil))
	r.Delete("/inventories/{id}", Delete(svc, nil))
	return r
}

func TestCreateDecodesPrice(t *testing.T) {
	svc := &stubService{item: &inventory.ItemDTO{ID: uuid.New(), Name: "Ibuprofen"}}
	req := httptest.NewRequest(http.MethodPost, "/inventories", strings.NewReader(`{"name":"Ibuprofen","quantity":5,"price":"10.00"}`))
	resp := httptest.NewRecorder()

	newRouter(svc).ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if !svc.gotCreate.Price.Equal(decimal.RequireFromString("10")) || svc.gotCreate.Quantity != 5 {
		t.Fatalf("unexpected input %+v", svc.gotCreate)
	}
}

func TestCreateRejectsUnknownFields(t *testing.T) {
	svc := &stubService{}
	req := httptest.NewRequest(http.MethodPost, "/inventories", strings.NewReader(`{"name":"Ibuprofen","quantity":5,"price":"10.00","sku":"x"}`))
	resp := httptest.NewRecorder()

	newRouter(svc).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestUpdateOnlyCarriesPresentFields(t *testing.T) {
	svc := &stubService{item: &inventory.ItemDTO{}}
	id := uuid.New()
	req := httptest.NewRequest(http.MethodPatch, "/inventories/"+id.String(), strings.NewReader(`{"quantity":7}`))
	resp := httptest.NewRecorder()

	newRouter(svc).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.gotID != id || svc.gotUpdate.Quantity == nil || *svc.gotUpdate.Quantity != 7 {
		t.Fatalf("unexpected update %+v", svc.gotUpdate)
	}
	if svc.gotUpdate.Name != nil || svc.gotUpdate.Price != nil {
		t.Fatalf("absent fields must stay nil: %+v", svc.gotUpdate)
	}
}

func TestRestockRequiresPositiveAmount(t *testing.T) {
	svc := &stubService{item: &inventory.ItemDTO{}}
	id := uuid.New()

	resp := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/inventories/"+id.String()+"/restock", strings.NewReader(`{"amount":0}`)))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}

	resp = httptest.NewRecorder()
	newRouter(svc).ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/inventories/"+id.String()+"/restock", strings.NewReader(`{"amount":4}`)))
	if resp.Code != http.StatusOK || svc.gotAmount != 4 {
		t.Fatalf("expected restock of 4, status %d amount %d", resp.Code, svc.gotAmount)
	}
}

func TestDeleteReferencedItemConflicts(t *testing.T) {
	svc := &stubService{err: pkgerrors.New(pkgerrors.CodeConflict, "inventory item is referenced by an order")}
	resp := httptest.NewRecorder()

	newRouter(svc).ServeHTTP(resp, httptest.NewRequest(http.MethodDelete, "/inventories/"+uuid.NewString(), nil))

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", resp.Code)
	}
}

func TestListReturnsPage(t *testing.T) {
	svc := &stubService{page: &types.Page[inventory.ItemDTO]{Items: []inventory.ItemDTO{{Name: "Aspirin"}}}}
	resp := httptest.NewRecorder()

	newRouter(svc).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/inventories", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.gotParams.Limit != pagination.DefaultLimit {
		t.Fatalf("expected default limit, got %d", svc.gotParams.Limit)
	}
	var envelope struct {
		Data types.Page[inventory.ItemDTO] `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(envelope.Data.Items) != 1 || envelope.Data.Items[0].Name != "Aspirin" {
		t.Fatalf("unexpected page %+v", envelope.Data)
	}
}

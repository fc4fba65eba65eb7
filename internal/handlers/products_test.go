package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"padoca/models"
)

func adminRequest(t *testing.T, method, target, body string) *http.Request {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	return authenticateRequest(t, sessionManager, req, 1, models.RoleAdmin)
}

func funcionarioRequest(t *testing.T, method, target, body string) *http.Request {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	return authenticateRequest(t, sessionManager, req, 2, models.RoleFuncionario)
}

func TestProductResourceCreate(t *testing.T) {
	db, cleanupDB := withHandlersTestDatabase(t)
	t.Cleanup(cleanupDB)
	_, cleanupSession := withTestSessionManager(t)
	t.Cleanup(cleanupSession)

	req := adminRequest(t, http.MethodPost, "/api/produtos",
		`{"nome":"Farinha","quantidade":10,"unidade":"kg","valorUnitario":4.5}`)
	rr := httptest.NewRecorder()
	ProductResource(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rr.Code, rr.Body.String())
	}

	var product models.Product
	if err := db.Where("nome = ?", "Farinha").First(&product).Error; err != nil {
		t.Fatalf("failed to load created product: %v", err)
	}
	if product.Local != models.LocalSuperior {
		t.Fatalf("expected new stock at superior, got %q", product.Local)
	}
}

func TestProductResourceCreateRequiresAdmin(t *testing.T) {
	_, cleanupDB := withHandlersTestDatabase(t)
	t.Cleanup(cleanupDB)
	_, cleanupSession := withTestSessionManager(t)
	t.Cleanup(cleanupSession)

	req := funcionarioRequest(t, http.MethodPost, "/api/produtos",
		`{"nome":"Farinha","quantidade":10,"unidade":"kg"}`)
	rr := httptest.NewRecorder()
	ProductResource(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected status 403 for funcionario, got %d", rr.Code)
	}
}

func TestProductResourceListByLocal(t *testing.T) {
	db, cleanupDB := withHandlersTestDatabase(t)
	t.Cleanup(cleanupDB)
	_, cleanupSession := withTestSessionManager(t)
	t.Cleanup(cleanupSession)

	for _, p := range []models.Product{
		{Nome: "Farinha", Quantidade: 10, Unidade: "kg", Local: models.LocalSuperior},
		{Nome: "Açúcar", Quantidade: 5, Unidade: "kg", Local: models.LocalInferior},
	} {
		product := p
		if err := db.Create(&product).Error; err != nil {
			t.Fatalf("failed to seed product: %v", err)
		}
	}

	req := funcionarioRequest(t, http.MethodGet, "/api/produtos/inferior", "")
	rr := httptest.NewRecorder()
	ProductResource(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Açúcar") || strings.Contains(rr.Body.String(), "Farinha") {
		t.Fatalf("expected only inferior stock in response, got %s", rr.Body.String())
	}

	req = funcionarioRequest(t, http.MethodGet, "/api/produtos/geladeira", "")
	rr = httptest.NewRecorder()
	ProductResource(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for unknown local, got %d", rr.Code)
	}
}

func TestProductResourceEditAndDelete(t *testing.T) {
	db, cleanupDB := withHandlersTestDatabase(t)
	t.Cleanup(cleanupDB)
	_, cleanupSession := withTestSessionManager(t)
	t.Cleanup(cleanupSession)

	product := models.Product{Nome: "Ovos", Quantidade: 30, Unidade: "un", Local: models.LocalInferior}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("failed to seed product: %v", err)
	}

	req := adminRequest(t, http.MethodPut, fmt.Sprintf("/api/produtos/%d", product.ID), `{"quantidade":12}`)
	rr := httptest.NewRecorder()
	ProductResource(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200 on edit, got %d: %s", rr.Code, rr.Body.String())
	}

	var reloaded models.Product
	if err := db.First(&reloaded, product.ID).Error; err != nil {
		t.Fatalf("failed to reload product: %v", err)
	}
	if reloaded.Quantidade != 12 {
		t.Fatalf("expected quantity 12, got %v", reloaded.Quantidade)
	}

	req = adminRequest(t, http.MethodDelete, fmt.Sprintf("/api/produtos/%d", product.ID), "")
	rr = httptest.NewRecorder()
	ProductResource(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200 on delete, got %d: %s", rr.Code, rr.Body.String())
	}

	var count int64
	if err := db.Model(&models.Product{}).Count(&count).Error; err != nil {
		t.Fatalf("failed to count products: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected product removed, got %d remaining", count)
	}
}

func TestMoveProduct(t *testing.T) {
	db, cleanupDB := withHandlersTestDatabase(t)
	t.Cleanup(cleanupDB)
	_, cleanupSession := withTestSessionManager(t)
	t.Cleanup(cleanupSession)

	product := models.Product{Nome: "Farinha", Quantidade: 10, Unidade: "kg", Local: models.LocalSuperior}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("failed to seed product: %v", err)
	}

	req := adminRequest(t, http.MethodPost, fmt.Sprintf("/api/mover/%d", product.ID), `{"quantidade":4}`)
	rr := httptest.NewRecorder()
	MoveProduct(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	payload := decodeJSONMap(t, rr.Body.Bytes())
	if msg, _ := payload["message"].(string); !strings.Contains(msg, models.LocalInferior) {
		t.Fatalf("expected destination in message, got %v", payload)
	}

	var destination models.Product
	err := db.Where("nome = ? AND local = ?", "Farinha", models.LocalInferior).First(&destination).Error
	if err != nil {
		t.Fatalf("failed to load destination record: %v", err)
	}
	if destination.Quantidade != 4 {
		t.Fatalf("expected destination quantity 4, got %v", destination.Quantidade)
	}
}

func TestWithdrawProduct(t *testing.T) {
	db, cleanupDB := withHandlersTestDatabase(t)
	t.Cleanup(cleanupDB)
	_, cleanupSession := withTestSessionManager(t)
	t.Cleanup(cleanupSession)

	product := models.Product{Nome: "Açúcar", Quantidade: 8, Unidade: "kg", Local: models.LocalInferior}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("failed to seed product: %v", err)
	}

	req := adminRequest(t, http.MethodPost, fmt.Sprintf("/api/remover-quantidade/%d", product.ID), `{"quantidade":3}`)
	rr := httptest.NewRecorder()
	WithdrawProduct(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var reloaded models.Product
	if err := db.First(&reloaded, product.ID).Error; err != nil {
		t.Fatalf("failed to reload product: %v", err)
	}
	if reloaded.Quantidade != 5 {
		t.Fatalf("expected quantity 5, got %v", reloaded.Quantidade)
	}

	// more than available is refused
	req = adminRequest(t, http.MethodPost, fmt.Sprintf("/api/remover-quantidade/%d", product.ID), `{"quantidade":50}`)
	rr = httptest.NewRecorder()
	WithdrawProduct(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for excessive withdrawal, got %d", rr.Code)
	}
}

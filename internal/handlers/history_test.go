package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"padoca/models"
)

func TestHistorySplitsMovementAndUsage(t *testing.T) {
	db, cleanupDB := withHandlersTestDatabase(t)
	t.Cleanup(cleanupDB)

	now := time.Now().UTC()
	entries := []models.HistoryEntry{
		{Data: now, Tipo: models.TipoEntrada, Produto: "Farinha", Quantidade: 10, Unidade: "kg", Para: models.LocalSuperior},
		{Data: now, Tipo: models.TipoTransferencia, Produto: "Farinha", Quantidade: 4, Unidade: "kg", De: models.LocalSuperior, Para: models.LocalInferior},
		{Data: now, Tipo: models.TipoConsumoPrato, Produto: "Farinha", Quantidade: 2, Unidade: "kg", De: models.LocalInferior, Origem: "Bolo"},
	}
	for i := range entries {
		if err := db.Create(&entries[i]).Error; err != nil {
			t.Fatalf("failed to seed history entry: %v", err)
		}
	}

	rr := httptest.NewRecorder()
	History(rr, httptest.NewRequest(http.MethodGet, "/api/historico", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if strings.Contains(rr.Body.String(), models.TipoConsumoPrato) {
		t.Fatalf("expected consumo_prato excluded from movement history, got %s", rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), models.TipoEntrada) ||
		!strings.Contains(rr.Body.String(), models.TipoTransferencia) {
		t.Fatalf("expected movement entries present, got %s", rr.Body.String())
	}

	rr = httptest.NewRecorder()
	HistoryUsage(rr, httptest.NewRequest(http.MethodGet, "/api/historico/uso", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Bolo") {
		t.Fatalf("expected usage entry present, got %s", rr.Body.String())
	}
	if strings.Contains(rr.Body.String(), models.TipoEntrada) {
		t.Fatalf("expected only consumo_prato entries, got %s", rr.Body.String())
	}
}

func TestHistoryMethodNotAllowed(t *testing.T) {
	_, cleanupDB := withHandlersTestDatabase(t)
	t.Cleanup(cleanupDB)

	rr := httptest.NewRecorder()
	History(rr, httptest.NewRequest(http.MethodPost, "/api/historico", nil))
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected status 405, got %d", rr.Code)
	}
}

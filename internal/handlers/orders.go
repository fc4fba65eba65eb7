package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	applog "padoca/internal/log"
	"padoca/internal/orders"
)

type orderCreateRequest struct {
	Itens []orders.ItemInput `json:"itens"`
}

type orderStatusRequest struct {
	Status string `json:"status"`
}

// OrderResource handles the order routes: POST /api/orders creates a pending
// order, GET lists them newest first and PATCH /api/orders/{id}/status
// transitions the lifecycle, deducting stock exactly once via the
// reservation engine.
func OrderResource(w http.ResponseWriter, r *http.Request) {
	if !requireDatabase(w, r) {
		return
	}

	p := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/orders"), "/")
	if p == "" {
		switch r.Method {
		case http.MethodGet:
			listOrders(w, r)
		case http.MethodPost:
			createOrder(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	segments := strings.Split(p, "/")
	id, ok := parseID(w, r, segments[0])
	if !ok {
		return
	}

	if len(segments) > 1 && segments[1] == "status" {
		if r.Method != http.MethodPatch {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		updateOrderStatus(w, r, id)
		return
	}

	w.WriteHeader(http.StatusMethodNotAllowed)
}

func createOrder(w http.ResponseWriter, r *http.Request) {
	var payload orderCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(r.Context(), "invalid order payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "requisição inválida")
		return
	}

	order, err := orders.Create(r.Context(), database, payload.Itens)
	if err != nil {
		writeDomainError(w, r, err, "erro interno do servidor ao criar pedido")
		return
	}
	writeJSON(w, http.StatusCreated, order)
}

func listOrders(w http.ResponseWriter, r *http.Request) {
	result, err := orders.List(r.Context(), database)
	if err != nil {
		writeDomainError(w, r, err, "erro ao buscar pedidos")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func updateOrderStatus(w http.ResponseWriter, r *http.Request, id uint) {
	var payload orderStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(r.Context(), "invalid status payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "requisição inválida")
		return
	}

	order, err := orders.UpdateStatus(r.Context(), database, id, payload.Status)
	if err != nil {
		writeDomainError(w, r, err, "erro ao atualizar status do pedido")
		return
	}
	writeJSON(w, http.StatusOK, order)
}

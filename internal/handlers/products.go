package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	applog "padoca/internal/log"
	"padoca/internal/stock"
	"padoca/models"
)

type quantityRequest struct {
	Quantidade float64 `json:"quantidade"`
}

func requireAdminRole(w http.ResponseWriter, r *http.Request) bool {
	if currentRole(r) != models.RoleAdmin {
		applog.Debug(r.Context(), "non-admin mutation rejected", "path", r.URL.Path, "role", currentRole(r))
		writeJSONError(w, http.StatusForbidden, "acesso negado: requer privilégios de administrador")
		return false
	}
	return true
}

func parseID(w http.ResponseWriter, r *http.Request, raw string) (uint, bool) {
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		applog.Debug(r.Context(), "invalid identifier", "identifier", raw, "error", err)
		http.NotFound(w, r)
		return 0, false
	}
	return uint(value), true
}

// ProductResource handles REST-style interactions with stock records:
// GET /api/produtos/{local} lists one location, POST creates incoming stock,
// PUT /api/produtos/{id} edits a quantity, DELETE removes the record.
// Mutations are admin-only.
func ProductResource(w http.ResponseWriter, r *http.Request) {
	if !requireDatabase(w, r) {
		return
	}

	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/produtos"), "/")
	if path == "" {
		if r.Method == http.MethodPost {
			if !requireAdminRole(w, r) {
				return
			}
			createProduct(w, r)
			return
		}
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	identifier := strings.Split(path, "/")[0]
	switch r.Method {
	case http.MethodGet:
		listProductsByLocal(w, r, identifier)
	case http.MethodPut:
		if !requireAdminRole(w, r) {
			return
		}
		if id, ok := parseID(w, r, identifier); ok {
			editProduct(w, r, id)
		}
	case http.MethodDelete:
		if !requireAdminRole(w, r) {
			return
		}
		if id, ok := parseID(w, r, identifier); ok {
			removeProduct(w, r, id)
		}
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func listProductsByLocal(w http.ResponseWriter, r *http.Request, local string) {
	if !models.ValidLocal(local) {
		writeJSONError(w, http.StatusBadRequest, "local de estoque desconhecido: "+local)
		return
	}

	var products []models.Product
	err := database.WithContext(r.Context()).
		Where("local = ?", local).
		Order("nome asc").
		Find(&products).Error
	if err != nil {
		applog.Error(r.Context(), "failed to list products", "error", err, "local", local)
		writeJSONError(w, http.StatusInternalServerError, "erro ao buscar produtos")
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func createProduct(w http.ResponseWriter, r *http.Request) {
	var input stock.ReceiveInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		applog.Debug(r.Context(), "invalid product payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "requisição inválida")
		return
	}

	product, err := stock.Receive(r.Context(), database, input)
	if err != nil {
		writeDomainError(w, r, err, "erro ao criar produto")
		return
	}
	writeJSON(w, http.StatusCreated, product)
}

func editProduct(w http.ResponseWriter, r *http.Request, id uint) {
	var payload quantityRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(r.Context(), "invalid quantity payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "requisição inválida")
		return
	}

	product, err := stock.EditQuantity(r.Context(), database, id, payload.Quantidade)
	if err != nil {
		writeDomainError(w, r, err, "erro ao editar produto")
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func removeProduct(w http.ResponseWriter, r *http.Request, id uint) {
	product, err := stock.Remove(r.Context(), database, id)
	if err != nil {
		writeDomainError(w, r, err, "erro ao remover produto")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "produto " + product.Nome + " removido"})
}

// MoveProduct transfers quantity from a stock record toward the opposite
// location. POST /api/mover/{id}, admin-gated by the router.
func MoveProduct(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if !requireDatabase(w, r) {
		return
	}

	id, ok := parseID(w, r, strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/mover"), "/"))
	if !ok {
		return
	}

	var payload quantityRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(r.Context(), "invalid transfer payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "requisição inválida")
		return
	}

	destino, err := stock.Transfer(r.Context(), database, id, payload.Quantidade)
	if err != nil {
		writeDomainError(w, r, err, "erro ao movimentar produto")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "movimentado para " + destino + " com sucesso"})
}

// WithdrawProduct removes quantity from a record at the inferior storage.
// POST /api/remover-quantidade/{id}, admin-gated by the router.
func WithdrawProduct(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if !requireDatabase(w, r) {
		return
	}

	id, ok := parseID(w, r, strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/remover-quantidade"), "/"))
	if !ok {
		return
	}

	var payload quantityRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(r.Context(), "invalid withdraw payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "requisição inválida")
		return
	}

	if err := stock.WithdrawQuantity(r.Context(), database, id, payload.Quantidade); err != nil {
		writeDomainError(w, r, err, "erro ao remover quantidade")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "quantidade removida com sucesso"})
}

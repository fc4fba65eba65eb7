package handlers

import (
	"net/http"

	applog "padoca/internal/log"
	"padoca/models"
)

// History lists stock movements newest first, excluding recipe-consumption
// entries, which have their own listing. GET /api/historico, admin-gated.
func History(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if !requireDatabase(w, r) {
		return
	}

	var entries []models.HistoryEntry
	err := database.WithContext(r.Context()).
		Where("tipo <> ?", models.TipoConsumoPrato).
		Order("data desc").
		Find(&entries).Error
	if err != nil {
		applog.Error(r.Context(), "failed to list history", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "erro ao buscar histórico")
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// HistoryUsage lists recipe-consumption entries newest first.
// GET /api/historico/uso, admin-gated.
func HistoryUsage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if !requireDatabase(w, r) {
		return
	}

	var entries []models.HistoryEntry
	err := database.WithContext(r.Context()).
		Where("tipo = ?", models.TipoConsumoPrato).
		Order("data desc").
		Find(&entries).Error
	if err != nil {
		applog.Error(r.Context(), "failed to list usage history", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "erro ao buscar histórico de uso")
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

package handlers

import (
	"net/http"

	"padoca/internal/orders"
)

// ProfitStats reports accumulated revenue, cost and profit over paid and
// finalized orders. GET /api/stats/lucro, admin-gated.
func ProfitStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if !requireDatabase(w, r) {
		return
	}

	report, err := orders.ProfitSummary(r.Context(), database)
	if err != nil {
		writeDomainError(w, r, err, "erro ao calcular estatísticas de lucro")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

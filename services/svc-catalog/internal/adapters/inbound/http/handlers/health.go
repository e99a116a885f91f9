package handlers

import (
	"net/http"

	"github.com/architeacher/storefront/services/svc-catalog/internal/adapters/inbound/http/handlers/shared"
	"github.com/architeacher/storefront/services/svc-catalog/internal/usecases/queries"
)

func (h *Handler) Liveness(w http.ResponseWriter, r *http.Request) {
	result, err := h.app.Queries.FetchLiveness.Execute(r.Context(), queries.FetchLivenessQuery{})
	if err != nil {
		h.writeError(w, r, err)

		return
	}

	shared.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) Readiness(w http.ResponseWriter, r *http.Request) {
	result, err := h.app.Queries.FetchReadiness.Execute(r.Context(), queries.FetchReadinessQuery{})
	if err != nil {
		h.writeError(w, r, err)

		return
	}

	status := http.StatusOK
	if !result.Ready {
		status = http.StatusServiceUnavailable
	}

	shared.WriteJSON(w, status, result)
}

// Health reports every dependency; only an unhealthy database fails it.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	result, err := h.app.Queries.FetchHealthReport.Execute(r.Context(), queries.FetchHealthReportQuery{})
	if err != nil {
		h.writeError(w, r, err)

		return
	}

	status := http.StatusOK
	if result.Status == queries.HealthStatusUnhealthy {
		status = http.StatusServiceUnavailable
	}

	w.Header().Set(shared.HeaderCacheControl, "no-store")
	shared.WriteJSON(w, status, result)
}

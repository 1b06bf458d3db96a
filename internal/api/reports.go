package api

import (
	"net/http"
	"strconv"
)

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.svc.Reports.Dashboard(r.Context())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, d)
}

func (h *Handler) lowStock(w http.ResponseWriter, r *http.Request) {
	levels, err := h.svc.Inventory.LowStock(r.Context())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, levels)
}

func (h *Handler) expiring(w http.ResponseWriter, r *http.Request) {
	days := 0
	if raw := r.URL.Query().Get("days"); raw != "" {
		var err error
		if days, err = strconv.Atoi(raw); err != nil || days < 1 || days > 365 {
			respondError(w, http.StatusBadRequest, "days must be between 1 and 365")
			return
		}
	}
	batches, err := h.svc.Inventory.ExpiringBatches(r.Context(), days)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, batches)
}

func (h *Handler) salesSummary(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	summary, err := h.svc.Reports.SalesSummary(r.Context(), q.Get("from"), q.Get("to"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

func (h *Handler) salesRegister(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	register, err := h.svc.Reports.SalesRegister(r.Context(), q.Get("from"), q.Get("to"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, register)
}

func (h *Handler) scheduleRegister(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	entries, err := h.svc.Reports.ScheduleRegister(r.Context(), q.Get("from"), q.Get("to"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, entries)
}

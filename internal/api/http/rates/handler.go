package rates

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"service-rates/internal"
	"service-rates/internal/service/rates"
)

// Refresher triggers one full refresh run and reports its summary.
type Refresher interface {
	Refresh(ctx context.Context) (internal.RefreshSummary, error)
}

type Handler struct {
	rates     *rates.Service
	refresher Refresher
}

func New(r *rates.Service, refresher Refresher) *Handler {
	return &Handler{rates: r, refresher: refresher}
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/v1/rate", h.getRate)
	mux.HandleFunc("/api/v1/rates", h.listRates)
	mux.HandleFunc("/api/v1/refresh", h.triggerRefresh)
}

func (h *Handler) getRate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	base := r.URL.Query().Get("base")
	quote := r.URL.Query().Get("quote")

	out, err := h.rates.GetPairRate(r.Context(), base, quote)
	if err != nil {
		writeErr(w, err)
		return
	}

	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) listRates(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	base := r.URL.Query().Get("base")
	var quotes []string
	if raw := strings.TrimSpace(r.URL.Query().Get("quotes")); raw != "" {
		quotes = strings.Split(raw, ",")
	}

	out, err := h.rates.ListRates(r.Context(), base, quotes)
	if err != nil {
		writeErr(w, err)
		return
	}

	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) triggerRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	summary, err := h.refresher.Refresh(r.Context())
	if err != nil {
		log.Printf("manual refresh failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, internal.BizError("refresh_failed", err.Error()))
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, err error) {
	var biz *internal.BusinessError
	if errors.As(err, &biz) {
		status := http.StatusBadRequest
		if biz.Code == "rate_not_available" {
			status = http.StatusNotFound
		}
		writeJSON(w, status, biz)
		return
	}

	log.Printf("rate lookup failed: %v", err)
	writeJSON(w, http.StatusInternalServerError, internal.BizError("internal_error", "unexpected error"))
}

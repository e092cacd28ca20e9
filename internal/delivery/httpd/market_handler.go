package httpd

import (
	"net/http"

	"github.com/RubachokBoss/knowledge-market/internal/models"
)

func (h *Handler) OpenMarket(w http.ResponseWriter, r *http.Request) {
	var req models.OpenMarketRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	snapshot, err := h.marketService.OpenMarket(r.Context(), &req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccessStatus(w, http.StatusCreated, snapshot)
}

func (h *Handler) GetMarket(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.marketService.GetSnapshot(r.Context())
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, snapshot)
}

func (h *Handler) AdvancePhase(w http.ResponseWriter, r *http.Request) {
	market, err := h.marketService.AdvancePhase(r.Context())
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, market)
}

func (h *Handler) AdvanceRound(w http.ResponseWriter, r *http.Request) {
	market, err := h.marketService.AdvanceRound(r.Context())
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, market)
}

func (h *Handler) CloseMarket(w http.ResponseWriter, r *http.Request) {
	if err := h.marketService.CloseMarket(r.Context()); err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, map[string]interface{}{
		"message": "Market closed successfully",
	})
}

func (h *Handler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	schedule, err := h.marketService.GetSchedule(r.Context())
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, schedule)
}

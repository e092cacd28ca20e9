package httpd

import (
	"net/http"

	"github.com/RubachokBoss/knowledge-market/internal/models"
	"github.com/RubachokBoss/knowledge-market/internal/rotation"
)

// GetRotation exposes the pure visiting rule: which group index visits which
// in a given round. It does not touch the market.
func (h *Handler) GetRotation(w http.ResponseWriter, r *http.Request) {
	index, okIndex := getIntQueryParam(r, "index")
	round, okRound := getIntQueryParam(r, "round")
	count, okCount := getIntQueryParam(r, "count")
	if !okIndex || !okRound || !okCount {
		writeError(w, http.StatusBadRequest, "index, round and count must be integers")
		return
	}

	target := rotation.VisitTarget(index, round, count)
	if target < 0 {
		writeError(w, http.StatusBadRequest, "count must be positive and index within [0, count)")
		return
	}

	writeSuccess(w, models.RotationResponse{
		Index:  index,
		Round:  round,
		Count:  count,
		Target: target,
	})
}

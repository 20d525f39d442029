package httpapi

import (
	"net/http"

	"github.com/riskibarqy/match-arena/internal/usecase"
)

type expireSweepResponse struct {
	Swept int `json:"swept"`
}

type recomputeRatingsRequest struct {
	Computations []computeRatingsRequest `json:"computations" validate:"required,min=1,dive"`
	MaxWorkers   int                     `json:"maxWorkers" validate:"omitempty,min=1"`
}

func (h *Handler) RunExpireSweepJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunExpireSweepJob")
	defer span.End()

	swept, err := h.marketplaceService.SweepExpired(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	h.logger.InfoContext(ctx, "expire sweep finished", "swept", swept)
	writeSuccess(ctx, w, http.StatusOK, expireSweepResponse{Swept: swept})
}

func (h *Handler) RecomputeRatings(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RecomputeRatings")
	defer span.End()

	var payload recomputeRatingsRequest
	if err := decodeJSONBody(r.Body, &payload); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, payload); err != nil {
		writeError(ctx, w, err)
		return
	}

	inputs := make([]usecase.ComputeInput, 0, len(payload.Computations))
	for _, computation := range payload.Computations {
		inputs = append(inputs, computation.toInput())
	}

	result, err := h.ratingService.ComputeAndStoreBatch(ctx, inputs, payload.MaxWorkers)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	h.logger.InfoContext(ctx, "rating recompute finished",
		"tasks", result.TaskCount,
		"succeeded", result.SuccessCount,
		"failed", result.FailedCount,
	)
	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) GetMatchRequestStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMatchRequestStats")
	defer span.End()

	counts, err := h.marketplaceService.CountByStatus(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	stats := make(map[string]int, len(counts))
	for status, count := range counts {
		stats[string(status)] = count
	}

	writeSuccess(ctx, w, http.StatusOK, stats)
}

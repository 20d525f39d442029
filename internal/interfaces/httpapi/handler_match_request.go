package httpapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/riskibarqy/match-arena/internal/domain/matchrequest"
	"github.com/riskibarqy/match-arena/internal/usecase"
)

type createMatchRequestRequest struct {
	GameID          string `json:"gameId" validate:"required"`
	TeamSize        int    `json:"teamSize" validate:"required,min=1"`
	EntryFee        *int64 `json:"entryFee" validate:"omitempty,min=0"`
	Region          string `json:"region" validate:"required"`
	MatchType       string `json:"matchType" validate:"required"`
	SkillLevel      string `json:"skillLevel" validate:"required"`
	ScheduledDate   string `json:"scheduledDate" validate:"required"`
	ScheduledTime   string `json:"scheduledTime" validate:"required"`
	CreatedByUserID string `json:"createdByUserId" validate:"required"`
}

type acceptMatchRequestRequest struct {
	AcceptorUserID string `json:"acceptorUserId" validate:"required"`
}

type cancelMatchRequestRequest struct {
	CallerUserID string `json:"callerUserId" validate:"required"`
}

type createMatchRequestResponse struct {
	Status string `json:"status"`
	ID     string `json:"id"`
}

type matchRequestDTO struct {
	ID               string  `json:"id"`
	CreatedByUserID  string  `json:"createdByUserId"`
	GameID           string  `json:"gameId"`
	TeamSize         int     `json:"teamSize"`
	EntryFee         *int64  `json:"entryFee,omitempty"`
	Region           string  `json:"region"`
	MatchType        string  `json:"matchType"`
	SkillLevel       string  `json:"skillLevel"`
	ScheduledAtUTC   string  `json:"scheduledAtUtc"`
	Status           string  `json:"status"`
	AcceptedByUserID *string `json:"acceptedByUserId,omitempty"`
	CreatedAtUTC     string  `json:"createdAtUtc"`
	ResolvedAtUTC    *string `json:"resolvedAtUtc,omitempty"`
}

func toMatchRequestDTO(item matchrequest.MatchRequest) matchRequestDTO {
	dto := matchRequestDTO{
		ID:               item.ID,
		CreatedByUserID:  item.CreatedByUserID,
		GameID:           item.GameID,
		TeamSize:         item.TeamSize,
		EntryFee:         item.EntryFee,
		Region:           item.Region,
		MatchType:        item.MatchType,
		SkillLevel:       item.SkillLevel,
		ScheduledAtUTC:   item.ScheduledAt.UTC().Format(time.RFC3339),
		Status:           string(item.Status),
		AcceptedByUserID: item.AcceptedByUserID,
		CreatedAtUTC:     item.CreatedAt.UTC().Format(time.RFC3339),
	}
	if item.ResolvedAt != nil {
		resolved := item.ResolvedAt.UTC().Format(time.RFC3339)
		dto.ResolvedAtUTC = &resolved
	}
	return dto
}

func toMatchRequestDTOs(items []matchrequest.MatchRequest) []matchRequestDTO {
	out := make([]matchRequestDTO, 0, len(items))
	for _, item := range items {
		out = append(out, toMatchRequestDTO(item))
	}
	return out
}

func (h *Handler) CreateMatchRequest(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateMatchRequest")
	defer span.End()

	var payload createMatchRequestRequest
	if err := decodeJSONBody(r.Body, &payload); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, payload); err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.marketplaceService.CreateRequest(ctx, usecase.CreateRequestInput{
		CreatedByUserID: payload.CreatedByUserID,
		GameID:          payload.GameID,
		TeamSize:        payload.TeamSize,
		EntryFee:        payload.EntryFee,
		Region:          payload.Region,
		MatchType:       payload.MatchType,
		SkillLevel:      payload.SkillLevel,
		ScheduledDate:   payload.ScheduledDate,
		ScheduledTime:   payload.ScheduledTime,
	})
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusCreated, createMatchRequestResponse{
		Status: statusSuccess,
		ID:     item.ID,
	})
}

func (h *Handler) ListMatchRequests(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMatchRequests")
	defer span.End()

	statusFilter := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("status")))
	if statusFilter != "" && statusFilter != string(matchrequest.StatusOpen) {
		writeError(ctx, w, fmt.Errorf("%w: unsupported status filter %q", usecase.ErrInvalidInput, statusFilter))
		return
	}

	items, err := h.marketplaceService.ListOpen(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, toMatchRequestDTOs(items))
}

func (h *Handler) AcceptMatchRequest(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.AcceptMatchRequest")
	defer span.End()

	var payload acceptMatchRequestRequest
	if err := decodeJSONBody(r.Body, &payload); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, payload); err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.marketplaceService.Accept(ctx, r.PathValue("requestID"), payload.AcceptorUserID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, toMatchRequestDTO(item))
}

func (h *Handler) CancelMatchRequest(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CancelMatchRequest")
	defer span.End()

	var payload cancelMatchRequestRequest
	if err := decodeJSONBody(r.Body, &payload); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, payload); err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.marketplaceService.Cancel(ctx, r.PathValue("requestID"), payload.CallerUserID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, toMatchRequestDTO(item))
}

func (h *Handler) GetMatchRequest(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMatchRequest")
	defer span.End()

	item, err := h.marketplaceService.GetByID(ctx, r.PathValue("requestID"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, toMatchRequestDTO(item))
}

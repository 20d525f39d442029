package httpapi

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	sonic "github.com/bytedance/sonic"

	"github.com/riskibarqy/match-arena/internal/domain/rating"
	"github.com/riskibarqy/match-arena/internal/usecase"
)

// scoreValue accepts a JSON number or a numeric string. Anything else is a
// decode error, so malformed scores surface as invalid input instead of
// flowing into the math as NaN.
type scoreValue float64

func (s *scoreValue) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return fmt.Errorf("score is required")
	}

	if trimmed[0] == '"' {
		var raw string
		if err := sonic.Unmarshal(trimmed, &raw); err != nil {
			return fmt.Errorf("score is not numeric")
		}
		parsed, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return fmt.Errorf("score %q is not numeric", raw)
		}
		*s = scoreValue(parsed)
		return nil
	}

	var parsed float64
	if err := sonic.Unmarshal(trimmed, &parsed); err != nil {
		return fmt.Errorf("score is not numeric")
	}
	*s = scoreValue(parsed)
	return nil
}

type ratingPairDTO struct {
	Mu    float64 `json:"mu"`
	Sigma float64 `json:"sigma" validate:"gt=0"`
}

// Scores are pointers so a round object that omits a side fails validation
// instead of defaulting to zero.
type roundScoreDTO struct {
	Team1Score *scoreValue `json:"team1Score" validate:"required"`
	Team2Score *scoreValue `json:"team2Score" validate:"required"`
}

type computeRatingsRequest struct {
	Team1PlayerIDs   []string                 `json:"team1PlayerIds" validate:"required,min=1,dive,required"`
	Team2PlayerIDs   []string                 `json:"team2PlayerIds" validate:"required,min=1,dive,required"`
	Team1Ratings     map[string]ratingPairDTO `json:"team1Ratings" validate:"omitempty,dive"`
	Team2Ratings     map[string]ratingPairDTO `json:"team2Ratings" validate:"omitempty,dive"`
	PriorTeamRating1 *ratingPairDTO           `json:"priorTeamRating1"`
	PriorTeamRating2 *ratingPairDTO           `json:"priorTeamRating2"`
	Rounds           []roundScoreDTO          `json:"rounds" validate:"required,min=1,dive"`
}

type ratedTeamDTO struct {
	Mu      float64 `json:"mu"`
	Sigma   float64 `json:"sigma"`
	Ordinal float64 `json:"ordinal"`
}

type ratedPlayerDTO struct {
	ID      string  `json:"id"`
	Mu      float64 `json:"mu"`
	Sigma   float64 `json:"sigma"`
	Ordinal float64 `json:"ordinal"`
}

type computeRatingsResponse struct {
	Status       string           `json:"status"`
	Team1Avg     ratedTeamDTO     `json:"team1_avg"`
	Team2Avg     ratedTeamDTO     `json:"team2_avg"`
	Team1Players []ratedPlayerDTO `json:"team1_players"`
	Team2Players []ratedPlayerDTO `json:"team2_players"`
}

func (in computeRatingsRequest) toInput() usecase.ComputeInput {
	input := usecase.ComputeInput{
		Team1PlayerIDs: in.Team1PlayerIDs,
		Team2PlayerIDs: in.Team2PlayerIDs,
		Team1Priors:    toPriorMap(in.Team1Ratings),
		Team2Priors:    toPriorMap(in.Team2Ratings),
	}
	if in.PriorTeamRating1 != nil {
		input.PriorTeam1 = &rating.PlayerRating{Mu: in.PriorTeamRating1.Mu, Sigma: in.PriorTeamRating1.Sigma}
	}
	if in.PriorTeamRating2 != nil {
		input.PriorTeam2 = &rating.PlayerRating{Mu: in.PriorTeamRating2.Mu, Sigma: in.PriorTeamRating2.Sigma}
	}
	for _, round := range in.Rounds {
		var score usecase.RoundScore
		if round.Team1Score != nil {
			score.Team1Score = float64(*round.Team1Score)
		}
		if round.Team2Score != nil {
			score.Team2Score = float64(*round.Team2Score)
		}
		input.Rounds = append(input.Rounds, score)
	}
	return input
}

func toPriorMap(pairs map[string]ratingPairDTO) map[string]rating.PlayerRating {
	if len(pairs) == 0 {
		return nil
	}
	out := make(map[string]rating.PlayerRating, len(pairs))
	for playerID, pair := range pairs {
		out[playerID] = rating.PlayerRating{Mu: pair.Mu, Sigma: pair.Sigma}
	}
	return out
}

func toRatedTeamDTO(item rating.PlayerRating) ratedTeamDTO {
	return ratedTeamDTO{Mu: item.Mu, Sigma: item.Sigma, Ordinal: item.Ordinal()}
}

func toRatedPlayerDTOs(items []rating.PlayerRating) []ratedPlayerDTO {
	out := make([]ratedPlayerDTO, 0, len(items))
	for _, item := range items {
		out = append(out, ratedPlayerDTO{
			ID:      item.PlayerID,
			Mu:      item.Mu,
			Sigma:   item.Sigma,
			Ordinal: item.Ordinal(),
		})
	}
	return out
}

func (h *Handler) ComputeRatings(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ComputeRatings")
	defer span.End()

	var payload computeRatingsRequest
	if err := decodeJSONBody(r.Body, &payload); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, payload); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.ratingService.Compute(ctx, payload.toInput())
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, computeRatingsResponse{
		Status:       statusSuccess,
		Team1Avg:     toRatedTeamDTO(result.Team1Average),
		Team2Avg:     toRatedTeamDTO(result.Team2Average),
		Team1Players: toRatedPlayerDTOs(result.Team1Players),
		Team2Players: toRatedPlayerDTOs(result.Team2Players),
	})
}

func (h *Handler) GetPlayerRating(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetPlayerRating")
	defer span.End()

	item, err := h.ratingService.GetPlayerRating(ctx, r.PathValue("playerID"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, toRatedPlayerDTOs([]rating.PlayerRating{item})[0])
}

func (h *Handler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLeaderboard")
	defer span.End()

	limit := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeError(ctx, w, fmt.Errorf("%w: limit must be a non-negative integer", usecase.ErrInvalidInput))
			return
		}
		limit = parsed
	}

	items, err := h.leaderboardService.Top(ctx, limit)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, toRatedPlayerDTOs(items))
}

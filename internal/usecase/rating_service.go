package usecase

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/match-arena/internal/domain/rating"
)

const (
	defaultRecomputeWorkers = 4
	maxRecomputeWorkers     = 32

	batchStatusSuccess = "success"
	batchStatusFailed  = "failed"
)

// RoundScore is one observed scoreline, consumed in order.
type RoundScore struct {
	Team1Score float64
	Team2Score float64
}

type ComputeInput struct {
	Team1PlayerIDs []string
	Team2PlayerIDs []string
	// Caller-supplied priors by player id. A missing entry falls back to the
	// stored rating, then to the new-player default.
	Team1Priors map[string]rating.PlayerRating
	Team2Priors map[string]rating.PlayerRating
	// Seeds for the separate team-average chain. Defaults apply when nil.
	PriorTeam1 *rating.PlayerRating
	PriorTeam2 *rating.PlayerRating
	Rounds     []RoundScore
}

// ComputeResult carries both outputs: per-player posteriors and the
// independently seeded team-average posteriors. The two chains share the
// algorithm but not their priors, so they need not agree numerically.
type ComputeResult struct {
	Team1Players []rating.PlayerRating
	Team2Players []rating.PlayerRating
	Team1Average rating.PlayerRating
	Team2Average rating.PlayerRating
}

type BatchTaskResult struct {
	Index      int    `json:"index"`
	Status     string `json:"status"`
	Players    int    `json:"players"`
	DurationMs int64  `json:"duration_ms"`
	Message    string `json:"message,omitempty"`
}

type BatchResult struct {
	TaskCount    int               `json:"task_count"`
	SuccessCount int               `json:"success_count"`
	FailedCount  int               `json:"failed_count"`
	WorkerCount  int               `json:"worker_count"`
	Tasks        []BatchTaskResult `json:"tasks"`
}

// RatingService runs the skill-rating engine over stored beliefs.
type RatingService struct {
	ratingRepo     rating.Repository
	now            func() time.Time
	defaultWorkers int
}

func NewRatingService(ratingRepo rating.Repository) *RatingService {
	return &RatingService{
		ratingRepo:     ratingRepo,
		now:            time.Now,
		defaultWorkers: defaultRecomputeWorkers,
	}
}

// SetDefaultBatchWorkers overrides the worker count used when a batch
// request does not ask for one.
func (s *RatingService) SetDefaultBatchWorkers(n int) {
	if n >= 1 {
		s.defaultWorkers = n
	}
}

// Compute replays the rounds through the engine and returns posteriors
// without persisting anything.
func (s *RatingService) Compute(ctx context.Context, input ComputeInput) (ComputeResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RatingService.Compute")
	defer span.End()

	team1IDs, err := normalizeRoster("team1", input.Team1PlayerIDs)
	if err != nil {
		return ComputeResult{}, err
	}
	team2IDs, err := normalizeRoster("team2", input.Team2PlayerIDs)
	if err != nil {
		return ComputeResult{}, err
	}
	if err := validateRounds(input.Rounds); err != nil {
		return ComputeResult{}, err
	}

	team1, err := s.resolvePriors(ctx, team1IDs, input.Team1Priors)
	if err != nil {
		return ComputeResult{}, err
	}
	team2, err := s.resolvePriors(ctx, team2IDs, input.Team2Priors)
	if err != nil {
		return ComputeResult{}, err
	}

	avg1, err := teamSeed("team1", input.PriorTeam1)
	if err != nil {
		return ComputeResult{}, err
	}
	avg2, err := teamSeed("team2", input.PriorTeam2)
	if err != nil {
		return ComputeResult{}, err
	}
	avgTeam1, avgTeam2 := rating.Team{avg1}, rating.Team{avg2}

	for _, round := range input.Rounds {
		result := rating.ResultFromScores(round.Team1Score, round.Team2Score)
		team1, team2 = rating.UpdateRound(team1, team2, result)
		avgTeam1, avgTeam2 = rating.UpdateRound(avgTeam1, avgTeam2, result)
	}

	now := s.now().UTC()
	return ComputeResult{
		Team1Players: finalizeTeam(team1, now),
		Team2Players: finalizeTeam(team2, now),
		Team1Average: avgTeam1[0],
		Team2Average: avgTeam2[0],
	}, nil
}

// ComputeAndStore runs Compute and persists the per-player posteriors. The
// team-average chain is returned but never stored.
func (s *RatingService) ComputeAndStore(ctx context.Context, input ComputeInput) (ComputeResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RatingService.ComputeAndStore")
	defer span.End()

	result, err := s.Compute(ctx, input)
	if err != nil {
		return ComputeResult{}, err
	}

	for _, member := range result.Team1Players {
		if err := s.ratingRepo.Upsert(ctx, member); err != nil {
			return ComputeResult{}, fmt.Errorf("store rating for player %s: %w", member.PlayerID, err)
		}
	}
	for _, member := range result.Team2Players {
		if err := s.ratingRepo.Upsert(ctx, member); err != nil {
			return ComputeResult{}, fmt.Errorf("store rating for player %s: %w", member.PlayerID, err)
		}
	}

	return result, nil
}

// ComputeAndStoreBatch fans a backfill out over a worker pool. Entries that
// share a player are applied in unspecified order.
func (s *RatingService) ComputeAndStoreBatch(ctx context.Context, inputs []ComputeInput, maxWorkers int) (BatchResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RatingService.ComputeAndStoreBatch")
	defer span.End()

	if len(inputs) == 0 {
		return BatchResult{}, fmt.Errorf("%w: at least one computation is required", ErrInvalidInput)
	}

	workerCount := maxWorkers
	if workerCount <= 0 {
		workerCount = s.defaultWorkers
	}
	if workerCount > maxRecomputeWorkers {
		workerCount = maxRecomputeWorkers
	}
	if workerCount > len(inputs) {
		workerCount = len(inputs)
	}

	pool, err := ants.NewPool(workerCount)
	if err != nil {
		return BatchResult{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var successCount, failedCount atomic.Int32
	results := make(chan BatchTaskResult, len(inputs))

	var workers sync.WaitGroup
	for i, input := range inputs {
		i, input := i, input
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			start := time.Now()
			row := BatchTaskResult{Index: i}

			computed, taskErr := s.ComputeAndStore(ctx, input)
			row.DurationMs = time.Since(start).Milliseconds()
			if taskErr != nil {
				row.Status = batchStatusFailed
				row.Message = taskErr.Error()
				failedCount.Add(1)
			} else {
				row.Status = batchStatusSuccess
				row.Players = len(computed.Team1Players) + len(computed.Team2Players)
				successCount.Add(1)
			}

			results <- row
		}); err != nil {
			workers.Done()
			return BatchResult{}, fmt.Errorf("submit task to worker pool: %w", err)
		}
	}

	workers.Wait()
	close(results)

	result := BatchResult{
		TaskCount:   len(inputs),
		WorkerCount: workerCount,
	}
	for row := range results {
		result.Tasks = append(result.Tasks, row)
	}
	sort.SliceStable(result.Tasks, func(i, j int) bool {
		return result.Tasks[i].Index < result.Tasks[j].Index
	})

	result.SuccessCount = int(successCount.Load())
	result.FailedCount = int(failedCount.Load())
	return result, nil
}

// GetPlayerRating returns the stored belief, or the new-player default when
// the player has never been rated.
func (s *RatingService) GetPlayerRating(ctx context.Context, playerID string) (rating.PlayerRating, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RatingService.GetPlayerRating")
	defer span.End()

	playerID = strings.TrimSpace(playerID)
	if playerID == "" {
		return rating.PlayerRating{}, fmt.Errorf("%w: player id is required", ErrInvalidInput)
	}

	stored, exists, err := s.ratingRepo.Get(ctx, playerID)
	if err != nil {
		return rating.PlayerRating{}, fmt.Errorf("get rating for player %s: %w", playerID, err)
	}
	if !exists {
		return rating.New(playerID), nil
	}

	return stored, nil
}

func (s *RatingService) resolvePriors(ctx context.Context, playerIDs []string, given map[string]rating.PlayerRating) (rating.Team, error) {
	team := make(rating.Team, 0, len(playerIDs))
	for _, playerID := range playerIDs {
		if prior, ok := given[playerID]; ok {
			if prior.Sigma <= 0 {
				return nil, fmt.Errorf("%w: sigma for player %s must be positive", ErrInvalidInput, playerID)
			}
			prior.PlayerID = playerID
			team = append(team, prior)
			continue
		}

		stored, exists, err := s.ratingRepo.Get(ctx, playerID)
		if err != nil {
			return nil, fmt.Errorf("get prior rating for player %s: %w", playerID, err)
		}
		if exists {
			team = append(team, stored)
			continue
		}

		team = append(team, rating.New(playerID))
	}

	return team, nil
}

func normalizeRoster(side string, playerIDs []string) ([]string, error) {
	out := make([]string, 0, len(playerIDs))
	seen := make(map[string]struct{}, len(playerIDs))
	for _, playerID := range playerIDs {
		playerID = strings.TrimSpace(playerID)
		if playerID == "" {
			return nil, fmt.Errorf("%w: %s roster contains an empty player id", ErrInvalidInput, side)
		}
		if _, dup := seen[playerID]; dup {
			return nil, fmt.Errorf("%w: %s roster lists player %s twice", ErrInvalidInput, side, playerID)
		}
		seen[playerID] = struct{}{}
		out = append(out, playerID)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %s roster must not be empty", ErrInvalidInput, side)
	}

	return out, nil
}

func validateRounds(rounds []RoundScore) error {
	for i, round := range rounds {
		if math.IsNaN(round.Team1Score) || math.IsNaN(round.Team2Score) ||
			math.IsInf(round.Team1Score, 0) || math.IsInf(round.Team2Score, 0) {
			return fmt.Errorf("%w: round %d has a non-numeric score", ErrInvalidInput, i+1)
		}
	}

	return nil
}

func teamSeed(label string, prior *rating.PlayerRating) (rating.PlayerRating, error) {
	if prior == nil {
		return rating.New(label), nil
	}
	if prior.Sigma <= 0 {
		return rating.PlayerRating{}, fmt.Errorf("%w: %s prior sigma must be > 0", ErrInvalidInput, label)
	}

	seed := *prior
	seed.PlayerID = label
	return seed, nil
}

func finalizeTeam(team rating.Team, now time.Time) []rating.PlayerRating {
	out := make([]rating.PlayerRating, len(team))
	for i, member := range team {
		member.GamesRecorded++
		member.UpdatedAt = now
		out[i] = member
	}
	return out
}

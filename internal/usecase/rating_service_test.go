package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/match-arena/internal/domain/rating"
)

type stubRatingRepo struct {
	mu    sync.Mutex
	items map[string]rating.PlayerRating
}

func newStubRatingRepo() *stubRatingRepo {
	return &stubRatingRepo{items: make(map[string]rating.PlayerRating)}
}

func (r *stubRatingRepo) Get(_ context.Context, playerID string) (rating.PlayerRating, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[playerID]
	return item, ok, nil
}

func (r *stubRatingRepo) Upsert(_ context.Context, item rating.PlayerRating) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[item.PlayerID] = item
	return nil
}

func (r *stubRatingRepo) List(_ context.Context) ([]rating.PlayerRating, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]rating.PlayerRating, 0, len(r.items))
	for _, item := range r.items {
		out = append(out, item)
	}
	return out, nil
}

func oneRoundInput() ComputeInput {
	return ComputeInput{
		Team1PlayerIDs: []string{"alice"},
		Team2PlayerIDs: []string{"bob"},
		Rounds:         []RoundScore{{Team1Score: 13, Team2Score: 7}},
	}
}

func TestRatingService_Compute_DefaultsForNewPlayers(t *testing.T) {
	service := NewRatingService(newStubRatingRepo())

	result, err := service.Compute(t.Context(), oneRoundInput())
	require.NoError(t, err)

	require.Len(t, result.Team1Players, 1)
	require.Len(t, result.Team2Players, 1)
	assert.Greater(t, result.Team1Players[0].Mu, rating.DefaultMu)
	assert.Less(t, result.Team2Players[0].Mu, rating.DefaultMu)
	assert.Less(t, result.Team1Players[0].Sigma, rating.DefaultSigma)
	assert.Equal(t, 1, result.Team1Players[0].GamesRecorded)
}

func TestRatingService_Compute_TeamAverageChainIsIndependent(t *testing.T) {
	service := NewRatingService(newStubRatingRepo())

	input := oneRoundInput()
	input.PriorTeam1 = &rating.PlayerRating{Mu: 40, Sigma: 2}
	input.PriorTeam2 = &rating.PlayerRating{Mu: 10, Sigma: 2}

	result, err := service.Compute(t.Context(), input)
	require.NoError(t, err)

	// The average chain starts from its own priors, not the roster's.
	assert.Greater(t, result.Team1Average.Mu, 39.0)
	assert.Less(t, result.Team2Average.Mu, 11.0)
	assert.NotEqual(t, result.Team1Players[0].Mu, result.Team1Average.Mu)
}

func TestRatingService_Compute_PrefersCallerPriorsOverStored(t *testing.T) {
	repo := newStubRatingRepo()
	stored := rating.PlayerRating{PlayerID: "alice", Mu: 30, Sigma: 4}
	require.NoError(t, repo.Upsert(context.Background(), stored))

	service := NewRatingService(repo)

	input := oneRoundInput()
	input.Team1Priors = map[string]rating.PlayerRating{
		"alice": {Mu: 10, Sigma: 8},
	}
	result, err := service.Compute(t.Context(), input)
	require.NoError(t, err)

	// Posterior grew from the caller's mu=10 prior, not the stored mu=30.
	assert.Less(t, result.Team1Players[0].Mu, 20.0)
}

func TestRatingService_Compute_UsesStoredPriorsWhenPresent(t *testing.T) {
	repo := newStubRatingRepo()
	require.NoError(t, repo.Upsert(context.Background(), rating.PlayerRating{
		PlayerID: "bob", Mu: 40, Sigma: 3, GamesRecorded: 7,
	}))

	service := NewRatingService(repo)

	result, err := service.Compute(t.Context(), oneRoundInput())
	require.NoError(t, err)

	assert.Greater(t, result.Team2Players[0].Mu, 30.0)
	assert.Equal(t, 8, result.Team2Players[0].GamesRecorded)
}

func TestRatingService_Compute_InvalidInput(t *testing.T) {
	service := NewRatingService(newStubRatingRepo())

	cases := []struct {
		name   string
		mutate func(*ComputeInput)
	}{
		{"empty team1", func(in *ComputeInput) { in.Team1PlayerIDs = nil }},
		{"empty team2", func(in *ComputeInput) { in.Team2PlayerIDs = []string{} }},
		{"blank player id", func(in *ComputeInput) { in.Team1PlayerIDs = []string{"  "} }},
		{"duplicate player", func(in *ComputeInput) { in.Team1PlayerIDs = []string{"alice", "alice"} }},
		{"non-positive sigma prior", func(in *ComputeInput) {
			in.Team1Priors = map[string]rating.PlayerRating{"alice": {Mu: 25, Sigma: 0}}
		}},
		{"non-positive sigma team prior", func(in *ComputeInput) {
			in.PriorTeam1 = &rating.PlayerRating{Mu: 25, Sigma: 0}
		}},
		{"negative sigma team prior", func(in *ComputeInput) {
			in.PriorTeam2 = &rating.PlayerRating{Mu: 25, Sigma: -1}
		}},
	}
	for _, tc := range cases {
		input := oneRoundInput()
		tc.mutate(&input)
		_, err := service.Compute(t.Context(), input)
		assert.ErrorIs(t, err, ErrInvalidInput, tc.name)
	}
}

func TestRatingService_ComputeAndStore_PersistsPerPlayerPosteriors(t *testing.T) {
	repo := newStubRatingRepo()
	service := NewRatingService(repo)

	result, err := service.ComputeAndStore(t.Context(), oneRoundInput())
	require.NoError(t, err)

	stored, ok, err := repo.Get(context.Background(), "alice")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, result.Team1Players[0].Mu, stored.Mu)

	// The team-average chain is output only.
	_, ok, err = repo.Get(context.Background(), "team1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRatingService_ComputeAndStoreBatch(t *testing.T) {
	repo := newStubRatingRepo()
	service := NewRatingService(repo)

	inputs := []ComputeInput{
		oneRoundInput(),
		{
			Team1PlayerIDs: []string{"carol"},
			Team2PlayerIDs: []string{"dave"},
			Rounds:         []RoundScore{{Team1Score: 5, Team2Score: 9}},
		},
		{
			// Empty roster fails without sinking the batch.
			Team2PlayerIDs: []string{"erin"},
			Rounds:         []RoundScore{{Team1Score: 1, Team2Score: 0}},
		},
	}

	result, err := service.ComputeAndStoreBatch(t.Context(), inputs, 2)
	require.NoError(t, err)

	assert.Equal(t, 3, result.TaskCount)
	assert.Equal(t, 2, result.SuccessCount)
	assert.Equal(t, 1, result.FailedCount)
	assert.Equal(t, 2, result.WorkerCount)
	require.Len(t, result.Tasks, 3)
	assert.Equal(t, batchStatusFailed, result.Tasks[2].Status)
	assert.NotEmpty(t, result.Tasks[2].Message)

	_, ok, err := repo.Get(context.Background(), "dave")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRatingService_ComputeAndStoreBatch_EmptyBatch(t *testing.T) {
	service := NewRatingService(newStubRatingRepo())

	_, err := service.ComputeAndStoreBatch(t.Context(), nil, 4)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestRatingService_GetPlayerRating(t *testing.T) {
	repo := newStubRatingRepo()
	service := NewRatingService(repo)

	fresh, err := service.GetPlayerRating(t.Context(), "unknown")
	require.NoError(t, err)
	assert.Equal(t, rating.DefaultMu, fresh.Mu)
	assert.Equal(t, rating.DefaultSigma, fresh.Sigma)

	require.NoError(t, repo.Upsert(context.Background(), rating.PlayerRating{
		PlayerID: "alice", Mu: 28, Sigma: 5,
	}))
	stored, err := service.GetPlayerRating(t.Context(), "alice")
	require.NoError(t, err)
	assert.Equal(t, 28.0, stored.Mu)

	_, err = service.GetPlayerRating(t.Context(), "   ")
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

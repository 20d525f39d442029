package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/match-arena/internal/domain/rating"
)

func TestLeaderboardService_Top(t *testing.T) {
	repo := newStubRatingRepo()
	ctx := context.Background()
	require.NoError(t, repo.Upsert(ctx, rating.PlayerRating{PlayerID: "low", Mu: 20, Sigma: 5}))
	require.NoError(t, repo.Upsert(ctx, rating.PlayerRating{PlayerID: "high", Mu: 30, Sigma: 1}))
	require.NoError(t, repo.Upsert(ctx, rating.PlayerRating{PlayerID: "mid", Mu: 28, Sigma: 3}))

	service := NewLeaderboardService(repo)

	top, err := service.Top(t.Context(), 2)
	require.NoError(t, err)

	require.Len(t, top, 2)
	assert.Equal(t, "high", top[0].PlayerID)
	assert.Equal(t, "mid", top[1].PlayerID)
}

func TestLeaderboardService_Top_TieBreaksAreStable(t *testing.T) {
	repo := newStubRatingRepo()
	ctx := context.Background()
	// Equal ordinals: 25-3*5 = 10 and 22-3*4 = 10. Higher mu ranks first.
	require.NoError(t, repo.Upsert(ctx, rating.PlayerRating{PlayerID: "b", Mu: 25, Sigma: 5}))
	require.NoError(t, repo.Upsert(ctx, rating.PlayerRating{PlayerID: "a", Mu: 22, Sigma: 4}))
	// Fully identical beliefs fall back to player id order.
	require.NoError(t, repo.Upsert(ctx, rating.PlayerRating{PlayerID: "d", Mu: 25, Sigma: 5}))

	service := NewLeaderboardService(repo)

	top, err := service.Top(t.Context(), 10)
	require.NoError(t, err)

	require.Len(t, top, 3)
	assert.Equal(t, "b", top[0].PlayerID)
	assert.Equal(t, "d", top[1].PlayerID)
	assert.Equal(t, "a", top[2].PlayerID)
}

func TestLeaderboardService_Top_LimitBounds(t *testing.T) {
	repo := newStubRatingRepo()
	require.NoError(t, repo.Upsert(context.Background(), rating.PlayerRating{PlayerID: "only", Mu: 25, Sigma: 5}))

	service := NewLeaderboardService(repo)

	top, err := service.Top(t.Context(), 0)
	require.NoError(t, err)
	assert.Len(t, top, 1)

	top, err = service.Top(t.Context(), -5)
	require.NoError(t, err)
	assert.Len(t, top, 1)
}

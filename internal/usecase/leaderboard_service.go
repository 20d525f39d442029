package usecase

import (
	"context"
	"fmt"
	"sort"

	"github.com/riskibarqy/match-arena/internal/domain/rating"
)

const (
	defaultLeaderboardLimit = 25
	maxLeaderboardLimit     = 200
)

// LeaderboardService ranks players by their conservative ordinal.
type LeaderboardService struct {
	ratingRepo rating.Repository
}

func NewLeaderboardService(ratingRepo rating.Repository) *LeaderboardService {
	return &LeaderboardService{ratingRepo: ratingRepo}
}

// Top returns up to limit players ordered by ordinal descending. Ties break
// on mu, then player id, so the order is stable across calls.
func (s *LeaderboardService) Top(ctx context.Context, limit int) ([]rating.PlayerRating, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeaderboardService.Top")
	defer span.End()

	if limit <= 0 {
		limit = defaultLeaderboardLimit
	}
	if limit > maxLeaderboardLimit {
		limit = maxLeaderboardLimit
	}

	items, err := s.ratingRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list ratings: %w", err)
	}

	sort.SliceStable(items, func(i, j int) bool {
		oi, oj := items[i].Ordinal(), items[j].Ordinal()
		if oi != oj {
			return oi > oj
		}
		if items[i].Mu != items[j].Mu {
			return items[i].Mu > items[j].Mu
		}
		return items[i].PlayerID < items[j].PlayerID
	})

	if len(items) > limit {
		items = items[:limit]
	}

	return items, nil
}

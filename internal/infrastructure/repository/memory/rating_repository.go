package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/match-arena/internal/domain/rating"
)

type RatingRepository struct {
	mu    sync.RWMutex
	items map[string]rating.PlayerRating
}

func NewRatingRepository() *RatingRepository {
	return &RatingRepository{items: make(map[string]rating.PlayerRating)}
}

func (r *RatingRepository) Get(_ context.Context, playerID string) (rating.PlayerRating, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[playerID]
	if !ok {
		return rating.PlayerRating{}, false, nil
	}

	return item, true, nil
}

func (r *RatingRepository) Upsert(_ context.Context, item rating.PlayerRating) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[item.PlayerID] = item
	return nil
}

func (r *RatingRepository) List(_ context.Context) ([]rating.PlayerRating, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]rating.PlayerRating, 0, len(r.items))
	for _, item := range r.items {
		out = append(out, item)
	}

	return out, nil
}

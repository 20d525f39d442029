package rating

import "context"

// Repository describes rating persistence needs from use cases. Writes are
// last-writer-wins per player; callers serialize updates for a given player.
type Repository interface {
	Get(ctx context.Context, playerID string) (PlayerRating, bool, error)
	Upsert(ctx context.Context, item PlayerRating) error
	List(ctx context.Context) ([]PlayerRating, error)
}

package matchrequest

import (
	"context"
	"time"
)

// Repository describes match request persistence needs from use cases.
// Accept and Cancel perform the whole check-and-transition atomically so that
// two racing callers on the same id cannot both succeed. ListOpen sweeps
// past-due Open requests to Expired before building its snapshot.
type Repository interface {
	Create(ctx context.Context, item MatchRequest) error
	GetByID(ctx context.Context, requestID string) (MatchRequest, bool, error)
	ListOpen(ctx context.Context, now time.Time) ([]MatchRequest, error)
	Accept(ctx context.Context, requestID, acceptorID string, now time.Time) (MatchRequest, bool, error)
	Cancel(ctx context.Context, requestID, callerID string, now time.Time) (MatchRequest, bool, error)
	SweepExpired(ctx context.Context, now time.Time) (int, error)
	CountByStatus(ctx context.Context) (map[Status]int, error)
}

package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/riskibarqy/match-arena/internal/domain/matchrequest"
)

// RequestRepository keeps the request pool in process memory. Accept and
// Cancel run their whole check-and-transition under the write lock, which is
// the linearization point for racing callers.
type RequestRepository struct {
	mu    sync.RWMutex
	items map[string]matchrequest.MatchRequest
	order []string
}

func NewRequestRepository() *RequestRepository {
	return &RequestRepository{items: make(map[string]matchrequest.MatchRequest)}
}

func (r *RequestRepository) Create(_ context.Context, item matchrequest.MatchRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[item.ID]; exists {
		return fmt.Errorf("match request %s already exists", item.ID)
	}

	r.items[item.ID] = cloneRequest(item)
	r.order = append(r.order, item.ID)
	return nil
}

func (r *RequestRepository) GetByID(_ context.Context, requestID string) (matchrequest.MatchRequest, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[requestID]
	if !ok {
		return matchrequest.MatchRequest{}, false, nil
	}

	return cloneRequest(item), true, nil
}

func (r *RequestRepository) ListOpen(_ context.Context, now time.Time) ([]matchrequest.MatchRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sweepLocked(now)

	open := make([]matchrequest.MatchRequest, 0)
	for _, requestID := range r.order {
		item := r.items[requestID]
		if item.Status == matchrequest.StatusOpen {
			open = append(open, cloneRequest(item))
		}
	}

	return open, nil
}

func (r *RequestRepository) Accept(_ context.Context, requestID, acceptorID string, now time.Time) (matchrequest.MatchRequest, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[requestID]
	if !ok {
		return matchrequest.MatchRequest{}, false, nil
	}

	if err := item.Accept(acceptorID, now); err != nil {
		return matchrequest.MatchRequest{}, true, err
	}

	r.items[requestID] = item
	return cloneRequest(item), true, nil
}

func (r *RequestRepository) Cancel(_ context.Context, requestID, callerID string, now time.Time) (matchrequest.MatchRequest, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[requestID]
	if !ok {
		return matchrequest.MatchRequest{}, false, nil
	}

	if err := item.Cancel(callerID, now); err != nil {
		return matchrequest.MatchRequest{}, true, err
	}

	r.items[requestID] = item
	return cloneRequest(item), true, nil
}

func (r *RequestRepository) SweepExpired(_ context.Context, now time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.sweepLocked(now), nil
}

func (r *RequestRepository) CountByStatus(_ context.Context) (map[matchrequest.Status]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[matchrequest.Status]int, 4)
	for _, item := range r.items {
		counts[item.Status]++
	}

	return counts, nil
}

func (r *RequestRepository) sweepLocked(now time.Time) int {
	swept := 0
	for requestID, item := range r.items {
		if item.ExpireIfDue(now) {
			r.items[requestID] = item
			swept++
		}
	}
	return swept
}

func cloneRequest(item matchrequest.MatchRequest) matchrequest.MatchRequest {
	copied := item
	if item.EntryFee != nil {
		fee := *item.EntryFee
		copied.EntryFee = &fee
	}
	if item.AcceptedByUserID != nil {
		acceptor := *item.AcceptedByUserID
		copied.AcceptedByUserID = &acceptor
	}
	if item.ResolvedAt != nil {
		resolved := *item.ResolvedAt
		copied.ResolvedAt = &resolved
	}
	return copied
}

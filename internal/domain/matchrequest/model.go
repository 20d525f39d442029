package matchrequest

import (
	"errors"
	"fmt"
	"time"
)

// Status is the lifecycle state of a match request. Open is the only
// non-terminal state; every transition out of Open is final.
type Status string

const (
	StatusOpen      Status = "open"
	StatusAccepted  Status = "accepted"
	StatusCancelled Status = "cancelled"
	StatusExpired   Status = "expired"
)

func (s Status) IsTerminal() bool {
	switch s {
	case StatusAccepted, StatusCancelled, StatusExpired:
		return true
	default:
		return false
	}
}

var (
	ErrAlreadyResolved = errors.New("match request already resolved")
	ErrNotOwner        = errors.New("caller does not own match request")
	ErrSelfAccept      = errors.New("cannot accept own match request")
)

// MatchRequest is one posted offer in the marketplace pool. Resolved requests
// are kept for history; nothing deletes them.
type MatchRequest struct {
	ID               string
	CreatedByUserID  string
	GameID           string
	TeamSize         int
	EntryFee         *int64
	Region           string
	MatchType        string
	SkillLevel       string
	ScheduledAt      time.Time
	Status           Status
	AcceptedByUserID *string
	CreatedAt        time.Time
	ResolvedAt       *time.Time
}

func (m MatchRequest) Validate() error {
	if m.CreatedByUserID == "" {
		return fmt.Errorf("created by user id is required")
	}
	if m.GameID == "" {
		return fmt.Errorf("game id is required")
	}
	if m.TeamSize < 1 {
		return fmt.Errorf("team size must be at least 1")
	}
	if m.ScheduledAt.IsZero() {
		return fmt.Errorf("scheduled time is required")
	}

	return nil
}

// Accept transitions the request to Accepted and records the acceptor. The
// caller must hold whatever lock makes the check-and-transition atomic.
func (m *MatchRequest) Accept(acceptorID string, now time.Time) error {
	if m.Status != StatusOpen {
		return ErrAlreadyResolved
	}
	if acceptorID == m.CreatedByUserID {
		return ErrSelfAccept
	}

	resolvedAt := now.UTC()
	m.Status = StatusAccepted
	m.AcceptedByUserID = &acceptorID
	m.ResolvedAt = &resolvedAt
	return nil
}

// Cancel transitions the request to Cancelled. Only the creator may cancel,
// and that check applies regardless of current state so a non-owner never
// learns the request is already resolved.
func (m *MatchRequest) Cancel(callerID string, now time.Time) error {
	if callerID != m.CreatedByUserID {
		return ErrNotOwner
	}
	if m.Status != StatusOpen {
		return ErrAlreadyResolved
	}

	resolvedAt := now.UTC()
	m.Status = StatusCancelled
	m.ResolvedAt = &resolvedAt
	return nil
}

// ExpireIfDue marks an Open request whose scheduled time has passed as
// Expired. It reports whether a transition happened.
func (m *MatchRequest) ExpireIfDue(now time.Time) bool {
	if m.Status != StatusOpen {
		return false
	}
	if m.ScheduledAt.After(now) {
		return false
	}

	resolvedAt := now.UTC()
	m.Status = StatusExpired
	m.ResolvedAt = &resolvedAt
	return true
}

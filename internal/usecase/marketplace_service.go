package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/match-arena/internal/domain/matchrequest"
	"github.com/riskibarqy/match-arena/internal/platform/cache"
	"github.com/riskibarqy/match-arena/internal/platform/id"
)

const (
	// DefaultOpenListTTL matches the client poll interval, so the poll herd
	// costs one store read per interval.
	DefaultOpenListTTL = 2 * time.Second

	openListCacheKey = "match-requests:open"

	scheduledDateLayout = "2006-01-02"
)

var scheduledTimeLayouts = []string{"15:04:05", "15:04"}

type CreateRequestInput struct {
	CreatedByUserID string
	GameID          string
	TeamSize        int
	EntryFee        *int64
	Region          string
	MatchType       string
	SkillLevel      string
	ScheduledDate   string
	ScheduledTime   string
}

// MarketplaceService orchestrates the match request pool. Ownership and
// state-machine rules live on the domain model; the storage backend makes
// accept-vs-accept races resolve to a single winner.
type MarketplaceService struct {
	requestRepo matchrequest.Repository
	idGen       id.Generator
	openCache   *cache.Store
	now         func() time.Time
}

func NewMarketplaceService(requestRepo matchrequest.Repository, idGen id.Generator, openCache *cache.Store) *MarketplaceService {
	return &MarketplaceService{
		requestRepo: requestRepo,
		idGen:       idGen,
		openCache:   openCache,
		now:         time.Now,
	}
}

func (s *MarketplaceService) CreateRequest(ctx context.Context, input CreateRequestInput) (matchrequest.MatchRequest, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MarketplaceService.CreateRequest")
	defer span.End()

	input.CreatedByUserID = strings.TrimSpace(input.CreatedByUserID)
	input.GameID = strings.TrimSpace(input.GameID)
	input.Region = strings.TrimSpace(input.Region)
	input.MatchType = strings.TrimSpace(input.MatchType)
	input.SkillLevel = strings.TrimSpace(input.SkillLevel)

	scheduledAt, err := parseScheduledAt(input.ScheduledDate, input.ScheduledTime)
	if err != nil {
		return matchrequest.MatchRequest{}, err
	}

	requestID, err := s.idGen.NewID()
	if err != nil {
		return matchrequest.MatchRequest{}, fmt.Errorf("generate request id: %w", err)
	}

	now := s.now().UTC()
	item := matchrequest.MatchRequest{
		ID:              requestID,
		CreatedByUserID: input.CreatedByUserID,
		GameID:          input.GameID,
		TeamSize:        input.TeamSize,
		EntryFee:        input.EntryFee,
		Region:          input.Region,
		MatchType:       input.MatchType,
		SkillLevel:      input.SkillLevel,
		ScheduledAt:     scheduledAt,
		Status:          matchrequest.StatusOpen,
		CreatedAt:       now,
	}
	if err := item.Validate(); err != nil {
		return matchrequest.MatchRequest{}, fmt.Errorf("%w: %s", ErrInvalidInput, err.Error())
	}

	if err := s.requestRepo.Create(ctx, item); err != nil {
		return matchrequest.MatchRequest{}, fmt.Errorf("create match request: %w", err)
	}
	s.invalidateOpenList(ctx)

	return item, nil
}

// ListOpen returns a snapshot of currently open requests. The read sweeps
// past-due Open requests to Expired first, and the snapshot is cached for one
// poll interval.
func (s *MarketplaceService) ListOpen(ctx context.Context) ([]matchrequest.MatchRequest, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MarketplaceService.ListOpen")
	defer span.End()

	load := func(ctx context.Context) (any, error) {
		items, err := s.requestRepo.ListOpen(ctx, s.now().UTC())
		if err != nil {
			return nil, fmt.Errorf("list open match requests: %w", err)
		}
		return items, nil
	}

	if s.openCache == nil {
		value, err := load(ctx)
		if err != nil {
			return nil, err
		}
		return value.([]matchrequest.MatchRequest), nil
	}

	value, err := s.openCache.GetOrLoad(ctx, openListCacheKey, load)
	if err != nil {
		return nil, err
	}
	return value.([]matchrequest.MatchRequest), nil
}

func (s *MarketplaceService) GetByID(ctx context.Context, requestID string) (matchrequest.MatchRequest, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MarketplaceService.GetByID")
	defer span.End()

	requestID = strings.TrimSpace(requestID)
	if requestID == "" {
		return matchrequest.MatchRequest{}, fmt.Errorf("%w: request id is required", ErrInvalidInput)
	}

	item, exists, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return matchrequest.MatchRequest{}, fmt.Errorf("get match request: %w", err)
	}
	if !exists {
		return matchrequest.MatchRequest{}, fmt.Errorf("%w: match request %s", ErrNotFound, requestID)
	}

	return item, nil
}

func (s *MarketplaceService) Accept(ctx context.Context, requestID, acceptorID string) (matchrequest.MatchRequest, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MarketplaceService.Accept")
	defer span.End()

	requestID = strings.TrimSpace(requestID)
	acceptorID = strings.TrimSpace(acceptorID)
	if requestID == "" || acceptorID == "" {
		return matchrequest.MatchRequest{}, fmt.Errorf("%w: request id and acceptor user id are required", ErrInvalidInput)
	}

	item, exists, err := s.requestRepo.Accept(ctx, requestID, acceptorID, s.now().UTC())
	if err != nil {
		return matchrequest.MatchRequest{}, mapRequestError("accept match request", err)
	}
	if !exists {
		return matchrequest.MatchRequest{}, fmt.Errorf("%w: match request %s", ErrNotFound, requestID)
	}
	s.invalidateOpenList(ctx)

	return item, nil
}

func (s *MarketplaceService) Cancel(ctx context.Context, requestID, callerID string) (matchrequest.MatchRequest, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MarketplaceService.Cancel")
	defer span.End()

	requestID = strings.TrimSpace(requestID)
	callerID = strings.TrimSpace(callerID)
	if requestID == "" || callerID == "" {
		return matchrequest.MatchRequest{}, fmt.Errorf("%w: request id and caller user id are required", ErrInvalidInput)
	}

	item, exists, err := s.requestRepo.Cancel(ctx, requestID, callerID, s.now().UTC())
	if err != nil {
		return matchrequest.MatchRequest{}, mapRequestError("cancel match request", err)
	}
	if !exists {
		return matchrequest.MatchRequest{}, fmt.Errorf("%w: match request %s", ErrNotFound, requestID)
	}
	s.invalidateOpenList(ctx)

	return item, nil
}

// SweepExpired is the explicit sweep behind the internal ops endpoint. The
// read path performs the same sweep on every ListOpen.
func (s *MarketplaceService) SweepExpired(ctx context.Context) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MarketplaceService.SweepExpired")
	defer span.End()

	swept, err := s.requestRepo.SweepExpired(ctx, s.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("sweep expired match requests: %w", err)
	}
	if swept > 0 {
		s.invalidateOpenList(ctx)
	}

	return swept, nil
}

func (s *MarketplaceService) CountByStatus(ctx context.Context) (map[matchrequest.Status]int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MarketplaceService.CountByStatus")
	defer span.End()

	counts, err := s.requestRepo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("count match requests by status: %w", err)
	}

	return counts, nil
}

func (s *MarketplaceService) invalidateOpenList(ctx context.Context) {
	if s.openCache != nil {
		s.openCache.Delete(ctx, openListCacheKey)
	}
}

func mapRequestError(op string, err error) error {
	switch {
	case errors.Is(err, matchrequest.ErrAlreadyResolved):
		return fmt.Errorf("%w: %s", ErrAlreadyResolved, err.Error())
	case errors.Is(err, matchrequest.ErrNotOwner):
		return fmt.Errorf("%w: %s", ErrNotOwner, err.Error())
	case errors.Is(err, matchrequest.ErrSelfAccept):
		return fmt.Errorf("%w: %s", ErrSelfAccept, err.Error())
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

func parseScheduledAt(date, clock string) (time.Time, error) {
	date = strings.TrimSpace(date)
	clock = strings.TrimSpace(clock)
	if date == "" || clock == "" {
		return time.Time{}, fmt.Errorf("%w: scheduled date and time are required", ErrInvalidInput)
	}

	day, err := time.ParseInLocation(scheduledDateLayout, date, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: scheduled date must be formatted as %s", ErrInvalidInput, scheduledDateLayout)
	}

	for _, layout := range scheduledTimeLayouts {
		tod, parseErr := time.ParseInLocation(layout, clock, time.UTC)
		if parseErr != nil {
			continue
		}
		return time.Date(day.Year(), day.Month(), day.Day(),
			tod.Hour(), tod.Minute(), tod.Second(), 0, time.UTC), nil
	}

	return time.Time{}, fmt.Errorf("%w: scheduled time must be formatted as HH:MM or HH:MM:SS", ErrInvalidInput)
}

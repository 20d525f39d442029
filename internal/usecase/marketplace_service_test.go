package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/riskibarqy/match-arena/internal/domain/matchrequest"
	"github.com/riskibarqy/match-arena/internal/platform/cache"
)

type stubRequestRepo struct {
	mu       sync.Mutex
	items    map[string]matchrequest.MatchRequest
	order    []string
	listHits int
}

func newStubRequestRepo() *stubRequestRepo {
	return &stubRequestRepo{items: make(map[string]matchrequest.MatchRequest)}
}

func (r *stubRequestRepo) Create(_ context.Context, item matchrequest.MatchRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[item.ID] = item
	r.order = append(r.order, item.ID)
	return nil
}

func (r *stubRequestRepo) GetByID(_ context.Context, requestID string) (matchrequest.MatchRequest, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[requestID]
	return item, ok, nil
}

func (r *stubRequestRepo) ListOpen(_ context.Context, now time.Time) ([]matchrequest.MatchRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listHits++

	var open []matchrequest.MatchRequest
	for _, id := range r.order {
		item := r.items[id]
		if item.ExpireIfDue(now) {
			r.items[id] = item
		}
		if item.Status == matchrequest.StatusOpen {
			open = append(open, item)
		}
	}
	return open, nil
}

func (r *stubRequestRepo) Accept(_ context.Context, requestID, acceptorID string, now time.Time) (matchrequest.MatchRequest, bool, error) {
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
	return item, true, nil
}

func (r *stubRequestRepo) Cancel(_ context.Context, requestID, callerID string, now time.Time) (matchrequest.MatchRequest, bool, error) {
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
	return item, true, nil
}

func (r *stubRequestRepo) SweepExpired(_ context.Context, now time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	swept := 0
	for id, item := range r.items {
		if item.ExpireIfDue(now) {
			r.items[id] = item
			swept++
		}
	}
	return swept, nil
}

func (r *stubRequestRepo) CountByStatus(_ context.Context) (map[matchrequest.Status]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[matchrequest.Status]int)
	for _, item := range r.items {
		counts[item.Status]++
	}
	return counts, nil
}

type fixedIDGen struct {
	next int
}

func (g *fixedIDGen) NewID() (string, error) {
	g.next++
	return "req-" + string(rune('0'+g.next)), nil
}

func newMarketplaceForTest(repo matchrequest.Repository, store *cache.Store) *MarketplaceService {
	service := NewMarketplaceService(repo, &fixedIDGen{}, store)
	return service
}

func validCreateInput() CreateRequestInput {
	return CreateRequestInput{
		CreatedByUserID: "owner",
		GameID:          "game-1",
		TeamSize:        2,
		Region:          "eu-west",
		MatchType:       "bo3",
		SkillLevel:      "intermediate",
		ScheduledDate:   "2026-03-14",
		ScheduledTime:   "18:00",
	}
}

func TestMarketplaceService_CreateRequest(t *testing.T) {
	repo := newStubRequestRepo()
	service := newMarketplaceForTest(repo, nil)

	item, err := service.CreateRequest(t.Context(), validCreateInput())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if item.ID == "" {
		t.Fatal("expected an assigned id")
	}
	if item.Status != matchrequest.StatusOpen {
		t.Fatalf("status = %q, want open", item.Status)
	}
	want := time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)
	if !item.ScheduledAt.Equal(want) {
		t.Fatalf("scheduled at = %v, want %v", item.ScheduledAt, want)
	}
}

func TestMarketplaceService_CreateRequest_InvalidInput(t *testing.T) {
	repo := newStubRequestRepo()
	service := newMarketplaceForTest(repo, nil)

	cases := []struct {
		name   string
		mutate func(*CreateRequestInput)
	}{
		{"bad date", func(in *CreateRequestInput) { in.ScheduledDate = "14/03/2026" }},
		{"bad time", func(in *CreateRequestInput) { in.ScheduledTime = "six pm" }},
		{"missing time", func(in *CreateRequestInput) { in.ScheduledTime = "" }},
		{"zero team size", func(in *CreateRequestInput) { in.TeamSize = 0 }},
		{"missing owner", func(in *CreateRequestInput) { in.CreatedByUserID = "" }},
	}
	for _, tc := range cases {
		input := validCreateInput()
		tc.mutate(&input)
		if _, err := service.CreateRequest(t.Context(), input); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("%s: error = %v, want ErrInvalidInput", tc.name, err)
		}
	}
}

func TestMarketplaceService_CreateRequest_AcceptsSecondsPrecision(t *testing.T) {
	repo := newStubRequestRepo()
	service := newMarketplaceForTest(repo, nil)

	input := validCreateInput()
	input.ScheduledTime = "18:30:45"
	item, err := service.CreateRequest(t.Context(), input)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	want := time.Date(2026, 3, 14, 18, 30, 45, 0, time.UTC)
	if !item.ScheduledAt.Equal(want) {
		t.Fatalf("scheduled at = %v, want %v", item.ScheduledAt, want)
	}
}

func TestMarketplaceService_ListOpen_SweepsPastDueRequests(t *testing.T) {
	repo := newStubRequestRepo()
	service := newMarketplaceForTest(repo, nil)
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return now }

	past := validCreateInput()
	past.ScheduledDate = "2026-03-14"
	past.ScheduledTime = "11:00"
	if _, err := service.CreateRequest(t.Context(), past); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	future := validCreateInput()
	future.ScheduledTime = "18:00"
	created, err := service.CreateRequest(t.Context(), future)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	open, err := service.ListOpen(t.Context())
	if err != nil {
		t.Fatalf("list open failed: %v", err)
	}
	if len(open) != 1 || open[0].ID != created.ID {
		t.Fatalf("open = %v, want only the future request", open)
	}

	counts, err := service.CountByStatus(t.Context())
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if counts[matchrequest.StatusExpired] != 1 {
		t.Fatalf("expired count = %d, want 1", counts[matchrequest.StatusExpired])
	}
}

func TestMarketplaceService_ListOpen_ServesFromCacheWithinTTL(t *testing.T) {
	repo := newStubRequestRepo()
	service := newMarketplaceForTest(repo, cache.NewStore(time.Minute))

	if _, err := service.CreateRequest(t.Context(), validCreateInput()); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	for i := 0; i < 5; i++ {
		if _, err := service.ListOpen(t.Context()); err != nil {
			t.Fatalf("list open failed: %v", err)
		}
	}
	if repo.listHits != 1 {
		t.Fatalf("store reads = %d, want the poll herd collapsed to 1", repo.listHits)
	}
}

func TestMarketplaceService_Accept(t *testing.T) {
	repo := newStubRequestRepo()
	store := cache.NewStore(time.Minute)
	service := newMarketplaceForTest(repo, store)

	created, err := service.CreateRequest(t.Context(), validCreateInput())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := service.ListOpen(t.Context()); err != nil {
		t.Fatalf("list open failed: %v", err)
	}

	accepted, err := service.Accept(t.Context(), created.ID, "challenger")
	if err != nil {
		t.Fatalf("accept failed: %v", err)
	}
	if accepted.Status != matchrequest.StatusAccepted {
		t.Fatalf("status = %q, want accepted", accepted.Status)
	}
	if accepted.AcceptedByUserID == nil || *accepted.AcceptedByUserID != "challenger" {
		t.Fatalf("accepted by = %v, want challenger", accepted.AcceptedByUserID)
	}

	// Accept must drop the cached open list so the next poll sees the change.
	open, err := service.ListOpen(t.Context())
	if err != nil {
		t.Fatalf("list open failed: %v", err)
	}
	if len(open) != 0 {
		t.Fatalf("open = %v, want empty after accept", open)
	}
}

func TestMarketplaceService_Accept_ErrorMapping(t *testing.T) {
	repo := newStubRequestRepo()
	service := newMarketplaceForTest(repo, nil)

	created, err := service.CreateRequest(t.Context(), validCreateInput())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if _, err := service.Accept(t.Context(), "missing", "challenger"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown id: error = %v, want ErrNotFound", err)
	}
	if _, err := service.Accept(t.Context(), created.ID, "owner"); !errors.Is(err, ErrSelfAccept) {
		t.Fatalf("self accept: error = %v, want ErrSelfAccept", err)
	}
	if _, err := service.Accept(t.Context(), created.ID, "challenger"); err != nil {
		t.Fatalf("accept failed: %v", err)
	}
	if _, err := service.Accept(t.Context(), created.ID, "third"); !errors.Is(err, ErrAlreadyResolved) {
		t.Fatalf("second accept: error = %v, want ErrAlreadyResolved", err)
	}
}

func TestMarketplaceService_Cancel_ErrorMapping(t *testing.T) {
	repo := newStubRequestRepo()
	service := newMarketplaceForTest(repo, nil)

	created, err := service.CreateRequest(t.Context(), validCreateInput())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if _, err := service.Cancel(t.Context(), "missing", "owner"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown id: error = %v, want ErrNotFound", err)
	}
	if _, err := service.Cancel(t.Context(), created.ID, "stranger"); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("non-owner: error = %v, want ErrNotOwner", err)
	}

	cancelled, err := service.Cancel(t.Context(), created.ID, "owner")
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if cancelled.Status != matchrequest.StatusCancelled {
		t.Fatalf("status = %q, want cancelled", cancelled.Status)
	}

	if _, err := service.Cancel(t.Context(), created.ID, "owner"); !errors.Is(err, ErrAlreadyResolved) {
		t.Fatalf("double cancel: error = %v, want ErrAlreadyResolved", err)
	}
}

func TestMarketplaceService_SweepExpired(t *testing.T) {
	repo := newStubRequestRepo()
	service := newMarketplaceForTest(repo, nil)
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return now }

	past := validCreateInput()
	past.ScheduledTime = "11:00"
	if _, err := service.CreateRequest(t.Context(), past); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	swept, err := service.SweepExpired(t.Context())
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if swept != 1 {
		t.Fatalf("swept = %d, want 1", swept)
	}
}

package workflow

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/rogerio-castellano/school-inventory/internal/models"
	"github.com/rogerio-castellano/school-inventory/internal/notice"
	"github.com/rogerio-castellano/school-inventory/internal/records"
	"github.com/rogerio-castellano/school-inventory/internal/repo"
)

func TestNext(t *testing.T) {
	tests := []struct {
		from   models.RequestStatus
		action Action
		want   models.RequestStatus
		ok     bool
	}{
		{models.StatusPending, ActionApprove, models.StatusApproved, true},
		{models.StatusPending, ActionReject, models.StatusRejected, true},
		{models.StatusPending, ActionFulfill, models.StatusPending, false},
		{models.StatusApproved, ActionFulfill, models.StatusFulfilled, true},
		{models.StatusApproved, ActionReject, models.StatusApproved, false},
		{models.StatusRejected, ActionApprove, models.StatusRejected, false},
		{models.StatusFulfilled, ActionApprove, models.StatusFulfilled, false},
		{models.StatusFulfilled, ActionReject, models.StatusFulfilled, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"/"+string(tt.action), func(t *testing.T) {
			got, err := Next(tt.from, tt.action)
			if tt.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tt.ok && !errors.Is(err, ErrTransitionNotAllowed) {
				t.Fatalf("expected ErrTransitionNotAllowed, got %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestActionsAndBadges(t *testing.T) {
	if got := Actions(models.StatusPending); !slices.Equal(got, []Action{ActionApprove, ActionReject}) {
		t.Errorf("unexpected pending actions %v", got)
	}
	if got := Actions(models.StatusApproved); !slices.Equal(got, []Action{ActionFulfill}) {
		t.Errorf("unexpected approved actions %v", got)
	}
	if got := Actions(models.StatusFulfilled); len(got) != 0 {
		t.Errorf("fulfilled should have no actions, got %v", got)
	}
	if BadgeFor("pending").Tone != ToneWarning || BadgeFor("out").Label != "Out of Stock" {
		t.Error("unexpected badge mapping")
	}
}

func newService(t *testing.T) (*Service, *records.MemoryStore, *notice.MemoryLog, []models.Request) {
	t.Helper()
	ctx := context.Background()
	store := records.NewMemoryStore()
	notices := notice.NewMemoryLog(0)
	requests := repo.NewRecordsRequestRepository(store, notices)

	var list []models.Request
	for _, who := range []string{"Ms. Rivera", "Mr. Chen"} {
		r, err := requests.Create(ctx, models.Request{ItemID: 1, Quantity: 2, Requester: who, Department: "Science"})
		if err != nil {
			t.Fatalf("seed: %v", err)
		}
		list = append(list, r)
	}
	return NewService(requests, notices), store, notices, list
}

func TestService_Lifecycle(t *testing.T) {
	ctx := context.Background()
	svc, _, notices, list := newService(t)

	list, err := svc.Approve(ctx, list, 1)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if list[0].Status != models.StatusApproved {
		t.Fatalf("expected approved, got %s", list[0].Status)
	}

	list, err = svc.Fulfill(ctx, list, 1)
	if err != nil {
		t.Fatalf("fulfill: %v", err)
	}
	if list[0].Status != models.StatusFulfilled {
		t.Fatalf("expected fulfilled, got %s", list[0].Status)
	}

	before := slices.Clone(list)
	list, err = svc.Approve(ctx, list, 1)
	if !errors.Is(err, ErrTransitionNotAllowed) {
		t.Fatalf("expected ErrTransitionNotAllowed, got %v", err)
	}
	if !slices.Equal(list, before) {
		t.Error("list changed after a refused transition")
	}
	if list[1].Status != models.StatusPending {
		t.Errorf("other request should be untouched, got %s", list[1].Status)
	}
	if notices.Count(notice.LevelError) != 1 {
		t.Errorf("expected one failure notice, got %d", notices.Count(notice.LevelError))
	}
}

func TestService_BackendFailureLeavesListUnchanged(t *testing.T) {
	ctx := context.Background()
	svc, store, notices, list := newService(t)
	store.FailOn(records.TableRequests, records.OpUpdate, 2, records.ErrBackend)

	got, err := svc.Reject(ctx, list, 2)
	if !errors.Is(err, records.ErrBackend) {
		t.Fatalf("expected ErrBackend, got %v", err)
	}
	if !slices.Equal(got, list) {
		t.Error("list changed after a failed update")
	}
	if notices.Count(notice.LevelError) != 1 {
		t.Errorf("expected exactly one failure notice, got %d", notices.Count(notice.LevelError))
	}
}

func TestService_RequestOutsideList(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newService(t)

	list, updated, err := svc.Apply(ctx, nil, 2, ActionReject)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Status != models.StatusRejected || len(list) != 0 {
		t.Errorf("unexpected result %+v, list %v", updated, list)
	}
}

// slowReads widens the gap between reading a request and writing it back.
type slowReads struct {
	repo.RequestRepository
}

func (s slowReads) GetByID(ctx context.Context, id int) (models.Request, error) {
	r, err := s.RequestRepository.GetByID(ctx, id)
	time.Sleep(5 * time.Millisecond)
	return r, err
}

func TestService_ConcurrentActionsOnOneRequest(t *testing.T) {
	ctx := context.Background()
	store := records.NewMemoryStore()
	requests := repo.NewRecordsRequestRepository(store, nil)
	svc := NewService(slowReads{requests}, nil)

	for round := range 10 {
		req, err := requests.Create(ctx, models.Request{ItemID: 1, Quantity: 1, Requester: "Ms. Rivera", Department: "Science"})
		if err != nil {
			t.Fatalf("seed: %v", err)
		}

		actions := []Action{ActionApprove, ActionReject}
		errs := make([]error, len(actions))
		var wg sync.WaitGroup
		for i, action := range actions {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, _, errs[i] = svc.Apply(ctx, nil, req.ID, action)
			}()
		}
		wg.Wait()

		var won []Action
		for i, err := range errs {
			switch {
			case err == nil:
				won = append(won, actions[i])
			case !errors.Is(err, ErrTransitionNotAllowed):
				t.Fatalf("round %d: unexpected error %v", round, err)
			}
		}
		if len(won) != 1 {
			t.Fatalf("round %d: expected exactly one action to win, got %v", round, won)
		}

		stored, err := requests.GetByID(ctx, req.ID)
		if err != nil {
			t.Fatalf("round %d: %v", round, err)
		}
		want, _ := Next(models.StatusPending, won[0])
		if stored.Status != want {
			t.Errorf("round %d: %s won but request is %s", round, won[0], stored.Status)
		}
	}
	if len(svc.locks) != 0 {
		t.Errorf("expected request locks to be released, %d left", len(svc.locks))
	}
}

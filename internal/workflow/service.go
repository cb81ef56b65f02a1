package workflow

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/rogerio-castellano/school-inventory/internal/models"
	"github.com/rogerio-castellano/school-inventory/internal/notice"
	"github.com/rogerio-castellano/school-inventory/internal/repo"
)

// Service applies status transitions through the request repository.
type Service struct {
	requests repo.RequestRepository
	notifier notice.Notifier

	mu    sync.Mutex
	locks map[int]*requestLock
}

type requestLock struct {
	sync.Mutex
	refs int
}

func NewService(requests repo.RequestRepository, n notice.Notifier) *Service {
	if n == nil {
		n = notice.Discard
	}
	return &Service{requests: requests, notifier: n, locks: make(map[int]*requestLock)}
}

// lock serialises transitions of one request. The returned func releases it.
func (s *Service) lock(id int) func() {
	s.mu.Lock()
	l, ok := s.locks[id]
	if !ok {
		l = &requestLock{}
		s.locks[id] = l
	}
	l.refs++
	s.mu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()
		s.mu.Lock()
		if l.refs--; l.refs == 0 {
			delete(s.locks, id)
		}
		s.mu.Unlock()
	}
}

// Apply moves request id through action and returns the list with that
// request replaced by the stored result. The current status is always read
// from the repository while the request is locked, so concurrent actions on
// one request see each other's result. On any failure the list comes back
// unchanged. A refused transition is reported here; backend failures are
// reported by the repository, so each failure yields exactly one notice.
func (s *Service) Apply(ctx context.Context, list []models.Request, id int, action Action) ([]models.Request, models.Request, error) {
	unlock := s.lock(id)
	defer unlock()

	current, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return list, models.Request{}, err
	}
	i := slices.IndexFunc(list, func(r models.Request) bool { return r.ID == id })

	next, err := Next(current.Status, action)
	if err != nil {
		s.notifier.Notify(ctx, notice.Error(fmt.Sprintf("Cannot %s a %s request", action, current.Status)))
		return list, models.Request{}, err
	}

	updated, err := s.requests.Update(ctx, id, repo.RequestPatch{Status: &next})
	if err != nil {
		return list, models.Request{}, err
	}

	out := slices.Clone(list)
	if i >= 0 {
		out[i] = updated
	}
	s.notifier.Notify(ctx, notice.Success(fmt.Sprintf("Request %s", updated.Status)))
	return out, updated, nil
}

func (s *Service) Approve(ctx context.Context, list []models.Request, id int) ([]models.Request, error) {
	out, _, err := s.Apply(ctx, list, id, ActionApprove)
	return out, err
}

func (s *Service) Reject(ctx context.Context, list []models.Request, id int) ([]models.Request, error) {
	out, _, err := s.Apply(ctx, list, id, ActionReject)
	return out, err
}

func (s *Service) Fulfill(ctx context.Context, list []models.Request, id int) ([]models.Request, error) {
	out, _, err := s.Apply(ctx, list, id, ActionFulfill)
	return out, err
}

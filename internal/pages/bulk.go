package pages

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/rogerio-castellano/school-inventory/internal/models"
	"github.com/rogerio-castellano/school-inventory/internal/notice"
	"golang.org/x/sync/errgroup"
)

type BulkFailure struct {
	ID    int    `json:"id"`
	Error string `json:"error"`
}

// BulkResult reports each id of a bulk delete. Remaining is the list the
// caller passed in, minus the ids that were actually deleted.
type BulkResult struct {
	Deleted   []int                  `json:"deleted"`
	Failed    []BulkFailure          `json:"failed"`
	Remaining []models.InventoryItem `json:"-"`
}

func (r BulkResult) Partial() bool {
	return len(r.Failed) > 0 && len(r.Deleted) > 0
}

// BulkDelete issues one delete per id and waits for all of them. Deletes
// that succeed stay deleted when others fail. Each failed id has already
// produced its own failure notice by the time BulkDelete returns.
func (l *Loader) BulkDelete(ctx context.Context, list []models.InventoryItem, ids []int) BulkResult {
	var mu sync.Mutex
	res := BulkResult{Deleted: []int{}, Failed: []BulkFailure{}}

	g := new(errgroup.Group)
	if l.BulkLimit > 0 {
		g.SetLimit(l.BulkLimit)
	}
	for _, id := range ids {
		g.Go(func() error {
			_, err := l.inventory.Delete(ctx, id)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				res.Failed = append(res.Failed, BulkFailure{ID: id, Error: err.Error()})
				return nil
			}
			res.Deleted = append(res.Deleted, id)
			return nil
		})
	}
	_ = g.Wait()

	slices.Sort(res.Deleted)
	slices.SortFunc(res.Failed, func(a, b BulkFailure) int { return a.ID - b.ID })

	res.Remaining = slices.DeleteFunc(slices.Clone(list), func(it models.InventoryItem) bool {
		_, found := slices.BinarySearch(res.Deleted, it.ID)
		return found
	})

	if n := len(res.Deleted); n > 0 {
		l.notifier.Notify(ctx, notice.Success(fmt.Sprintf("%d items deleted successfully", n)))
	}
	return res
}

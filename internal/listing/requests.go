package listing

import (
	"slices"
	"strings"

	"github.com/rogerio-castellano/school-inventory/internal/models"
)

// ItemNames resolves request item ids to display names.
type ItemNames map[int]string

func NamesOf(items []models.InventoryItem) ItemNames {
	names := make(ItemNames, len(items))
	for _, it := range items {
		names[it.ID] = it.Name
	}
	return names
}

// Display returns the item name, or UnknownItemName for a dangling id.
func (n ItemNames) Display(id int) string {
	if name, ok := n[id]; ok {
		return name
	}
	return models.UnknownItemName
}

type RequestFilter struct {
	Search string
	Status string
}

// Matches searches requester, department and item name. A dangling item id
// contributes an empty name, so "unknown" does not match it.
func (f RequestFilter) Matches(r models.Request, names ItemNames) bool {
	if f.Search != "" {
		term := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(names[r.ItemID]), term) &&
			!strings.Contains(strings.ToLower(r.Requester), term) &&
			!strings.Contains(strings.ToLower(r.Department), term) {
			return false
		}
	}
	if !isAll(f.Status) && string(r.Status) != f.Status {
		return false
	}
	return true
}

func FilterRequests(reqs []models.Request, names ItemNames, f RequestFilter) []models.Request {
	out := make([]models.Request, 0, len(reqs))
	for _, r := range reqs {
		if f.Matches(r, names) {
			out = append(out, r)
		}
	}
	return out
}

func SortRequests(reqs []models.Request, names ItemNames, s Sort) []models.Request {
	out := slices.Clone(reqs)
	var by func(a, b models.Request) int
	switch s.Key {
	case "requestDate":
		by = func(a, b models.Request) int { return compareTime(a.RequestDate, b.RequestDate) }
	case "requester":
		by = func(a, b models.Request) int { return compareText(a.Requester, b.Requester) }
	case "department":
		by = func(a, b models.Request) int { return compareText(a.Department, b.Department) }
	case "quantity":
		by = func(a, b models.Request) int { return compareInt(a.Quantity, b.Quantity) }
	case "status":
		by = func(a, b models.Request) int { return compareText(string(a.Status), string(b.Status)) }
	case "item":
		by = func(a, b models.Request) int { return compareText(names.Display(a.ItemID), names.Display(b.ItemID)) }
	default:
		return out
	}
	slices.SortStableFunc(out, func(a, b models.Request) int {
		return s.apply(by(a, b))
	})
	return out
}

func VisibleRequests(reqs []models.Request, names ItemNames, f RequestFilter, s Sort) []models.Request {
	return SortRequests(FilterRequests(reqs, names, f), names, s)
}

// StatusCounts feeds the status tabs of the request list.
type StatusCounts struct {
	All       int `json:"all"`
	Pending   int `json:"pending"`
	Approved  int `json:"approved"`
	Rejected  int `json:"rejected"`
	Fulfilled int `json:"fulfilled"`
}

func CountStatuses(reqs []models.Request) StatusCounts {
	c := StatusCounts{All: len(reqs)}
	for _, r := range reqs {
		switch r.Status {
		case models.StatusPending:
			c.Pending++
		case models.StatusApproved:
			c.Approved++
		case models.StatusRejected:
			c.Rejected++
		case models.StatusFulfilled:
			c.Fulfilled++
		}
	}
	return c
}

// Package listing derives the visible rows of the inventory and request
// lists: filtering, sorting and row selection. Every function here is pure
// and returns new slices; the input collections are never mutated.
package listing

import (
	"cmp"
	"fmt"
	"strings"
	"time"
)

// Mode tells which list a filter or sort key belongs to.
type Mode int

const (
	ModeInventory Mode = iota
	ModeRequests
)

func (m Mode) String() string {
	if m == ModeRequests {
		return "requests"
	}
	return "inventory"
}

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

func (d Direction) flip() Direction {
	if d == Asc {
		return Desc
	}
	return Asc
}

// Sort is the active sort key and direction of a list.
type Sort struct {
	Key       string    `json:"key"`
	Direction Direction `json:"direction"`
}

var (
	inventoryKeys = []string{"name", "category", "quantity", "minStock", "location", "unit", "lastUpdated"}
	requestKeys   = []string{"requestDate", "requester", "department", "quantity", "status", "item"}
)

// DefaultSort is name ascending for inventory and newest request first.
func DefaultSort(m Mode) Sort {
	if m == ModeRequests {
		return Sort{Key: "requestDate", Direction: Desc}
	}
	return Sort{Key: "name", Direction: Asc}
}

// Keys lists the sortable columns of a list.
func Keys(m Mode) []string {
	if m == ModeRequests {
		return append([]string(nil), requestKeys...)
	}
	return append([]string(nil), inventoryKeys...)
}

// ParseSort validates a key and order taken from a query string. Empty values
// fall back to the list's default.
func ParseSort(m Mode, key, order string) (Sort, error) {
	s := DefaultSort(m)
	if key != "" {
		found := false
		for _, k := range Keys(m) {
			if k == key {
				found = true
				break
			}
		}
		if !found {
			return Sort{}, fmt.Errorf("unknown %s sort key %q", m, key)
		}
		s.Key = key
	}
	switch Direction(strings.ToLower(order)) {
	case "":
	case Asc:
		s.Direction = Asc
	case Desc:
		s.Direction = Desc
	default:
		return Sort{}, fmt.Errorf("invalid sort order %q", order)
	}
	return s, nil
}

// Toggle is a click on a column header: the active key flips direction,
// any other key becomes active in ascending order.
func (s Sort) Toggle(key string) Sort {
	if s.Key == key {
		return Sort{Key: key, Direction: s.Direction.flip()}
	}
	return Sort{Key: key, Direction: Asc}
}

func (s Sort) apply(c int) int {
	if s.Direction == Desc {
		return -c
	}
	return c
}

func compareText(a, b string) int {
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}

func compareTime(a, b time.Time) int {
	return a.Compare(b)
}

func compareInt(a, b int) int {
	return cmp.Compare(a, b)
}

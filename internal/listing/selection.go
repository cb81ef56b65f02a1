package listing

import "github.com/rogerio-castellano/school-inventory/internal/models"

// Selection is the set of ids checked in a list, kept in the order they were checked.
type Selection struct {
	ids []int
	set map[int]struct{}
}

func NewSelection(ids ...int) *Selection {
	s := &Selection{set: map[int]struct{}{}}
	for _, id := range ids {
		s.add(id)
	}
	return s
}

func (s *Selection) add(id int) {
	if _, ok := s.set[id]; ok {
		return
	}
	s.set[id] = struct{}{}
	s.ids = append(s.ids, id)
}

func (s *Selection) remove(id int) {
	if _, ok := s.set[id]; !ok {
		return
	}
	delete(s.set, id)
	for i, v := range s.ids {
		if v == id {
			s.ids = append(s.ids[:i], s.ids[i+1:]...)
			break
		}
	}
}

func (s *Selection) Toggle(id int) {
	if s.Has(id) {
		s.remove(id)
		return
	}
	s.add(id)
}

// Select adds ids to the selection, keeping whatever is already selected.
func (s *Selection) Select(ids ...int) {
	for _, id := range ids {
		s.add(id)
	}
}

// ToggleAll is the header checkbox. When every visible id is already selected
// it clears the selection; otherwise the selection becomes exactly the visible ids.
func (s *Selection) ToggleAll(visible []int) {
	if len(visible) > 0 && s.Len() == len(visible) && s.HasAll(visible) {
		s.Clear()
		return
	}
	s.Clear()
	for _, id := range visible {
		s.add(id)
	}
}

func (s *Selection) Has(id int) bool {
	_, ok := s.set[id]
	return ok
}

func (s *Selection) HasAll(ids []int) bool {
	for _, id := range ids {
		if !s.Has(id) {
			return false
		}
	}
	return true
}

func (s *Selection) Len() int { return len(s.ids) }

func (s *Selection) IDs() []int {
	return append([]int(nil), s.ids...)
}

func (s *Selection) Clear() {
	s.ids = nil
	s.set = map[int]struct{}{}
}

// InventoryIDs lists the ids of the given items in order.
func InventoryIDs(items []models.InventoryItem) []int {
	out := make([]int, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

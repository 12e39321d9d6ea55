package catalog

import "sort"

// Paginate returns the 1-indexed page of list. The engine does not clamp:
// callers keep page inside [1, TotalPages] themselves, and an out-of-range
// page yields an empty slice rather than a panic.
func Paginate(list []Product, pageSize, page int) []Product {
	if pageSize <= 0 || page <= 0 {
		return []Product{}
	}
	start := (page - 1) * pageSize
	if start >= len(list) {
		return []Product{}
	}
	end := start + pageSize
	if end > len(list) {
		end = len(list)
	}
	return list[start:end]
}

// TotalPages reports how many pages of size pageSize a list of n products
// occupies.
func TotalPages(n, pageSize int) int {
	if n <= 0 || pageSize <= 0 {
		return 0
	}
	return (n + pageSize - 1) / pageSize
}

// Selection tracks the ids marked for a bulk operation. It is independent of
// pagination and filtering; a bulk delete consumes the whole set and clears
// it afterwards regardless of outcome.
type Selection struct {
	ids map[string]struct{}
}

// NewSelection returns an empty selection.
func NewSelection() *Selection {
	return &Selection{ids: make(map[string]struct{})}
}

// Toggle flips the selection state of id and reports whether it is selected
// afterwards.
func (s *Selection) Toggle(id string) bool {
	if _, ok := s.ids[id]; ok {
		delete(s.ids, id)
		return false
	}
	s.ids[id] = struct{}{}
	return true
}

// Has reports whether id is currently selected.
func (s *Selection) Has(id string) bool {
	_, ok := s.ids[id]
	return ok
}

// IDs returns the selected ids in ascending order.
func (s *Selection) IDs() []string {
	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Len reports the number of selected ids.
func (s *Selection) Len() int {
	return len(s.ids)
}

// Clear empties the selection.
func (s *Selection) Clear() {
	s.ids = make(map[string]struct{})
}

package classify

import (
	"encoding/json"
	"sort"
)

// Set is an insertion-ordered set of class names. The zero value is ready to
// use.
type Set struct {
	items []string
	seen  map[string]struct{}
}

// NewSet returns a set holding names in the given order.
func NewSet(names ...string) Set {
	var s Set
	for _, n := range names {
		s.Add(n)
	}
	return s
}

// Add inserts name if absent.
func (s *Set) Add(name string) {
	if s.seen == nil {
		s.seen = make(map[string]struct{})
	}
	if _, ok := s.seen[name]; ok {
		return
	}
	s.seen[name] = struct{}{}
	s.items = append(s.items, name)
}

// Has reports membership.
func (s Set) Has(name string) bool {
	_, ok := s.seen[name]
	return ok
}

// Len reports the number of names.
func (s Set) Len() int { return len(s.items) }

// Items returns the names in insertion order.
func (s Set) Items() []string {
	out := make([]string, len(s.items))
	copy(out, s.items)
	return out
}

// Sorted returns the names sorted lexically.
func (s Set) Sorted() []string {
	out := s.Items()
	sort.Strings(out)
	return out
}

// MarshalJSON encodes the set as a list.
func (s Set) MarshalJSON() ([]byte, error) {
	if s.items == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(s.items)
}

// UnmarshalJSON decodes a list.
func (s *Set) UnmarshalJSON(data []byte) error {
	var items []string
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	*s = NewSet(items...)
	return nil
}

// MarshalYAML encodes the set as a list.
func (s Set) MarshalYAML() (any, error) {
	return s.Items(), nil
}

package domain

// SelectionSet is an insertion-ordered set of user ids.
//
// In single-selection mode the set never holds more than one id: adding a
// different id replaces the current one. SelectionSet is not safe for
// concurrent use; the owner serialises access.
type SelectionSet struct {
	single bool
	ids    []string
}

// NewSelectionSet creates an empty selection set.
func NewSelectionSet(singleSelection bool) *SelectionSet {
	return &SelectionSet{single: singleSelection}
}

// SingleSelection reports the mode flag.
func (s *SelectionSet) SingleSelection() bool {
	return s.single
}

// Add inserts id if absent. Returns true if the set changed.
func (s *SelectionSet) Add(id string) bool {
	if id == "" || s.Contains(id) {
		return false
	}
	if s.single {
		s.ids = []string{id}
		return true
	}
	s.ids = append(s.ids, id)
	return true
}

// Remove deletes id. Removing an absent id is a no-op.
// Returns true if the set changed.
func (s *SelectionSet) Remove(id string) bool {
	for i, existing := range s.ids {
		if existing == id {
			s.ids = append(s.ids[:i:i], s.ids[i+1:]...)
			return true
		}
	}
	return false
}

// Toggle removes id if present, adds it otherwise.
// Returns true if id is selected afterwards.
func (s *SelectionSet) Toggle(id string) bool {
	if s.Remove(id) {
		return false
	}
	return s.Add(id)
}

// Contains reports whether id is selected.
func (s *SelectionSet) Contains(id string) bool {
	for _, existing := range s.ids {
		if existing == id {
			return true
		}
	}
	return false
}

// IDs returns a copy of the selected ids in insertion order.
func (s *SelectionSet) IDs() []string {
	out := make([]string, len(s.ids))
	copy(out, s.ids)
	return out
}

// Len returns the number of selected ids.
func (s *SelectionSet) Len() int {
	return len(s.ids)
}

// Clear empties the set.
func (s *SelectionSet) Clear() {
	s.ids = nil
}

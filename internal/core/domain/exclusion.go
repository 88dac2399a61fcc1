package domain

// ExclusionSet is an immutable set of user ids omitted from every result
// source. It is replaced wholesale, never mutated in place, so it can be
// shared between pipelines without locking.
type ExclusionSet struct {
	ids   []string
	index map[string]struct{}
}

// NewExclusionSet builds a set from ids. Empty and duplicate ids are dropped.
func NewExclusionSet(ids ...string) ExclusionSet {
	s := ExclusionSet{index: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, dup := s.index[id]; dup {
			continue
		}
		s.index[id] = struct{}{}
		s.ids = append(s.ids, id)
	}
	return s
}

// Contains reports whether id is excluded.
func (s ExclusionSet) Contains(id string) bool {
	_, ok := s.index[id]
	return ok
}

// IDs returns a copy of the excluded ids in construction order.
func (s ExclusionSet) IDs() []string {
	out := make([]string, len(s.ids))
	copy(out, s.ids)
	return out
}

// Len returns the number of excluded ids.
func (s ExclusionSet) Len() int {
	return len(s.ids)
}

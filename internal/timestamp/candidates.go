package timestamp

import "sort"

// Candidate is one validated timestamp and the metadata field it came from.
// Backend and Field are for diagnostics only.
type Candidate struct {
	Time    Timestamp
	Backend string
	Field   string
}

// CandidateSet holds the distinct candidates gathered for one file. The
// zero value is ready to use.
type CandidateSet struct {
	byKey map[int64]Candidate
}

// Add inserts c unless an equal timestamp is already present. It reports
// whether the set grew.
func (s *CandidateSet) Add(c Candidate) bool {
	if c.Time.IsZero() {
		return false
	}
	if s.byKey == nil {
		s.byKey = make(map[int64]Candidate)
	}
	k := c.Time.key()
	if _, ok := s.byKey[k]; ok {
		return false
	}
	s.byKey[k] = c
	return true
}

// Len returns the number of distinct timestamps.
func (s *CandidateSet) Len() int { return len(s.byKey) }

// Sorted returns the candidates oldest first.
func (s *CandidateSet) Sorted() []Candidate {
	out := make([]Candidate, 0, len(s.byKey))
	for _, c := range s.byKey {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })
	return out
}

// Oldest selects the earliest candidate, or false for an empty set.
func (s *CandidateSet) Oldest() (Candidate, bool) {
	var best Candidate
	found := false
	for _, c := range s.byKey {
		if !found || c.Time.Before(best.Time) {
			best = c
			found = true
		}
	}
	return best, found
}

package factory

import "sort"

// CodeSet is the seen-set of legal-service codes issued to cases. It only
// grows during a build. The zero value is an empty set.
type CodeSet struct {
	codes map[int]struct{}
}

func NewCodeSet(initial ...int) *CodeSet {
	s := &CodeSet{codes: make(map[int]struct{}, len(initial))}
	for _, c := range initial {
		s.Add(c)
	}
	return s
}

func (s *CodeSet) Has(code int) bool {
	_, ok := s.codes[code]
	return ok
}

func (s *CodeSet) Add(code int) {
	if s.codes == nil {
		s.codes = make(map[int]struct{})
	}
	s.codes[code] = struct{}{}
}

func (s *CodeSet) Len() int {
	return len(s.codes)
}

// CountBelow counts the codes in [0, limit). Codes carried over from a run
// with a wider code width fall outside it and take no room.
func (s *CodeSet) CountBelow(limit int) int {
	n := 0
	for c := range s.codes {
		if c >= 0 && c < limit {
			n++
		}
	}
	return n
}

// Values returns the codes in ascending order.
func (s *CodeSet) Values() []int {
	out := make([]int, 0, len(s.codes))
	for c := range s.codes {
		out = append(out, c)
	}
	sort.Ints(out)
	return out
}

package coupon

// mapCodeSet implements CodeSet on a map.
type mapCodeSet struct {
	codes map[string]int
}

// NewMapCodeSet creates an empty map-based code set.
func NewMapCodeSet(capacity int) *mapCodeSet {
	return &mapCodeSet{
		codes: make(map[string]int, capacity),
	}
}

func (s *mapCodeSet) Percent(code string) (int, bool) {
	p, ok := s.codes[code]
	return p, ok
}

func (s *mapCodeSet) Size() int {
	return len(s.codes)
}

func (s *mapCodeSet) Codes(fn func(code string, percent int)) {
	for code, p := range s.codes {
		fn(code, p)
	}
}

// Add stores code with percent, replacing any earlier entry.
func (s *mapCodeSet) Add(code string, percent int) {
	s.codes[code] = percent
}

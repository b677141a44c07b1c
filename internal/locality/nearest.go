package locality

import "sort"

// CeilLookup answers "value at the smallest key >= query" over a fixed set
// of float64 key/value pairs. Queries above the largest key clamp to the
// last value, queries below the smallest key take the first. Built once,
// read-only afterwards.
type CeilLookup struct {
	keys []float64
	vals []float64
}

// NewCeilLookup builds a lookup from parallel key/value slices. The pairs
// are copied and sorted by key.
func NewCeilLookup(keys, vals []float64) *CeilLookup {
	if len(keys) != len(vals) {
		panic("locality: ceil lookup key/value length mismatch")
	}
	l := &CeilLookup{
		keys: append([]float64(nil), keys...),
		vals: append([]float64(nil), vals...),
	}
	sort.Sort(byKey{l})
	return l
}

// At returns the value stored at the smallest key >= q.
func (l *CeilLookup) At(q float64) float64 {
	if len(l.keys) == 0 {
		panic("locality: lookup on empty CeilLookup")
	}
	i := sort.SearchFloat64s(l.keys, q)
	if i == len(l.keys) {
		i = len(l.keys) - 1
	}
	return l.vals[i]
}

// Keys returns the sorted keys. The caller must not modify the slice.
func (l *CeilLookup) Keys() []float64 { return l.keys }

// Len returns the number of stored pairs.
func (l *CeilLookup) Len() int { return len(l.keys) }

// byKey sorts the key and value slices together.
type byKey struct{ l *CeilLookup }

func (s byKey) Len() int           { return len(s.l.keys) }
func (s byKey) Less(i, j int) bool { return s.l.keys[i] < s.l.keys[j] }
func (s byKey) Swap(i, j int) {
	s.l.keys[i], s.l.keys[j] = s.l.keys[j], s.l.keys[i]
	s.l.vals[i], s.l.vals[j] = s.l.vals[j], s.l.vals[i]
}

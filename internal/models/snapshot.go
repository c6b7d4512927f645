package models

// Counts maps every category to its player count.
type Counts map[Category]int

// NewCounts returns a mapping with every category set to zero.
func NewCounts() Counts {
	c := make(Counts, len(categoryTable))
	for _, info := range categoryTable {
		c[info.Key] = 0
	}
	return c
}

// NormalizeCounts converts an acquired mapping into Counts.
// Unknown keys are dropped and missing categories are zero.
func NormalizeCounts(raw map[string]int) Counts {
	c := NewCounts()
	for k, v := range raw {
		if cat, ok := ParseCategory(k); ok {
			c[cat] = v
		}
	}
	return c
}

func (c Counts) Get(cat Category) int {
	return c[cat]
}

func (c Counts) Total() int {
	total := 0
	for _, info := range categoryTable {
		total += c[info.Key]
	}
	return total
}

func (c Counts) Clone() Counts {
	out := make(Counts, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// Snapshot is the full set of counts stored at one timestamp.
type Snapshot struct {
	Ts     int64  `json:"ts"`
	Counts Counts `json:"counts"`
}

// Series holds a range query result. Every Values slice has the same
// length as Timestamps and is aligned with it by index.
type Series struct {
	Timestamps []int64            `json:"timestamps"`
	Values     map[Category][]int `json:"values"`
}

func NewSeries(capacity int) *Series {
	s := &Series{
		Timestamps: make([]int64, 0, capacity),
		Values:     make(map[Category][]int, len(categoryTable)),
	}
	for _, info := range categoryTable {
		s.Values[info.Key] = make([]int, 0, capacity)
	}
	return s
}

// Append adds one point for every category, using 0 where counts lacks one.
func (s *Series) Append(ts int64, counts Counts) {
	s.Timestamps = append(s.Timestamps, ts)
	for _, info := range categoryTable {
		s.Values[info.Key] = append(s.Values[info.Key], counts[info.Key])
	}
}

func (s *Series) Len() int {
	return len(s.Timestamps)
}

func (s *Series) Empty() bool {
	return len(s.Timestamps) == 0
}

// Last returns the most recent value of a category, or 0 for an empty series.
func (s *Series) Last(cat Category) int {
	vals := s.Values[cat]
	if len(vals) == 0 {
		return 0
	}
	return vals[len(vals)-1]
}

// Totals sums all categories per timestamp.
func (s *Series) Totals() []int {
	totals := make([]int, len(s.Timestamps))
	for _, info := range categoryTable {
		for i, v := range s.Values[info.Key] {
			totals[i] += v
		}
	}
	return totals
}

// Snapshots expands the series back into per-timestamp snapshots.
func (s *Series) Snapshots() []Snapshot {
	out := make([]Snapshot, len(s.Timestamps))
	for i, ts := range s.Timestamps {
		counts := NewCounts()
		for _, info := range categoryTable {
			counts[info.Key] = s.Values[info.Key][i]
		}
		out[i] = Snapshot{Ts: ts, Counts: counts}
	}
	return out
}

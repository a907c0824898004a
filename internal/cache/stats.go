package cache

// Stats is a point-in-time snapshot of the cache counters. Within one
// cache lifetime (between Clears) Hits, Misses, Evictions and
// TotalQueries only grow, and Hits+Misses == TotalQueries.
type Stats struct {
	Hits         uint64
	Misses       uint64
	Evictions    uint64
	TotalQueries uint64
	Entries      int
	// MemoryBytes is an estimate built from serialized value sizes plus a
	// fixed per-entry overhead. It is approximate and must not be used
	// for hard memory limits.
	MemoryBytes int64
}

// HitRate returns hits as a percentage of total queries, or 0 when no
// queries have been recorded.
func (s Stats) HitRate() float64 {
	if s.TotalQueries == 0 {
		return 0
	}
	return float64(s.Hits) / float64(s.TotalQueries) * 100
}

package worker

import "sync/atomic"

// Stats counts pages as the pool handles them. It is safe for concurrent use.
type Stats struct {
	claimed   atomic.Int64
	edited    atomic.Int64
	unchanged atomic.Int64
	skipped   atomic.Int64
	failed    atomic.Int64
}

// Snapshot is a point-in-time copy of Stats.
type Snapshot struct {
	Claimed   int64 `json:"claimed"`
	Edited    int64 `json:"edited"`
	Unchanged int64 `json:"unchanged"`
	Skipped   int64 `json:"skipped"`
	Failed    int64 `json:"failed"`
}

// Snapshot reads every counter. Counters are read one at a time, so a
// snapshot taken while workers run may mix two moments.
func (s *Stats) Snapshot() Snapshot {
	return Snapshot{
		Claimed:   s.claimed.Load(),
		Edited:    s.edited.Load(),
		Unchanged: s.unchanged.Load(),
		Skipped:   s.skipped.Load(),
		Failed:    s.failed.Load(),
	}
}

package ocr

import (
	"slices"
	"sync"
	"time"
)

// pageSample is the outcome of one recognized page.
type pageSample struct {
	at        time.Time
	latencyMs int64
	fragments int
	failed    bool
}

// StatsSnapshot aggregates the page samples still inside the window.
// Latency covers every call; fragment counts cover successful pages only.
type StatsSnapshot struct {
	Pages        int     `json:"pages"`
	Failed       int     `json:"failed"`
	Fragments    int     `json:"fragments"`
	AvgFragments float64 `json:"avg_fragments"`
	MinMs        int64   `json:"min_ms"`
	MaxMs        int64   `json:"max_ms"`
	AvgMs        float64 `json:"avg_ms"`
	P50Ms        float64 `json:"p50_ms"`
	P95Ms        float64 `json:"p95_ms"`
	P99Ms        float64 `json:"p99_ms"`
}

// Stats keeps a rolling window of per-page recognition outcomes.
type Stats struct {
	mu      sync.Mutex
	window  time.Duration
	samples []pageSample
	now     func() time.Time
}

// NewStats keeps samples for window; a non-positive window means one hour.
func NewStats(window time.Duration) *Stats {
	if window <= 0 {
		window = time.Hour
	}
	return &Stats{window: window, now: time.Now}
}

// Record adds the outcome of one page.
func (s *Stats) Record(latency time.Duration, fragments int, err error) {
	ms := max(latency.Milliseconds(), 0)

	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.expireLocked(now)
	s.samples = append(s.samples, pageSample{
		at:        now,
		latencyMs: ms,
		fragments: fragments,
		failed:    err != nil,
	})
}

func (s *Stats) Snapshot() StatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expireLocked(s.now())

	var snap StatsSnapshot
	if len(s.samples) == 0 {
		return snap
	}
	latencies := make([]int64, len(s.samples))
	var total int64
	for i, p := range s.samples {
		latencies[i] = p.latencyMs
		total += p.latencyMs
		if p.failed {
			snap.Failed++
			continue
		}
		snap.Fragments += p.fragments
	}
	slices.Sort(latencies)

	snap.Pages = len(s.samples)
	if ok := snap.Pages - snap.Failed; ok > 0 {
		snap.AvgFragments = float64(snap.Fragments) / float64(ok)
	}
	snap.MinMs = latencies[0]
	snap.MaxMs = latencies[len(latencies)-1]
	snap.AvgMs = float64(total) / float64(len(latencies))
	snap.P50Ms = percentile(latencies, 50)
	snap.P95Ms = percentile(latencies, 95)
	snap.P99Ms = percentile(latencies, 99)
	return snap
}

// expireLocked drops samples older than the window. Samples are appended
// in time order, so the expired ones form a prefix.
func (s *Stats) expireLocked(now time.Time) {
	cutoff := now.Add(-s.window)
	i, _ := slices.BinarySearchFunc(s.samples, cutoff, func(p pageSample, t time.Time) int {
		return p.at.Compare(t)
	})
	if i > 0 {
		s.samples = slices.Delete(s.samples, 0, i)
	}
}

// percentile interpolates between the two nearest ranks of sorted.
func percentile(sorted []int64, pct float64) float64 {
	n := len(sorted)
	switch {
	case n == 0:
		return 0
	case pct <= 0:
		return float64(sorted[0])
	case pct >= 100:
		return float64(sorted[n-1])
	}
	rank := float64(n-1) * pct / 100
	lo := int(rank)
	if lo+1 >= n {
		return float64(sorted[lo])
	}
	frac := rank - float64(lo)
	return float64(sorted[lo]) + frac*float64(sorted[lo+1]-sorted[lo])
}

package tables

import (
	"math"
	"sort"
)

// DetectColumns infers the column anchors of a block from the left edges
// of its fragments. The result is strictly increasing, starts with the
// block's leftmost edge and holds at most p.MaxColumns anchors.
func DetectColumns(rows []Row, p Profile) []float64 {
	counts := make(map[float64]int)
	minX := math.Inf(1)
	for _, row := range rows {
		for _, f := range row.Fragments {
			x := f.Left()
			minX = math.Min(minX, x)
			counts[bucket(x, p.BucketSize)]++
		}
	}
	if len(counts) == 0 {
		return nil
	}

	xs := make([]float64, 0, len(counts))
	for x := range counts {
		xs = append(xs, x)
	}
	sort.Float64s(xs)

	leftmost := bucket(minX, p.BucketSize)
	radius := clusterRadius(xs, p)

	// The leftmost anchor absorbs everything within one radius of it.
	anchors := []float64{leftmost}
	var cluster []float64
	for _, x := range xs {
		if math.Abs(x-leftmost) < radius {
			continue
		}
		if len(cluster) == 0 || x-cluster[len(cluster)-1] < radius {
			cluster = append(cluster, x)
			continue
		}
		anchors = append(anchors, mode(cluster, counts))
		cluster = []float64{x}
	}
	if len(cluster) > 0 {
		anchors = append(anchors, mode(cluster, counts))
	}

	anchors = uniqueSorted(anchors)
	if len(anchors) > p.MaxColumns {
		anchors = strongestAnchors(anchors, counts, radius, p.MaxColumns)
	}
	return anchors
}

// bucket rounds x to the nearest multiple of size, halves to even.
func bucket(x, size float64) float64 {
	return math.RoundToEven(x/size) * size
}

// clusterRadius derives the merge radius from the mean gap between
// consecutive buckets, ignoring gaps at or below p.MinColumnGap.
func clusterRadius(xs []float64, p Profile) float64 {
	var sum float64
	var n int
	for i := 1; i < len(xs); i++ {
		if gap := xs[i] - xs[i-1]; gap > p.MinColumnGap {
			sum += gap
			n++
		}
	}
	if n == 0 {
		return float64(p.MinRadius)
	}
	r := int(sum / float64(n) * p.ClusterFactor)
	return float64(max(p.MinRadius, min(p.MaxRadius, r)))
}

// mode returns the most frequent bucket of a cluster, leftmost on ties.
func mode(cluster []float64, counts map[float64]int) float64 {
	best := cluster[0]
	for _, x := range cluster[1:] {
		if counts[x] > counts[best] {
			best = x
		}
	}
	return best
}

func uniqueSorted(xs []float64) []float64 {
	sort.Float64s(xs)
	out := xs[:0]
	for _, x := range xs {
		if len(out) == 0 || x != out[len(out)-1] {
			out = append(out, x)
		}
	}
	return out
}

// strongestAnchors keeps the first anchor plus the limit-1 others with
// the most fragments starting within radius of them, in ascending order.
func strongestAnchors(anchors []float64, counts map[float64]int, radius float64, limit int) []float64 {
	type scored struct {
		x       float64
		support int
	}
	rest := make([]scored, 0, len(anchors)-1)
	for _, a := range anchors[1:] {
		s := scored{x: a}
		for b, n := range counts {
			if math.Abs(b-a) < radius {
				s.support += n
			}
		}
		rest = append(rest, s)
	}
	sort.SliceStable(rest, func(i, j int) bool { return rest[i].support > rest[j].support })

	out := []float64{anchors[0]}
	for _, s := range rest[:limit-1] {
		out = append(out, s.x)
	}
	sort.Float64s(out[1:])
	return out
}

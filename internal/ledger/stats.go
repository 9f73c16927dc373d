package ledger

import "sort"

// UnmetPairs returns the number of unordered pairs that have never
// shared a group.
func (l *Ledger) UnmetPairs() int {
	count := 0
	for i := 0; i < l.n; i++ {
		for j := i + 1; j < l.n; j++ {
			if l.m[i][j] == 0 {
				count++
			}
		}
	}
	return count
}

// MaxPairwise returns the largest pair count in the matrix.
func (l *Ledger) MaxPairwise() int {
	maxCount := 0
	for i := 0; i < l.n; i++ {
		for j := i + 1; j < l.n; j++ {
			if l.m[i][j] > maxCount {
				maxCount = l.m[i][j]
			}
		}
	}
	return maxCount
}

// PairsAtLeast returns the number of unordered pairs whose count has
// reached k. With k equal to the hard interaction cap this is the "pairs
// at cap" statistic.
func (l *Ledger) PairsAtLeast(k int) int {
	count := 0
	for i := 0; i < l.n; i++ {
		for j := i + 1; j < l.n; j++ {
			if l.m[i][j] >= k {
				count++
			}
		}
	}
	return count
}

// DistinctPartners returns, for each student, the number of distinct
// students they have shared a group with at least once.
func (l *Ledger) DistinctPartners() []int {
	totals := make([]int, l.n)
	for i := 0; i < l.n; i++ {
		for j := 0; j < l.n; j++ {
			if i != j && l.m[i][j] > 0 {
				totals[i]++
			}
		}
	}
	return totals
}

// DistinctStats summarizes the per-student distinct-partner counts.
type DistinctStats struct {
	Min         int
	Max         int
	Mean        float64
	Median      float64
	FullyPaired int // students who have met every other student
}

// Distinct computes summary statistics over DistinctPartners.
func (l *Ledger) Distinct() DistinctStats {
	totals := l.DistinctPartners()
	if len(totals) == 0 {
		return DistinctStats{}
	}

	sorted := make([]int, len(totals))
	copy(sorted, totals)
	sort.Ints(sorted)

	sum := 0
	fully := 0
	for _, t := range totals {
		sum += t
		if t == l.n-1 {
			fully++
		}
	}

	var median float64
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		median = float64(sorted[mid])
	} else {
		median = float64(sorted[mid-1]+sorted[mid]) / 2
	}

	return DistinctStats{
		Min:         sorted[0],
		Max:         sorted[len(sorted)-1],
		Mean:        float64(sum) / float64(len(sorted)),
		Median:      median,
		FullyPaired: fully,
	}
}

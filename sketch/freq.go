package sketch

import "sort"

// ComputeFreqHist builds a histogram keyed by interval-point count: for
// every hash in the lookup, how many hashes have exactly that many
// points. Mirrors skch::Sketch::computeFreqHist.
func (idx *Index) ComputeFreqHist() {
	hist := make(map[int]int)
	for _, pts := range idx.Lookup {
		hist[len(pts)]++
	}
	idx.Histogram = hist
}

// ComputeFreqSeedSet chooses freqThreshold by scanning the histogram
// from the highest point-count down, accumulating the number of
// distinct hashes seen, until that cumulative count is as close as
// possible to kmerPctThresh% of the total number of distinct hashes
// without exceeding it; the highest-count bucket is always taken, even
// when it alone exceeds that target. Every hash whose count is >=
// freqThreshold is inserted into the frequent-seeds set.
//
// Must run after ComputeFreqHist.
func (idx *Index) ComputeFreqSeedSet() {
	totalHashes := len(idx.Lookup)
	if totalHashes == 0 {
		idx.FreqThreshold = 0
		return
	}

	counts := make([]int, 0, len(idx.Histogram))
	for c := range idx.Histogram {
		counts = append(counts, c)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(counts)))

	target := idx.Params.KmerPctThresh / 100.0 * float64(totalHashes)

	threshold := 0
	cum := 0
	for _, c := range counts {
		next := cum + idx.Histogram[c]
		if float64(next) > target && cum > 0 {
			break
		}
		cum = next
		threshold = c
		if float64(cum) >= target {
			break
		}
	}
	idx.FreqThreshold = threshold

	idx.Frequent = make(map[uint64]struct{})
	for h, pts := range idx.Lookup {
		if len(pts) >= threshold && threshold > 0 {
			idx.Frequent[h] = struct{}{}
		}
	}
	idx.rebuildFreqCache()
}

// DropFreqSeedSet removes from the ordered window list every window
// whose hash is in the frequent-seeds set. Interval-point entries for
// those hashes remain resident (spec.md §4.2: "queries guard against
// frequent seeds via the set"), so Lookup is left untouched.
func (idx *Index) DropFreqSeedSet() {
	if len(idx.Frequent) == 0 {
		return
	}
	kept := idx.Windows[:0]
	for _, w := range idx.Windows {
		if !idx.IsFrequent(w.Hash) {
			kept = append(kept, w)
		}
	}
	idx.Windows = kept
}

// IsFrequent reports whether hash is in the frequent-seeds set,
// consulting the fast probabilistic pre-filter first when it is
// present (see freqcache.go) and falling back to the exact set on any
// potential hit — the cache can only produce false positives, never
// false negatives, so correctness never depends on it.
func (idx *Index) IsFrequent(hash uint64) bool {
	if idx.freqCache != nil && !idx.freqCache.MayContain(hash) {
		return false
	}
	_, ok := idx.Frequent[hash]
	return ok
}

package sketch

import "testing"

// TestFreqCacheNoFalseNegativesAcrossGrowth inserts enough hashes that
// newFreqCacheFromSet must grow the table at least once, and checks
// that every inserted hash still reports MayContain==true afterward.
// This is the property the old in-place grow() broke: a fingerprint
// surviving a resize at its stale bucket index became permanently
// unreachable.
func TestFreqCacheNoFalseNegativesAcrossGrowth(t *testing.T) {
	hashes := make(map[uint64]struct{}, 500)
	for h := uint64(1); h <= 500; h++ {
		hashes[h] = struct{}{}
	}
	fc := newFreqCacheFromSet(hashes)
	for h := range hashes {
		if !fc.MayContain(h) {
			t.Fatalf("hash %d inserted but MayContain reports absent (false negative)", h)
		}
	}
}

// TestDropFreqSeedSetConsultsCache exercises DropFreqSeedSet's use of
// IsFrequent (and thus the pre-filter cache built by
// ComputeFreqSeedSet) rather than the exact set directly.
func TestDropFreqSeedSetConsultsCache(t *testing.T) {
	idx := New(Params{KmerSize: 15, SegLength: 100, SketchSize: 2, AlphabetSize: 4})
	mergeWindows(idx, []Window{
		{Hash: 1, WposStart: 0, WposEnd: 10, SeqID: 0},
		{Hash: 2, WposStart: 20, WposEnd: 30, SeqID: 0},
	})
	idx.ComputeFreqHist()
	idx.Params.KmerPctThresh = 100
	idx.Frequent = map[uint64]struct{}{1: {}}
	idx.rebuildFreqCache()

	if idx.freqCache == nil {
		t.Fatal("expected rebuildFreqCache to populate idx.freqCache")
	}
	if !idx.IsFrequent(1) {
		t.Fatalf("hash 1 is in the frequent set but IsFrequent reports false")
	}
	if idx.IsFrequent(3) {
		t.Fatalf("hash 3 was never inserted but IsFrequent reports true")
	}

	idx.DropFreqSeedSet()
	if len(idx.Windows) != 1 || idx.Windows[0].Hash != 2 {
		t.Fatalf("expected only hash 2 to survive pruning, got %+v", idx.Windows)
	}
}

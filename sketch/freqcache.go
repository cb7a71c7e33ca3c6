package sketch

import (
	"github.com/cespare/xxhash"
)

// freqCache is a small fixed-size cuckoo-filter-style membership cache
// over the frequent-seeds set: two candidate buckets per fingerprint,
// each holding a handful of fingerprints. Built once from the exact
// set (never mutated concurrently afterward), so — unlike the teacher's
// cgo/atomic cuckoofilter this is adapted from — it needs no
// compare-and-swap machinery: construction is single-threaded, and every
// subsequent access is a read.
//
// Adapted from mudesheng-ga/cuckoofilter/cuckoofilter.go's bucket
// layout and two-candidate-index scheme, swapped to
// github.com/cespare/xxhash for fingerprinting (the root-level
// mudesheng-ga/cuckoofilter.go already pulls in xxhash for this exact
// purpose) instead of the teacher's cgo/metro combination.
type freqCache struct {
	buckets [][bucketSize]uint16
}

const bucketSize = 4

func newFreqCache(n int) *freqCache {
	if n == 0 {
		n = 1
	}
	numBuckets := upperPow2(uint64(n)) / bucketSize
	if numBuckets == 0 {
		numBuckets = 1
	}
	return &freqCache{buckets: make([][bucketSize]uint16, numBuckets)}
}

// newFreqCacheFromSet builds a cache sized to hold every hash in the
// set, growing the table and rebuilding from scratch whenever a given
// size can't fit every entry. Rebuilding from scratch (rather than
// migrating each bucket's existing fingerprints into a larger table)
// is deliberate: a fingerprint alone doesn't carry enough information
// to recompute its bucket index at a different table size, so an
// in-place migration would silently lose entries.
func newFreqCacheFromSet(hashes map[uint64]struct{}) *freqCache {
	n := len(hashes)
	for {
		fc := newFreqCache(n)
		if fc.insertAll(hashes) {
			return fc
		}
		n = int(fc.numBuckets()) * bucketSize * 2
	}
}

func (fc *freqCache) insertAll(hashes map[uint64]struct{}) bool {
	for h := range hashes {
		if !fc.Insert(h) {
			return false
		}
	}
	return true
}

func upperPow2(x uint64) uint64 {
	if x == 0 {
		return 1
	}
	x--
	x |= x >> 1
	x |= x >> 2
	x |= x >> 4
	x |= x >> 8
	x |= x >> 16
	x |= x >> 32
	return x + 1
}

func (fc *freqCache) numBuckets() uint64 { return uint64(len(fc.buckets)) }

func (fc *freqCache) indexAndFingerprint(hash uint64) (uint64, uint16) {
	var b [8]byte
	for i := 0; i < 8; i++ {
		b[i] = byte(hash >> (8 * i))
	}
	h := xxhash.Sum64(b[:])
	fp := uint16(h>>48) | 1 // never store a zero fingerprint; 0 means empty slot
	idx := h % fc.numBuckets()
	return idx, fp
}

func (fc *freqCache) altIndex(idx uint64, fp uint16) uint64 {
	var b [2]byte
	b[0], b[1] = byte(fp>>8), byte(fp)
	h := xxhash.Sum64(b[:])
	return (idx ^ h) % fc.numBuckets()
}

// Insert records hash's fingerprint in its primary bucket, falling back
// to the alternate bucket. Unlike a classic cuckoo filter, it never
// evicts and kick-chases to make room: false negatives are exactly
// what correctness forbids here, so a full bucket pair is reported to
// the caller (false) instead, letting newFreqCacheFromSet rebuild at a
// larger size.
func (fc *freqCache) Insert(hash uint64) bool {
	idx, fp := fc.indexAndFingerprint(hash)
	if fc.insertAt(idx, fp) {
		return true
	}
	alt := fc.altIndex(idx, fp)
	return fc.insertAt(alt, fp)
}

func (fc *freqCache) insertAt(idx uint64, fp uint16) bool {
	b := &fc.buckets[idx]
	for i := range b {
		if b[i] == 0 {
			b[i] = fp
			return true
		}
	}
	return false
}

// MayContain reports whether hash is possibly a member. False means
// definitely absent; true may be a false positive.
func (fc *freqCache) MayContain(hash uint64) bool {
	idx, fp := fc.indexAndFingerprint(hash)
	if fc.containsAt(idx, fp) {
		return true
	}
	return fc.containsAt(fc.altIndex(idx, fp), fp)
}

func (fc *freqCache) containsAt(idx uint64, fp uint16) bool {
	b := &fc.buckets[idx]
	for _, v := range b {
		if v == fp {
			return true
		}
	}
	return false
}

// rebuildFreqCache rebuilds the probabilistic pre-filter from the exact
// frequent-seeds set. Called after every ComputeFreqSeedSet and after
// read(), so the cache never observes a partially-built set.
func (idx *Index) rebuildFreqCache() {
	idx.freqCache = newFreqCacheFromSet(idx.Frequent)
}

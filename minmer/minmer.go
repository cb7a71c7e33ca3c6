// Package minmer streams minmer windows from a single DNA sequence: a
// bottom-s sketch (the s smallest distinct canonical k-mer hashes) over
// a sliding window of segLength bases, with run-length compression of
// consecutive identical minmers.
//
// Grounded on winSketch.hpp's addMinmers/CommonFunc contract (spec.md
// §4.1) and, in Go idiom, on the deque/sliding-window worker style of
// mudesheng-ga/constructdbg/mapDBG.go.
package minmer

import (
	"sort"

	"github.com/mudesheng/wgalign/dna"
	"github.com/mudesheng/wgalign/xhash"
)

// Window is one occurrence of a minmer-selected k-mer over a position
// interval, equivalent to spec.md's W. Positions are local to SeqID.
type Window struct {
	Hash      uint64
	WposStart int
	WposEnd   int
	SeqID     uint32
	Strand    xhash.Strand
}

// Params bundles the subset of the global configuration the stream
// needs, so callers don't have to import the params package just to
// call AddMinmers.
type Params struct {
	KmerSize     int
	SegLength    int
	AlphabetSize int
	SketchSize   int
}

type candidate struct {
	hash uint64
	pos  int
}

// byHashPos sorts candidates ascending by hash, ties broken by position
// — this is the ordering the bottom-s selection scans.
type byHashPos []candidate

func (c byHashPos) Len() int      { return len(c) }
func (c byHashPos) Swap(i, j int) { c[i], c[j] = c[j], c[i] }
func (c byHashPos) Less(i, j int) bool {
	if c[i].hash != c[j].hash {
		return c[i].hash < c[j].hash
	}
	return c[i].pos < c[j].pos
}

// AddMinmers computes the ordered list of minmer windows for seq under
// p, tagging every emitted Window with seqID. Sequences shorter than
// SegLength must be filtered out by the caller (spec.md §4.1 edge case
// — skipped with a warning upstream, not here).
func AddMinmers(seq []byte, seqID uint32, p Params) []Window {
	k := p.KmerSize
	segLen := p.SegLength
	if len(seq) < segLen || len(seq) < k {
		return nil
	}

	numPos := len(seq) - k + 1
	segK := segLen - k + 1 // kmer positions per window
	if segK <= 0 || numPos < segK {
		return nil
	}
	numWindows := numPos - segK + 1

	hashes := make([]uint64, numPos)
	strands := make([]xhash.Strand, numPos)
	valid := make([]bool, numPos)
	computeKmerHashes(seq, k, hashes, strands, valid)

	// sliding window candidate set, kept sorted by (hash, pos)
	cand := make(byHashPos, 0, segK)
	addPos := func(pos int) {
		if !valid[pos] {
			return
		}
		c := candidate{hash: hashes[pos], pos: pos}
		i := sort.Search(len(cand), func(i int) bool {
			if cand[i].hash != c.hash {
				return cand[i].hash > c.hash
			}
			return cand[i].pos >= c.pos
		})
		cand = append(cand, candidate{})
		copy(cand[i+1:], cand[i:])
		cand[i] = c
	}
	removePos := func(pos int) {
		if !valid[pos] {
			return
		}
		target := candidate{hash: hashes[pos], pos: pos}
		i := sort.Search(len(cand), func(i int) bool {
			if cand[i].hash != target.hash {
				return cand[i].hash > target.hash
			}
			return cand[i].pos >= target.pos
		})
		if i < len(cand) && cand[i] == target {
			cand = append(cand[:i], cand[i+1:]...)
		}
	}

	for pos := 0; pos < segK; pos++ {
		addPos(pos)
	}

	type selection struct {
		hash   uint64
		strand xhash.Strand
	}
	selected := make(map[int]selection)

	selectBottomS := func() {
		var lastHash uint64
		haveLast := false
		count := 0
		for _, c := range cand {
			if count >= p.SketchSize {
				break
			}
			if haveLast && c.hash == lastHash {
				continue
			}
			selected[c.pos] = selection{hash: c.hash, strand: strands[c.pos]}
			lastHash, haveLast = c.hash, true
			count++
		}
	}

	for widx := 0; widx < numWindows; widx++ {
		if widx > 0 {
			removePos(widx - 1)
			addPos(widx + segK - 1)
		}
		selectBottomS()
	}

	positions := make([]int, 0, len(selected))
	for pos := range selected {
		positions = append(positions, pos)
	}
	sort.Ints(positions)

	result := make([]Window, 0, len(positions))
	for _, pos := range positions {
		sel := selected[pos]
		wposStart := pos
		wposEnd := pos + k
		if n := len(result); n > 0 && result[n-1].Hash == sel.hash && result[n-1].WposEnd == wposStart {
			result[n-1].WposEnd = wposEnd
			continue
		}
		result = append(result, Window{
			Hash:      sel.hash,
			WposStart: wposStart,
			WposEnd:   wposEnd,
			SeqID:     seqID,
			Strand:    sel.strand,
		})
	}
	return result
}

// computeKmerHashes fills hashes/strands/valid for every k-mer start
// position in seq. A k-mer is invalid if any base within it is not
// canonical DNA after upper-casing (spec.md §4.1: "any non-canonical
// base breaks the current k-mer").
func computeKmerHashes(seq []byte, k int, hashes []uint64, strands []xhash.Strand, valid []bool) {
	n := len(seq)
	// nextBad holds the position of a non-canonical base found at or
	// after the current start position; while it is still ahead, the
	// k-mers covering it are marked invalid without rescanning. When no
	// such base is pending, the k-mer is scanned again.
	nextBad := -1
	for pos := 0; pos < len(hashes); pos++ {
		if nextBad < pos {
			nextBad = -1
			for j := pos; j < pos+k && j < n; j++ {
				if !dna.IsCanonicalBase(dna.ToUpper(seq[j])) {
					nextBad = j
					break
				}
			}
		}
		if nextBad != -1 && nextBad < pos+k {
			valid[pos] = false
			continue
		}
		fwd := make([]byte, k)
		for j := 0; j < k; j++ {
			fwd[j] = dna.ToUpper(seq[pos+j])
		}
		rc := dna.ReverseComplementCopy(fwd)
		h, s := xhash.Canonical(fwd, rc)
		hashes[pos] = h
		strands[pos] = s
		valid[pos] = true
	}
}

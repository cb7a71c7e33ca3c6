// Package sketch builds, prunes, serializes and reloads the reference
// minmer index: the ordered window list, the hash-to-interval-point
// lookup, and the frequent-seeds set.
//
// Grounded on winSketch.hpp's skch::Sketch (spec.md §4.2) for the
// structure and merge policy; Go concurrency idiom borrowed from
// mudesheng-ga/constructdbg/mapDBG.go's worker-pool dispatch.
package sketch

import (
	"github.com/mudesheng/wgalign/minmer"
	"github.com/mudesheng/wgalign/xhash"
)

// Window is a minmer occurrence, identical in shape to minmer.Window —
// the ordered window list is the concatenation of every worker's
// AddMinmers output, so there's no reason to redeclare the type.
type Window = minmer.Window

// Side is one endpoint of an interval point: OPEN at wpos_start, CLOSE
// at wpos_end.
type Side uint8

const (
	Open Side = iota
	Close
)

// Point is one endpoint of a Window's position interval, used by the
// downstream mapper's sweep-line queries.
type Point struct {
	Pos   int
	Hash  uint64
	SeqID uint32
	Side  Side
}

// ContigMeta records one reference sequence's name and length, in scan
// order; its index into Index.Contigs is its stable sequence id.
type ContigMeta struct {
	Name   string
	Length int
}

// Params is the subset of the global configuration that determines
// index content and on-disk compatibility.
type Params struct {
	KmerSize      int
	SegLength     int
	SketchSize    int
	AlphabetSize  int
	KmerPctThresh float64
}

// Index is the complete in-memory reference index: the ordered window
// list, the hash->interval-point lookup, and the frequent-seeds set
// derived from it. Index.Params must match the CLI parameters used to
// build it, or read() must refuse to load the file (spec.md §4.7).
type Index struct {
	Params   Params
	Contigs  []ContigMeta
	Windows  []Window
	Lookup   map[uint64][]Point
	Frequent map[uint64]struct{}

	// Histogram maps an interval-point count to the number of distinct
	// hashes observed with exactly that count, built by computeFreqHist.
	Histogram map[int]int
	// FreqThreshold is the count cutoff chosen by computeFreqSeedSet;
	// zero until that step has run.
	FreqThreshold int

	freqCache *freqCache
}

// New returns an empty index ready for build().
func New(p Params) *Index {
	return &Index{
		Params:   p,
		Lookup:   make(map[uint64][]Point),
		Frequent: make(map[uint64]struct{}),
	}
}

func minmerParams(p Params) minmer.Params {
	return minmer.Params{
		KmerSize:     p.KmerSize,
		SegLength:    p.SegLength,
		AlphabetSize: p.AlphabetSize,
		SketchSize:   p.SketchSize,
	}
}

// strandByte renders a Strand the way PAF/mashmap conventionally does,
// used by the debug dot dump.
func strandByte(s xhash.Strand) byte {
	if s == xhash.Reverse {
		return '-'
	}
	return '+'
}

package minmer

import (
	"math/rand"
	"testing"
)

func randSeq(n int, seed int64) []byte {
	r := rand.New(rand.NewSource(seed))
	bases := []byte("ACGT")
	seq := make([]byte, n)
	for i := range seq {
		seq[i] = bases[r.Intn(4)]
	}
	return seq
}

func TestAddMinmersOrderedAndInBounds(t *testing.T) {
	seq := randSeq(2000, 1)
	p := Params{KmerSize: 15, SegLength: 100, AlphabetSize: 4, SketchSize: 2}
	ws := AddMinmers(seq, 7, p)
	if len(ws) == 0 {
		t.Fatalf("expected some windows")
	}
	for i, w := range ws {
		if w.WposStart >= w.WposEnd {
			t.Fatalf("window %d: wpos_start >= wpos_end", i)
		}
		if w.WposStart < 0 || w.WposEnd > len(seq) {
			t.Fatalf("window %d out of bounds: %+v", i, w)
		}
		if w.SeqID != 7 {
			t.Fatalf("window %d has wrong seq id: %d", i, w.SeqID)
		}
		if i > 0 && ws[i-1].WposStart > w.WposStart {
			t.Fatalf("windows not ordered by wpos_start ascending at %d", i)
		}
	}
}

func TestAddMinmersDeterministic(t *testing.T) {
	seq := randSeq(5000, 42)
	p := Params{KmerSize: 13, SegLength: 200, AlphabetSize: 4, SketchSize: 3}
	a := AddMinmers(seq, 0, p)
	b := AddMinmers(seq, 0, p)
	if len(a) != len(b) {
		t.Fatalf("non-deterministic window count: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("non-deterministic window at %d: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestAddMinmersShortSequenceSkipped(t *testing.T) {
	seq := randSeq(10, 2)
	p := Params{KmerSize: 15, SegLength: 100, AlphabetSize: 4, SketchSize: 2}
	if ws := AddMinmers(seq, 0, p); ws != nil {
		t.Fatalf("expected nil for sequence shorter than segLength, got %d windows", len(ws))
	}
}

func TestAddMinmersAmbiguousBasesSkipped(t *testing.T) {
	seq := randSeq(500, 3)
	for i := 100; i < 130; i++ {
		seq[i] = 'N'
	}
	p := Params{KmerSize: 15, SegLength: 100, AlphabetSize: 4, SketchSize: 2}
	ws := AddMinmers(seq, 0, p)
	for _, w := range ws {
		if w.WposStart >= 100 && w.WposStart < 130 {
			t.Fatalf("window starting inside the ambiguous run should never be emitted: %+v", w)
		}
	}
}

package xhash

import "testing"

func TestCanonicalSymmetric(t *testing.T) {
	fwd := []byte("ACGTACGTAC")
	rc := []byte("GTACGTACGT") // reverse complement of fwd

	h1, s1 := Canonical(fwd, rc)
	h2, s2 := Canonical(rc, fwd)

	if h1 != h2 {
		t.Fatalf("canonical hash not symmetric: %d vs %d", h1, h2)
	}
	if s1 == s2 {
		t.Fatalf("expected opposite strands, got %v and %v", s1, s2)
	}
}

func TestCanonicalPicksMinimum(t *testing.T) {
	fwd := []byte("AAAA")
	rc := []byte("TTTT")
	h, s := Canonical(fwd, rc)
	want := Hash64(fwd)
	if want > Hash64(rc) {
		want = Hash64(rc)
	}
	if h != want {
		t.Fatalf("got %d, want %d", h, want)
	}
	_ = s
}

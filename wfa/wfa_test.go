package wfa

import "testing"

func TestAlignIdenticalSequences(t *testing.T) {
	a := New(DefaultPenalties, DefaultOptions)
	seq := []byte("ACGTACGTACGT")
	res, err := a.Align(seq, seq)
	if err != nil {
		t.Fatal(err)
	}
	if res.Score != 0 {
		t.Fatalf("expected score 0 for identical sequences, got %d", res.Score)
	}
	if res.NM != 0 {
		t.Fatalf("expected NM 0, got %d", res.NM)
	}
	if res.CIGAR != "12M" {
		t.Fatalf("expected 12M, got %q", res.CIGAR)
	}
}

func TestAlignSingleMismatch(t *testing.T) {
	a := New(DefaultPenalties, DefaultOptions)
	query := []byte("ACGTACGT")
	ref := []byte("ACGTTCGT")
	res, err := a.Align(query, ref)
	if err != nil {
		t.Fatal(err)
	}
	if res.Mismatches != 1 {
		t.Fatalf("expected exactly one mismatch, got %d", res.Mismatches)
	}
	if res.CIGAR != "8M" {
		t.Fatalf("a substitution stays inside one M run in PAF convention, got %q", res.CIGAR)
	}
}

func TestAlignInsertion(t *testing.T) {
	a := New(DefaultPenalties, DefaultOptions)
	query := []byte("ACGTTTACGT")
	ref := []byte("ACGTACGT")
	res, err := a.Align(query, ref)
	if err != nil {
		t.Fatal(err)
	}
	if res.NM == 0 {
		t.Fatalf("expected a nonzero edit distance for an inserted run")
	}
}

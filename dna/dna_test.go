package dna

import "testing"

func TestReverseComplement(t *testing.T) {
	got := ReverseComplementCopy([]byte("ACGTN"))
	want := "NACGT"
	if string(got) != want {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestMakeUpperCaseAndValidDNA(t *testing.T) {
	seq := []byte("acgtnXYZ")
	MakeUpperCaseAndValidDNA(seq)
	if string(seq) != "ACGTNNNN" {
		t.Fatalf("got %s", seq)
	}
}

func TestIsCanonicalBase(t *testing.T) {
	for _, b := range []byte("ACGT") {
		if !IsCanonicalBase(b) {
			t.Fatalf("%c should be canonical", b)
		}
	}
	if IsCanonicalBase('N') {
		t.Fatalf("N should not be canonical")
	}
}

package fastastore

import (
	"os"
	"testing"
)

func writeTestFasta(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	fastaPath := dir + "/ref.fa"
	// two lines of 10 bases, total length 25
	content := ">chr1 desc\nACGTACGTAC\nGTACGTACGT\nACGTA\n"
	if err := os.WriteFile(fastaPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	fai := "chr1\t25\t11\t10\t11\n"
	if err := os.WriteFile(fastaPath+".fai", []byte(fai), 0o644); err != nil {
		t.Fatal(err)
	}
	return fastaPath
}

func TestFetchWithinFirstLine(t *testing.T) {
	h, err := Open(writeTestFasta(t))
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	got, err := h.Fetch("chr1", 0, 4)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "ACGT" {
		t.Fatalf("got %q", got)
	}
}

func TestFetchSpanningLines(t *testing.T) {
	h, err := Open(writeTestFasta(t))
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	got, err := h.Fetch("chr1", 8, 14)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "ACGTAC" {
		t.Fatalf("got %q, want ACGTAC", got)
	}
}

func TestFetchOutOfRange(t *testing.T) {
	h, err := Open(writeTestFasta(t))
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	if _, err := h.Fetch("chr1", 20, 30); err == nil {
		t.Fatalf("expected out-of-range error")
	}
}

func TestSeqLength(t *testing.T) {
	h, err := Open(writeTestFasta(t))
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	n, ok := h.SeqLength("chr1")
	if !ok || n != 25 {
		t.Fatalf("got %d,%v want 25,true", n, ok)
	}
}

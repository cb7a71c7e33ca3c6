package align

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mudesheng/wgalign/fastastore"
	"github.com/mudesheng/wgalign/wfa"
)

// writeFasta writes seqs (name -> sequence, one line each) as a FASTA
// plus matching .fai index with a single-line-per-record layout.
func writeFasta(t *testing.T, dir, name string, seqs map[string]string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	var fb, fi strings.Builder
	for seqName, seq := range seqs {
		header := ">" + seqName + "\n"
		fb.WriteString(header)
		bodyOffset := fb.Len()
		fb.WriteString(seq)
		fb.WriteString("\n")
		fi.WriteString(seqName + "\t" +
			itoa(len(seq)) + "\t" +
			itoa(bodyOffset) + "\t" +
			itoa(len(seq)) + "\t" +
			itoa(len(seq)+1) + "\n")
	}
	if err := os.WriteFile(path, []byte(fb.String()), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path+".fai", []byte(fi.String()), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var b []byte
	for n > 0 {
		b = append([]byte{byte('0' + n%10)}, b...)
		n /= 10
	}
	if neg {
		b = append([]byte{'-'}, b...)
	}
	return string(b)
}

func openTestPool(t *testing.T, path string) *fastastore.Pool {
	t.Helper()
	pool, err := fastastore.NewPool(path, 2)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { pool.Close() })
	return pool
}

func TestPipelineRunEmptyInputProducesNoOutput(t *testing.T) {
	dir := t.TempDir()
	refPath := writeFasta(t, dir, "ref.fa", map[string]string{"chr1": strings.Repeat("ACGT", 10)})
	pool := openTestPool(t, refPath)

	mappingPath := filepath.Join(dir, "mapping.txt")
	if err := os.WriteFile(mappingPath, []byte(""), 0o644); err != nil {
		t.Fatal(err)
	}
	outPath := filepath.Join(dir, "out.paf")

	cfg := Config{
		Threads:           2,
		MashmapPafFile:    mappingPath,
		PafOutputFile:     outPath,
		WflignMaxLenMinor: 50,
		MinIdentity:       0,
	}
	p, err := New(cfg, wfa.New(wfa.DefaultPenalties, wfa.DefaultOptions), pool, pool, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := p.Run(); err != nil {
		t.Fatal(err)
	}

	out, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 0 {
		t.Fatalf("expected no output lines, got %q", out)
	}
}

func TestPipelineRunSingleForwardRecordEmitsOnePAFLine(t *testing.T) {
	dir := t.TempDir()
	seq := strings.Repeat("ACGTACGTAC", 5) // 50bp
	refPath := writeFasta(t, dir, "ref.fa", map[string]string{"chr1": seq})
	queryPath := writeFasta(t, dir, "query.fa", map[string]string{"read1": seq[10:30]})

	refPool := openTestPool(t, refPath)
	queryPool := openTestPool(t, queryPath)

	line := "read1\t20\t0\t20\t+\tchr1\t50\t10\t30\t20\t20\t60\tid:f:100.0\n"
	mappingPath := filepath.Join(dir, "mapping.txt")
	if err := os.WriteFile(mappingPath, []byte(line), 0o644); err != nil {
		t.Fatal(err)
	}
	outPath := filepath.Join(dir, "out.paf")

	cfg := Config{
		Threads:           2,
		MashmapPafFile:    mappingPath,
		PafOutputFile:     outPath,
		WflignMaxLenMinor: 5,
		MinIdentity:       0,
	}
	p, err := New(cfg, wfa.New(wfa.DefaultPenalties, wfa.DefaultOptions), refPool, queryPool, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := p.Run(); err != nil {
		t.Fatal(err)
	}

	out, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(string(out), "\n"), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected exactly one PAF line, got %d: %q", len(lines), out)
	}
	fields := strings.Split(lines[0], "\t")
	if fields[0] != "read1" || fields[5] != "chr1" {
		t.Fatalf("unexpected PAF record: %q", lines[0])
	}
	if p.Progress() != 20 {
		t.Fatalf("expected progress 20, got %d", p.Progress())
	}
}

func TestPipelineRunMinIdentityFilterDropsRecord(t *testing.T) {
	dir := t.TempDir()
	refSeq := strings.Repeat("A", 20) + strings.Repeat("G", 20)
	refPath := writeFasta(t, dir, "ref.fa", map[string]string{"chr1": refSeq})
	queryPath := writeFasta(t, dir, "query.fa", map[string]string{"read1": strings.Repeat("A", 20)})

	refPool := openTestPool(t, refPath)
	queryPool := openTestPool(t, queryPath)

	// Query maps against the G-run: every base mismatches.
	line := "read1\t20\t0\t20\t+\tchr1\t40\t20\t40\t0\t20\t60\tid:f:0.0\n"
	mappingPath := filepath.Join(dir, "mapping.txt")
	if err := os.WriteFile(mappingPath, []byte(line), 0o644); err != nil {
		t.Fatal(err)
	}
	outPath := filepath.Join(dir, "out.paf")

	cfg := Config{
		Threads:           1,
		MashmapPafFile:    mappingPath,
		PafOutputFile:     outPath,
		WflignMaxLenMinor: 0,
		MinIdentity:       50,
	}
	p, err := New(cfg, wfa.New(wfa.DefaultPenalties, wfa.DefaultOptions), refPool, queryPool, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := p.Run(); err != nil {
		t.Fatal(err)
	}

	out, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 0 {
		t.Fatalf("expected record below MinIdentity to be dropped, got %q", out)
	}
	if p.Progress() != 0 {
		t.Fatalf("expected progress to stay 0 for a dropped record, got %d", p.Progress())
	}
}

func TestPipelineRunSegmentedAlignmentWritesPatchingInfo(t *testing.T) {
	dir := t.TempDir()
	seq := strings.Repeat("ACGTACGTAC", 10) // 100bp
	refPath := writeFasta(t, dir, "ref.fa", map[string]string{"chr1": seq})
	queryPath := writeFasta(t, dir, "query.fa", map[string]string{"read1": seq})

	refPool := openTestPool(t, refPath)
	queryPool := openTestPool(t, queryPath)

	line := "read1\t100\t0\t100\t+\tchr1\t100\t0\t100\t100\t100\t60\tid:f:100.0\n"
	mappingPath := filepath.Join(dir, "mapping.txt")
	if err := os.WriteFile(mappingPath, []byte(line), 0o644); err != nil {
		t.Fatal(err)
	}
	outPath := filepath.Join(dir, "out.paf")
	patchPath := filepath.Join(dir, "patch.tsv")

	cfg := Config{
		Threads:               1,
		MashmapPafFile:        mappingPath,
		PafOutputFile:         outPath,
		PatchingInfoTSV:       patchPath,
		WflignMaxLenMinor:     0,
		WflambdaSegmentLength: 30, // forces 4 chunks over a 100bp query
		MinIdentity:           0,
	}
	p, err := New(cfg, wfa.New(wfa.DefaultPenalties, wfa.DefaultOptions), refPool, queryPool, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := p.Run(); err != nil {
		t.Fatal(err)
	}

	patchOut, err := os.ReadFile(patchPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(patchOut), "read1") {
		t.Fatalf("expected patching info for a segmented alignment, got %q", patchOut)
	}
}

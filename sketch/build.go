package sketch

import (
	"fmt"
	"io"
	"log"
	"os"
	"runtime"
	"sync"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq/linear"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	"github.com/mudesheng/wgalign/minmer"
	"github.com/mudesheng/wgalign/params"
)

type seqJob struct {
	seqID uint32
	seq   []byte
}

// Build streams every FASTA file in refs in order, assigns a stable
// sequence id to each record whose name is in targetNames (all records
// if targetNames is empty) and whose length is >= SegLength, runs
// MinmerStream on a fixed-size worker pool, and merges the results into
// idx. Short sequences are skipped with a warning, matching spec.md
// §4.1's edge case and §7's error taxonomy.
//
// The sequential scan (no random access needed here) uses
// biogo/io/seqio/fasta, grounded on mudesheng-ga/constructdbg/mapDBG.go's
// GetRawReads; random-access substring fetches during alignment go
// through fastastore's own .fai reader instead.
func Build(idx *Index, refs []string, targetNames map[string]bool, numWorkers int) error {
	if numWorkers <= 0 {
		numWorkers = runtime.GOMAXPROCS(0)
	}

	jobs := make(chan seqJob, numWorkers*2)
	results := make(chan []Window, numWorkers*2)

	var wg sync.WaitGroup
	wg.Add(numWorkers)
	for i := 0; i < numWorkers; i++ {
		go func() {
			defer wg.Done()
			mp := minmerParams(idx.Params)
			for j := range jobs {
				results <- minmer.AddMinmers(j.seq, j.seqID, mp)
			}
		}()
	}

	var bar *mpb.Bar
	var progress *mpb.Progress
	if isTTY() {
		progress = mpb.New(mpb.WithWidth(64))
		bar = progress.AddBar(0,
			mpb.PrependDecorators(decor.Name("sketch build")),
			mpb.AppendDecorators(decor.CountersNoUnit("%d sequences")),
		)
	}

	var mergeErr error
	done := make(chan struct{})
	go func() {
		defer close(done)
		for ws := range results {
			mergeWindows(idx, ws)
			if bar != nil {
				bar.Increment()
			}
		}
	}()

	seqCount := 0
	for _, fn := range refs {
		if err := scanFasta(fn, targetNames, idx, &seqCount, jobs); err != nil {
			mergeErr = err
			break
		}
	}
	close(jobs)
	wg.Wait()
	close(results)
	<-done
	if progress != nil {
		progress.Wait()
	}
	if mergeErr != nil {
		return mergeErr
	}

	if len(idx.Windows) == 0 {
		params.Fatal("sketch.Build", "empty index after build: no reference sequence produced any minmer window")
	}
	log.Printf("[sketch.Build] indexed %d sequence(s), %d window(s)\n", seqCount, len(idx.Windows))
	return nil
}

func scanFasta(fn string, targetNames map[string]bool, idx *Index, seqCount *int, jobs chan<- seqJob) error {
	f, err := os.Open(fn)
	if err != nil {
		return fmt.Errorf("sketch.Build: open %s: %w", fn, err)
	}
	defer f.Close()

	r := fasta.NewReader(f, linear.NewSeq("", nil, alphabet.DNA))
	for {
		s, err := r.Read()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("sketch.Build: read %s: %w", fn, err)
		}
		l := s.(*linear.Seq)
		name := l.Name()
		if len(targetNames) > 0 && !targetNames[name] {
			continue
		}
		if len(l.Seq) < idx.Params.SegLength {
			params.Warn("sketch.Build", "sequence %q shorter than segLength (%d < %d), skipped", name, len(l.Seq), idx.Params.SegLength)
			continue
		}
		buf := make([]byte, len(l.Seq))
		for i, lt := range l.Seq {
			buf[i] = byte(lt)
		}
		seqID := uint32(len(idx.Contigs))
		idx.Contigs = append(idx.Contigs, ContigMeta{Name: name, Length: len(buf)})
		*seqCount++
		jobs <- seqJob{seqID: seqID, seq: buf}
	}
}

func isTTY() bool {
	fi, err := os.Stderr.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}

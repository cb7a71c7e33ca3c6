// Package align implements the parallel alignment pipeline (C5) and
// the aligner adapter (C6): reader -> bounded queue -> N workers ->
// bounded queue -> writer, fetching reference/query substrings from
// fastastore and delegating base-level alignment to a wfa.Aligner.
//
// Topology and termination protocol are unchanged from spec.md §4.5;
// the busy-wait lock-free queues described there are replaced by Go
// channels with close-based termination, per spec.md §9's own design
// note. See SPEC_FULL.md §4.5 for the invariant-by-invariant mapping.
package align

import (
	"bufio"
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"github.com/biogo/hts/sam"

	"github.com/mudesheng/wgalign/dna"
	"github.com/mudesheng/wgalign/fastastore"
	"github.com/mudesheng/wgalign/mapping"
	"github.com/mudesheng/wgalign/params"
	"github.com/mudesheng/wgalign/wfa"
)

const queueCapacity = 1024

// Config is the subset of params.Parameters the pipeline needs.
type Config struct {
	Threads        int
	MashmapPafFile string
	PafOutputFile  string

	// TSVOutputPrefix, when set, writes one "<prefix>.<n>.tsv" file per
	// alignment record with its coordinates and edit distance.
	TSVOutputPrefix string
	// PatchingInfoTSV, when set, appends one line per alignment that
	// wflambda segmentation actually chunked (res.Segments > 1).
	PatchingInfoTSV string

	WflignMaxLenMinor     int
	WflambdaSegmentLength int
	MinIdentity           float64
	SAMFormat             bool
	EmitMDTag             bool
	NoSeqInSAM            bool
	Split                 bool
}

// Pipeline owns the queues and worker goroutines for one run.
type Pipeline struct {
	cfg        Config
	aligner    wfa.Aligner
	refPool    *fastastore.Pool
	queryPool  *fastastore.Pool
	samEncoder *mapping.SAMEncoder

	progress atomic.Uint64
}

// output is the value carried on the worker->writer queue: exactly one
// of PAF or SAM is populated, chosen once at pipeline construction.
type output struct {
	paf string
	sam *sam.Record
}

// New builds a Pipeline. refPool and queryPool may be the same pool
// when self-aligning one FASTA against itself. contigLengths is used
// only to build the SAM header when cfg.SAMFormat is set.
func New(cfg Config, aligner wfa.Aligner, refPool, queryPool *fastastore.Pool, contigLengths map[string]int) (*Pipeline, error) {
	p := &Pipeline{cfg: cfg, aligner: aligner, refPool: refPool, queryPool: queryPool}
	if cfg.SAMFormat {
		enc, err := mapping.NewSAMEncoder(contigLengths, cfg.EmitMDTag, cfg.NoSeqInSAM)
		if err != nil {
			return nil, fmt.Errorf("align.New: %w", err)
		}
		p.samEncoder = enc
	}
	return p, nil
}

// Progress returns the cumulative qEnd-qStart bytes processed so far,
// for user-visible progress reporting (spec.md §4.5's "monotonic
// counter").
func (p *Pipeline) Progress() uint64 { return p.progress.Load() }

// Run executes the full reader/workers/writer topology and blocks
// until every line has been written and every goroutine has exited.
func (p *Pipeline) Run() error {
	numWorkers := p.cfg.Threads
	if numWorkers <= 0 {
		numWorkers = 1
	}

	seqQueue := make(chan mapping.BoundaryRow, queueCapacity)
	outQueue := make(chan output, queueCapacity)
	var tsvQueue chan string
	if p.cfg.TSVOutputPrefix != "" {
		tsvQueue = make(chan string, queueCapacity)
	}
	var patchQueue chan string
	if p.cfg.PatchingInfoTSV != "" {
		patchQueue = make(chan string, queueCapacity)
	}

	adapter := &Adapter{
		Aligner:               p.aligner,
		WflignMaxLenMinor:     p.cfg.WflignMaxLenMinor,
		MinIdentity:           p.cfg.MinIdentity,
		WflambdaSegmentLength: p.cfg.WflambdaSegmentLength,
	}

	var wg sync.WaitGroup
	wg.Add(numWorkers)
	for i := 0; i < numWorkers; i++ {
		go p.worker(i, adapter, seqQueue, outQueue, tsvQueue, patchQueue, &wg)
	}

	// The writer's range loop over outQueue exits only once outQueue
	// is both closed and drained — this is spec.md §4.5's "writer
	// never exits with records still in paf_queue" invariant, made
	// structural instead of relying on a hand-rolled liveness array.
	go func() {
		wg.Wait()
		close(outQueue)
		if tsvQueue != nil {
			close(tsvQueue)
		}
		if patchQueue != nil {
			close(patchQueue)
		}
	}()

	writerErrCh := make(chan error, 1)
	go func() {
		writerErrCh <- p.writeOutput(outQueue)
	}()

	var tsvErrCh chan error
	if tsvQueue != nil {
		tsvErrCh = make(chan error, 1)
		go func() {
			tsvErrCh <- writeTSV(p.cfg.TSVOutputPrefix, tsvQueue)
		}()
	}

	var patchErrCh chan error
	if patchQueue != nil {
		patchErrCh = make(chan error, 1)
		go func() {
			patchErrCh <- writeAppendLines(p.cfg.PatchingInfoTSV, patchQueue)
		}()
	}

	if err := p.readAndDispatch(seqQueue); err != nil {
		return err
	}
	// Closing seqQueue *is* reader_done: an atomic, race-free publish
	// of "no more sends" that workers observe via range, with no
	// last-moment-push race possible (spec.md §4.5's crucial ordering
	// requirement).
	close(seqQueue)

	if err := <-writerErrCh; err != nil {
		return err
	}
	if tsvErrCh != nil {
		if err := <-tsvErrCh; err != nil {
			return err
		}
	}
	if patchErrCh != nil {
		if err := <-patchErrCh; err != nil {
			return err
		}
	}
	return nil
}

func (p *Pipeline) worker(id int, adapter *Adapter, seqQueue <-chan mapping.BoundaryRow, outQueue chan<- output, tsvQueue, patchQueue chan<- string, wg *sync.WaitGroup) {
	defer wg.Done()
	refHandle := p.refPool.Handle(id)
	queryHandle := p.queryPool.Handle(id)

	for row := range seqQueue {
		res, ok, err := adapter.Align(refHandle, queryHandle, row)
		if err != nil {
			params.Fatal("align.Pipeline.worker", "record %s: %v", row.QID, err)
		}
		if !ok {
			continue
		}
		p.progress.Add(uint64(row.QEnd - row.QStart))

		if p.cfg.SAMFormat {
			var qseq []byte
			if !p.cfg.NoSeqInSAM {
				qseq, _ = queryHandle.Fetch(row.QID, row.QStart, row.QEnd)
				if row.Strand == mapping.Reverse {
					qseq = dna.ReverseComplementCopy(qseq)
				}
			}
			rec, err := p.samEncoder.Encode(res, queryName(row, p.cfg.Split), qseq)
			if err != nil {
				params.Fatal("align.Pipeline.worker", "SAM encode %s: %v", row.QID, err)
			}
			outQueue <- output{sam: rec}
		} else {
			outQueue <- output{paf: mapping.EncodePAF(res)}
		}

		if tsvQueue != nil {
			tsvQueue <- fmt.Sprintf("%s\t%d\t%d\t%s\t%d\t%d\t%d\n", row.QID, row.QStart, row.QEnd, row.RID, row.RStart, row.REnd, res.NM)
		}
		if patchQueue != nil && res.Segments > 1 {
			patchQueue <- fmt.Sprintf("%s\t%d\t%d\t%s\t%d\t%d\t%d\n", row.QID, row.QStart, row.QEnd, row.RID, row.RStart, row.REnd, res.Segments)
		}
	}
}

func queryName(row mapping.BoundaryRow, split bool) string {
	if split && row.RankMapping != 0 {
		return fmt.Sprintf("%s_%d", row.QID, row.RankMapping)
	}
	return row.QID
}

func (p *Pipeline) writeOutput(outQueue <-chan output) error {
	f, err := os.OpenFile(p.cfg.PafOutputFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("align.Pipeline.writeOutput: %w", err)
	}
	defer f.Close()
	bw := bufio.NewWriterSize(f, 1<<20)
	defer bw.Flush()

	var samWriter *sam.Writer
	if p.cfg.SAMFormat {
		samWriter, err = sam.NewWriter(bw, p.samEncoder.Header(), 0)
		if err != nil {
			return fmt.Errorf("align.Pipeline.writeOutput: sam writer: %w", err)
		}
	}

	for o := range outQueue {
		if p.cfg.SAMFormat {
			if err := samWriter.Write(o.sam); err != nil {
				return fmt.Errorf("align.Pipeline.writeOutput: write SAM record: %w", err)
			}
			continue
		}
		if _, err := bw.WriteString(o.paf + "\n"); err != nil {
			return fmt.Errorf("align.Pipeline.writeOutput: write PAF line: %w", err)
		}
	}
	return bw.Flush()
}

func writeTSV(prefix string, tsvQueue <-chan string) error {
	n := 0
	for line := range tsvQueue {
		path := fmt.Sprintf("%s.%d.tsv", prefix, n)
		n++
		if err := os.WriteFile(path, []byte(line), 0o644); err != nil {
			return fmt.Errorf("align.writeTSV: %w", err)
		}
	}
	return nil
}

// writeAppendLines drains lines into a single file, one line per queue
// item. Used for the aggregate wflambda-segmentation patching-info
// side channel, as opposed to writeTSV's one-file-per-alignment layout.
func writeAppendLines(path string, lines <-chan string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("align.writeAppendLines: %w", err)
	}
	defer f.Close()
	bw := bufio.NewWriterSize(f, 1<<16)
	for line := range lines {
		if _, err := bw.WriteString(line); err != nil {
			return fmt.Errorf("align.writeAppendLines: %w", err)
		}
	}
	return bw.Flush()
}

func (p *Pipeline) readAndDispatch(seqQueue chan<- mapping.BoundaryRow) error {
	sc, closeAll, err := openMappingList(p.cfg.MashmapPafFile)
	if err != nil {
		return err
	}
	defer closeAll()

	ranks := make(map[string]int)
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		row, err := mapping.ParseRow(line)
		if err != nil {
			params.Fatal("align.Pipeline.readAndDispatch", "%v", err)
		}
		if p.cfg.Split {
			ranks[row.QID]++
			row.RankMapping = ranks[row.QID] - 1
		}
		seqQueue <- row
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("align.Pipeline.readAndDispatch: %w", err)
	}
	return nil
}

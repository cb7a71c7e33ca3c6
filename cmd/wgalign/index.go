package main

import (
	"log"
	"os"
	"strings"

	"github.com/jwaldrip/odin/cli"

	"github.com/mudesheng/wgalign/params"
	"github.com/mudesheng/wgalign/sketch"
)

func checkIndexArgs(c cli.Command) params.Parameters {
	var p params.Parameters
	var ok bool

	ref, ok := c.Flag("ref").Get().(string)
	if !ok || ref == "" {
		log.Fatalf("[checkIndexArgs] argument 'ref': must set at least one reference FASTA file\n")
	}
	p.RefSequences = splitCSV(ref)

	if targets, ok := c.Flag("targets").Get().(string); ok {
		p.TargetNames = splitCSV(targets)
	}

	p.KmerSize, ok = c.Flag("K").Get().(int)
	if !ok {
		log.Fatalf("[checkIndexArgs] argument 'K': set error\n")
	}
	p.SegLength, ok = c.Flag("SegLength").Get().(int)
	if !ok {
		log.Fatalf("[checkIndexArgs] argument 'SegLength': set error\n")
	}
	p.SketchSize, ok = c.Flag("SketchSize").Get().(int)
	if !ok || p.SketchSize < 1 {
		log.Fatalf("[checkIndexArgs] argument 'SketchSize': must be >= 1\n")
	}
	p.AlphabetSize, ok = c.Flag("AlphabetSize").Get().(int)
	if !ok {
		log.Fatalf("[checkIndexArgs] argument 'AlphabetSize': set error\n")
	}
	p.KmerPctThresh, ok = c.Flag("KmerPctThresh").Get().(float64)
	if !ok || p.KmerPctThresh <= 0 || p.KmerPctThresh > 100 {
		log.Fatalf("[checkIndexArgs] argument 'KmerPctThresh': must be in (0,100]\n")
	}

	p.IndexFilename, ok = c.Flag("o").Get().(string)
	if !ok || p.IndexFilename == "" {
		log.Fatalf("[checkIndexArgs] argument 'o': set error\n")
	}
	p.OverwriteIndex, _ = c.Flag("Overwrite").Get().(bool)
	p.CompressIndex, _ = c.Flag("Compress").Get().(bool)
	p.Threads, ok = c.Flag("t").Get().(int)
	if !ok || p.Threads < 1 {
		p.Threads = 1
	}
	p.DotDebugPath, _ = c.Flag("DotDebug").Get().(string)

	return p
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// runIndex builds and persists a reference minmer index from the
// command-line parameters, mirroring constructcf.CCF's checkArgs-then-run
// shape.
func runIndex(c cli.Command) {
	p := checkIndexArgs(c)

	if !p.OverwriteIndex {
		if _, err := os.Stat(p.IndexFilename); err == nil {
			log.Fatalf("[runIndex] index file %q already exists; pass -Overwrite to replace it\n", p.IndexFilename)
		}
	}

	idx := sketch.New(sketch.Params{
		KmerSize:      p.KmerSize,
		SegLength:     p.SegLength,
		SketchSize:    p.SketchSize,
		AlphabetSize:  p.AlphabetSize,
		KmerPctThresh: p.KmerPctThresh,
	})

	var targets map[string]bool
	if len(p.TargetNames) > 0 {
		targets = make(map[string]bool, len(p.TargetNames))
		for _, name := range p.TargetNames {
			targets[name] = true
		}
	}

	if err := sketch.Build(idx, p.RefSequences, targets, p.Threads); err != nil {
		log.Fatalf("[runIndex] build: %v\n", err)
	}

	idx.ComputeFreqHist()
	idx.ComputeFreqSeedSet()
	idx.DropFreqSeedSet()

	if p.DotDebugPath != "" {
		if err := sketch.WriteDebugDot(idx, 0, p.DotDebugPath); err != nil {
			log.Printf("[runIndex] debug dot dump: %v\n", err)
		}
	}

	if err := sketch.Write(idx, p.IndexFilename, p.CompressIndex); err != nil {
		log.Fatalf("[runIndex] write index: %v\n", err)
	}
	log.Printf("[runIndex] wrote index to %s (%d contig(s), %d window(s), freqThreshold=%d)\n",
		p.IndexFilename, len(idx.Contigs), len(idx.Windows), idx.FreqThreshold)
}

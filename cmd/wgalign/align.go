package main

import (
	"log"

	"github.com/jwaldrip/odin/cli"

	"github.com/mudesheng/wgalign/align"
	"github.com/mudesheng/wgalign/fastastore"
	"github.com/mudesheng/wgalign/params"
	"github.com/mudesheng/wgalign/wfa"
)

func checkAlignArgs(c cli.Command) params.Parameters {
	var p params.Parameters
	var ok bool

	refStr, ok := c.Flag("ref").Get().(string)
	if !ok || refStr == "" {
		log.Fatalf("[checkAlignArgs] argument 'ref': must set at least one reference FASTA file\n")
	}
	p.RefSequences = splitCSV(refStr)

	queryStr, ok := c.Flag("query").Get().(string)
	if !ok || queryStr == "" {
		log.Fatalf("[checkAlignArgs] argument 'query': must set at least one query FASTA file\n")
	}
	p.QuerySequences = splitCSV(queryStr)

	p.MashmapPafFile, ok = c.Flag("mappings").Get().(string)
	if !ok || p.MashmapPafFile == "" {
		log.Fatalf("[checkAlignArgs] argument 'mappings': set error\n")
	}
	p.PafOutputFile, ok = c.Flag("o").Get().(string)
	if !ok || p.PafOutputFile == "" {
		log.Fatalf("[checkAlignArgs] argument 'o': set error\n")
	}
	p.TSVOutputPrefix, _ = c.Flag("tsvPrefix").Get().(string)
	p.PatchingInfoTSV, _ = c.Flag("patchingTsv").Get().(string)

	p.Threads, ok = c.Flag("t").Get().(int)
	if !ok || p.Threads < 1 {
		p.Threads = 1
	}
	p.WflignMaxLenMinor, ok = c.Flag("WflignMaxLenMinor").Get().(int)
	if !ok || p.WflignMaxLenMinor < 0 {
		log.Fatalf("[checkAlignArgs] argument 'WflignMaxLenMinor': must be >= 0\n")
	}
	p.WflambdaSegmentLength, _ = c.Flag("WflambdaSegmentLength").Get().(int)
	p.MinIdentity, ok = c.Flag("MinIdentity").Get().(float64)
	if !ok || p.MinIdentity < 0 || p.MinIdentity > 100 {
		log.Fatalf("[checkAlignArgs] argument 'MinIdentity': must be in [0,100]\n")
	}
	p.WFAMismatchScore, _ = c.Flag("WFAMismatchScore").Get().(int)
	p.WFAGapOpeningScore, _ = c.Flag("WFAGapOpeningScore").Get().(int)
	p.WFAGapExtensionScore, _ = c.Flag("WFAGapExtensionScore").Get().(int)

	p.SAMFormat, _ = c.Flag("sam").Get().(bool)
	p.EmitMDTag, _ = c.Flag("EmitMDTag").Get().(bool)
	p.NoSeqInSAM, _ = c.Flag("NoSeqInSAM").Get().(bool)
	p.Split, _ = c.Flag("Split").Get().(bool)

	return p
}

// runAlign wires a fastastore.Pool per FASTA side, a wfa.WFAligner
// configured from the CLI's penalty flags, and an align.Pipeline, then
// blocks until every mapping line has been consumed and every output
// line written — mirroring deconstructdbg.DeconstructDBG's
// checkArgs-then-run shape.
func runAlign(c cli.Command) {
	p := checkAlignArgs(c)

	if len(p.RefSequences) != 1 || len(p.QuerySequences) != 1 {
		log.Fatalf("[runAlign] exactly one reference FASTA and one query FASTA are supported per run (got %d, %d)\n",
			len(p.RefSequences), len(p.QuerySequences))
	}

	refPool, err := fastastore.NewPool(p.RefSequences[0], p.Threads)
	if err != nil {
		log.Fatalf("[runAlign] open reference: %v\n", err)
	}
	defer refPool.Close()

	queryPool := refPool
	if p.QuerySequences[0] != p.RefSequences[0] {
		queryPool, err = fastastore.NewPool(p.QuerySequences[0], p.Threads)
		if err != nil {
			log.Fatalf("[runAlign] open query: %v\n", err)
		}
		defer queryPool.Close()
	}

	var contigLengths map[string]int
	if p.SAMFormat {
		contigLengths, err = fastastore.ContigLengths(p.RefSequences[0])
		if err != nil {
			log.Fatalf("[runAlign] contig lengths for SAM header: %v\n", err)
		}
	}

	aligner := wfa.New(
		wfa.Penalties{Mismatch: p.WFAMismatchScore, GapOpen: p.WFAGapOpeningScore, GapExt: p.WFAGapExtensionScore},
		wfa.DefaultOptions,
	)

	cfg := align.Config{
		Threads:               p.Threads,
		MashmapPafFile:        p.MashmapPafFile,
		PafOutputFile:         p.PafOutputFile,
		TSVOutputPrefix:       p.TSVOutputPrefix,
		PatchingInfoTSV:       p.PatchingInfoTSV,
		WflignMaxLenMinor:     p.WflignMaxLenMinor,
		WflambdaSegmentLength: p.WflambdaSegmentLength,
		MinIdentity:           p.MinIdentity,
		SAMFormat:             p.SAMFormat,
		EmitMDTag:             p.EmitMDTag,
		NoSeqInSAM:            p.NoSeqInSAM,
		Split:                 p.Split,
	}

	pipeline, err := align.New(cfg, aligner, refPool, queryPool, contigLengths)
	if err != nil {
		log.Fatalf("[runAlign] %v\n", err)
	}
	if err := pipeline.Run(); err != nil {
		log.Fatalf("[runAlign] %v\n", err)
	}
	log.Printf("[runAlign] done, %d bases of query aligned\n", pipeline.Progress())
}

// Command wgalign builds an approximate whole-genome sequence-mapping
// index and performs base-level alignment of long-read/assembly
// mappings against the reference FASTA, in two subcommands: index and
// align.
package main

import (
	"log"
	"net/http"
	_ "net/http/pprof"

	"github.com/jwaldrip/odin/cli"
)

var app = cli.New("1.0.0", "approximate whole-genome sequence aligner", func(c cli.Command) {})

func init() {
	go func() {
		log.Println(http.ListenAndServe("localhost:6091", nil))
	}()

	idx := app.DefineSubCommand("index", "build the reference minmer index", runIndex)
	{
		idx.DefineStringFlag("ref", "", "comma-separated reference FASTA file(s)")
		idx.DefineStringFlag("targets", "", "comma-separated sequence names to index; empty means every sequence")
		idx.DefineIntFlag("K", 16, "k-mer size")
		idx.DefineIntFlag("SegLength", 5000, "sliding-window length for minmer selection")
		idx.DefineIntFlag("SketchSize", 2, "bottom-s sketch size per window")
		idx.DefineIntFlag("AlphabetSize", 4, "alphabet size (4 for DNA)")
		idx.DefineFloat64Flag("KmerPctThresh", 0.1, "percent of distinct hashes, counted from the most frequent down, marked as frequent seeds")
		idx.DefineStringFlag("o", "ref.wgidx", "output index filename")
		idx.DefineBoolFlag("Overwrite", false, "overwrite an existing index file")
		idx.DefineBoolFlag("Compress", false, "wrap the on-disk index in brotli")
		idx.DefineIntFlag("t", 1, "number of worker goroutines")
		idx.DefineStringFlag("DotDebug", "", "write a debug dot graph of the first indexed sequence's windows to this path")
	}

	al := app.DefineSubCommand("align", "align mashmap-style candidate mappings against the reference FASTA", runAlign)
	{
		al.DefineStringFlag("ref", "", "comma-separated reference FASTA file(s) (must already be .fai-indexed)")
		al.DefineStringFlag("query", "", "comma-separated query FASTA file(s) (must already be .fai-indexed)")
		al.DefineStringFlag("mappings", "", "mashmap-style candidate mapping file, optionally .zst compressed")
		al.DefineStringFlag("o", "/dev/stdout", "output PAF/SAM file")
		al.DefineStringFlag("tsvPrefix", "", "prefix for per-alignment TSV side files; empty disables them")
		al.DefineStringFlag("patchingTsv", "", "path to append wflambda-segmentation patching-info TSV lines; empty disables it")
		al.DefineIntFlag("t", 1, "number of worker goroutines")
		al.DefineIntFlag("WflignMaxLenMinor", 512, "max reference flank padding around each candidate")
		al.DefineIntFlag("WflambdaSegmentLength", 0, "chunk alignments longer than this many query bases; 0 disables chunking")
		al.DefineFloat64Flag("MinIdentity", 0, "drop alignments below this percent identity")
		al.DefineIntFlag("WFAMismatchScore", 4, "wavefront aligner mismatch penalty")
		al.DefineIntFlag("WFAGapOpeningScore", 6, "wavefront aligner gap-opening penalty")
		al.DefineIntFlag("WFAGapExtensionScore", 2, "wavefront aligner gap-extension penalty")
		al.DefineBoolFlag("sam", false, "emit SAM instead of PAF")
		al.DefineBoolFlag("EmitMDTag", false, "emit an MD tag in SAM output")
		al.DefineBoolFlag("NoSeqInSAM", false, "omit SEQ in SAM output")
		al.DefineBoolFlag("Split", false, "assign distinct rank_mapping values to repeated queries")
	}
}

func main() {
	app.Start()
}

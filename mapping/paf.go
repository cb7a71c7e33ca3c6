package mapping

import "fmt"

// AlignmentResult is the outcome of aligning one BoundaryRow: enough to
// format either a PAF or a SAM line. CIGAR is in the ordinary PAF `cg:Z:`
// sense (length+operator pairs, e.g. "10M2I5M"); NumMatches/BlockLen are
// the PAF columns 10/11.
type AlignmentResult struct {
	Row AlignmentCoords

	NumMatches int
	BlockLen   int
	MapQ       int
	CIGAR      string
	NM         int // edit distance, for the NM tag/column

	QLen, RLen int // full sequence lengths, for PAF columns 2 and 7

	// Segments is > 1 when the aligner chunked this alignment into
	// wflambda_segment_length-sized pieces and stitched the results;
	// the pipeline's patching-info side channel reports on these.
	Segments int
}

// AlignmentCoords is the subset of BoundaryRow an encoder needs, kept
// separate so callers don't have to thread identity/rank fields that
// only the codec cares about.
type AlignmentCoords struct {
	QID    string
	QStart int
	QEnd   int
	Strand Strand
	RID    string
	RStart int
	REnd   int
}

// EncodePAF renders one AlignmentResult as a tab-delimited PAF line
// (no trailing newline), matching the original format spec.md §4.4
// describes as unchanged.
func EncodePAF(r AlignmentResult) string {
	return fmt.Sprintf("%s\t%d\t%d\t%d\t%c\t%s\t%d\t%d\t%d\t%d\t%d\t%d\tcg:Z:%s\tNM:i:%d",
		r.Row.QID, r.QLen, r.Row.QStart, r.Row.QEnd,
		byte(r.Row.Strand),
		r.Row.RID, r.RLen, r.Row.RStart, r.Row.REnd,
		r.NumMatches, r.BlockLen, r.MapQ,
		r.CIGAR, r.NM,
	)
}

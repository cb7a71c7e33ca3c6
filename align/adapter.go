package align

import (
	"fmt"
	"strings"

	"github.com/mudesheng/wgalign/dna"
	"github.com/mudesheng/wgalign/fastastore"
	"github.com/mudesheng/wgalign/mapping"
	"github.com/mudesheng/wgalign/wfa"
)

// Adapter wraps the black-box wavefront aligner: padding, strand
// handling, and case/DNA normalization, per spec.md §4.6's five steps.
// Resource discipline note (spec.md §4.6): in Go, the flanked reference
// buffer and any sub-slice view of it share one backing array, so there
// is no separate free to mismanage — the one discipline that *does*
// carry over is not retaining a sub-slice of a buffer the caller
// intends to discard, since that would keep the whole backing array
// alive.
type Adapter struct {
	Aligner           wfa.Aligner
	WflignMaxLenMinor int
	MinIdentity       float64

	// WflambdaSegmentLength, when > 0, caps how much query sequence is
	// handed to the aligner in one call: longer alignments are chunked
	// into this many bases each, aligned independently against a
	// proportionally-sized reference slice, and the resulting CIGARs
	// stitched back together. Zero disables chunking.
	WflambdaSegmentLength int
}

// Align performs one record's alignment: fetch flanked reference and
// (possibly reverse-complemented) query substrings, normalize, invoke
// the aligner, and return a formatted AlignmentResult. ok is false when
// the aligner's output falls below MinIdentity — treated as success
// with no output line, per spec.md §7.
func (a *Adapter) Align(refHandle, queryHandle *fastastore.Handle, row mapping.BoundaryRow) (mapping.AlignmentResult, bool, error) {
	refLen, ok := refHandle.SeqLength(row.RID)
	if !ok {
		return mapping.AlignmentResult{}, false, fmt.Errorf("align.Adapter: unknown reference contig %q", row.RID)
	}

	headPad := min(row.RStart, a.WflignMaxLenMinor)
	tailPad := min(refLen-row.REnd, a.WflignMaxLenMinor)

	refSeq, err := refHandle.Fetch(row.RID, row.RStart-headPad, row.REnd+tailPad)
	if err != nil {
		return mapping.AlignmentResult{}, false, fmt.Errorf("align.Adapter: fetch reference: %w", err)
	}
	querySeq, err := queryHandle.Fetch(row.QID, row.QStart, row.QEnd)
	if err != nil {
		return mapping.AlignmentResult{}, false, fmt.Errorf("align.Adapter: fetch query: %w", err)
	}

	if row.Strand == mapping.Reverse {
		querySeq = dna.ReverseComplementCopy(querySeq)
	}
	dna.MakeUpperCaseAndValidDNA(refSeq)
	dna.MakeUpperCaseAndValidDNA(querySeq)

	var res wfa.Result
	if a.WflambdaSegmentLength > 0 && len(querySeq) > a.WflambdaSegmentLength {
		res, err = a.alignSegmented(querySeq, refSeq)
	} else {
		res, err = a.Aligner.Align(querySeq, refSeq)
	}
	if err != nil {
		return mapping.AlignmentResult{}, false, fmt.Errorf("align.Adapter: aligner: %w", err)
	}

	total := res.Matches + res.Mismatches
	identity := 100.0
	if total > 0 {
		identity = 100.0 * float64(res.Matches) / float64(total)
	}
	if identity < a.MinIdentity {
		return mapping.AlignmentResult{}, false, nil
	}

	qLen, _ := queryHandle.SeqLength(row.QID)
	segments := 1
	if a.WflambdaSegmentLength > 0 && len(querySeq) > a.WflambdaSegmentLength {
		segments = (len(querySeq) + a.WflambdaSegmentLength - 1) / a.WflambdaSegmentLength
	}
	result := mapping.AlignmentResult{
		Row: mapping.AlignmentCoords{
			QID: row.QID, QStart: row.QStart, QEnd: row.QEnd, Strand: row.Strand,
			RID: row.RID, RStart: row.RStart, REnd: row.REnd,
		},
		NumMatches: res.Matches,
		BlockLen:   res.Matches + res.NM,
		MapQ:       255,
		CIGAR:      res.CIGAR,
		NM:         res.NM,
		QLen:       qLen,
		RLen:       refLen,
		Segments:   segments,
	}
	return result, true, nil
}

// alignSegmented splits query into WflambdaSegmentLength-sized chunks,
// aligns each against a proportionally-sized ref slice, and stitches
// the per-chunk CIGARs and tallies back into one Result. The ref split
// uses the same query/ref length ratio throughout, so the seam between
// two chunks can fall a few bases off the "true" boundary — acceptable
// here since each chunk still re-aligns its own small overlap-free
// slice exactly, and the padding already built into refSeq absorbs
// most of that slack.
func (a *Adapter) alignSegmented(query, ref []byte) (wfa.Result, error) {
	ratio := float64(len(ref)) / float64(len(query))
	var cigar strings.Builder
	var out wfa.Result

	for qStart := 0; qStart < len(query); qStart += a.WflambdaSegmentLength {
		qEnd := min(qStart+a.WflambdaSegmentLength, len(query))
		rStart := int(float64(qStart) * ratio)
		rEnd := min(int(float64(qEnd)*ratio), len(ref))
		if rStart >= rEnd {
			rEnd = min(rStart+1, len(ref))
		}

		chunk, err := a.Aligner.Align(query[qStart:qEnd], ref[rStart:rEnd])
		if err != nil {
			return wfa.Result{}, fmt.Errorf("align.Adapter.alignSegmented: chunk [%d,%d): %w", qStart, qEnd, err)
		}
		cigar.WriteString(chunk.CIGAR)
		out.Score += chunk.Score
		out.Matches += chunk.Matches
		out.Mismatches += chunk.Mismatches
		out.NM += chunk.NM
	}
	out.CIGAR = cigar.String()
	return out, nil
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

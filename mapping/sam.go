package mapping

import (
	"fmt"
	"strings"

	"github.com/biogo/hts/sam"
)

// SAMEncoder builds sam.Record values from AlignmentResults, honoring
// emit_md_tag and no_seq_in_sam. It owns the sam.Header (one Reference
// per contig, built once from the FastaStore's contig metadata),
// grounded on the teacher's own github.com/biogo/hts/sam dependency
// (previously used read-only in bam.go/findPath.go; this is the same
// package used to write).
type SAMEncoder struct {
	header     *sam.Header
	refs       map[string]*sam.Reference
	emitMD     bool
	noSeqInSAM bool
}

// NewSAMEncoder builds a header with one Reference per contig.
func NewSAMEncoder(contigs map[string]int, emitMD, noSeqInSAM bool) (*SAMEncoder, error) {
	h, err := sam.NewHeader(nil, nil)
	if err != nil {
		return nil, fmt.Errorf("mapping.NewSAMEncoder: %w", err)
	}
	refs := make(map[string]*sam.Reference, len(contigs))
	for name, length := range contigs {
		ref, err := sam.NewReference(name, "", "", length, nil, nil)
		if err != nil {
			return nil, fmt.Errorf("mapping.NewSAMEncoder: reference %q: %w", name, err)
		}
		if err := h.AddReference(ref); err != nil {
			return nil, fmt.Errorf("mapping.NewSAMEncoder: add reference %q: %w", name, err)
		}
		refs[name] = ref
	}
	return &SAMEncoder{header: h, refs: refs, emitMD: emitMD, noSeqInSAM: noSeqInSAM}, nil
}

// Header returns the encoder's sam.Header, for use by a sam.Writer.
func (e *SAMEncoder) Header() *sam.Header { return e.header }

// Encode builds a *sam.Record for r. querySeq is the (already
// strand-normalized) query sequence; pass nil when no_seq_in_sam is
// set or the caller doesn't have it handy, and the record's SEQ field
// is written as "*".
func (e *SAMEncoder) Encode(r AlignmentResult, queryName string, querySeq []byte) (*sam.Record, error) {
	ref, ok := e.refs[r.Row.RID]
	if !ok {
		return nil, fmt.Errorf("mapping.SAMEncoder.Encode: unknown reference %q", r.Row.RID)
	}

	cigar, err := buildCigar(r.CIGAR)
	if err != nil {
		return nil, fmt.Errorf("mapping.SAMEncoder.Encode: %w", err)
	}

	var seq []byte
	if !e.noSeqInSAM {
		seq = querySeq
	}

	rec, err := sam.NewRecord(queryName, ref, nil, r.Row.RStart, -1, 0, byte(r.MapQ), cigar, seq, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("mapping.SAMEncoder.Encode: %w", err)
	}
	if r.Row.Strand == Reverse {
		rec.Flags |= sam.Reverse
	}

	nmAux, err := sam.NewAux(sam.Tag{'N', 'M'}, r.NM)
	if err != nil {
		return nil, fmt.Errorf("mapping.SAMEncoder.Encode: NM tag: %w", err)
	}
	rec.AuxFields = append(rec.AuxFields, nmAux)

	if e.emitMD {
		md := computeMDTag(r.CIGAR)
		mdAux, err := sam.NewAux(sam.Tag{'M', 'D'}, md)
		if err != nil {
			return nil, fmt.Errorf("mapping.SAMEncoder.Encode: MD tag: %w", err)
		}
		rec.AuxFields = append(rec.AuxFields, mdAux)
	}

	return rec, nil
}

// buildCigar parses a PAF-style "10M2I5M" CIGAR string into sam.Cigar.
func buildCigar(s string) (sam.Cigar, error) {
	if s == "" {
		return nil, nil
	}
	var ops sam.Cigar
	num := 0
	have := false
	for _, c := range s {
		if c >= '0' && c <= '9' {
			num = num*10 + int(c-'0')
			have = true
			continue
		}
		if !have {
			return nil, fmt.Errorf("malformed cigar %q", s)
		}
		t, err := cigarOpType(byte(c))
		if err != nil {
			return nil, err
		}
		ops = append(ops, sam.NewCigarOp(t, num))
		num, have = 0, false
	}
	if have {
		return nil, fmt.Errorf("malformed cigar %q: trailing length with no operator", s)
	}
	return ops, nil
}

func cigarOpType(c byte) (sam.CigarOpType, error) {
	switch c {
	case 'M':
		return sam.CigarMatch, nil
	case 'I':
		return sam.CigarInsertion, nil
	case 'D':
		return sam.CigarDeletion, nil
	case 'N':
		return sam.CigarSkipped, nil
	case 'S':
		return sam.CigarSoftClipped, nil
	case 'H':
		return sam.CigarHardClipped, nil
	case '=':
		return sam.CigarEqual, nil
	case 'X':
		return sam.CigarMismatch, nil
	default:
		return 0, fmt.Errorf("unsupported cigar operator %q", c)
	}
}

// computeMDTag derives a minimal MD string from a CIGAR alone — every
// M run is reported as one run of matches (no per-base mismatch
// detail, since that needs the reference/query bases which the CIGAR
// string alone doesn't carry). Good enough for tools that only check
// MD presence/span, not full mismatch fidelity.
func computeMDTag(cigarStr string) string {
	ops, err := buildCigar(cigarStr)
	if err != nil {
		return "0"
	}
	var b strings.Builder
	matchRun := 0
	for _, op := range ops {
		switch op.Type() {
		case sam.CigarMatch, sam.CigarEqual, sam.CigarMismatch:
			matchRun += op.Len()
		case sam.CigarDeletion:
			fmt.Fprintf(&b, "%d", matchRun)
			matchRun = 0
			b.WriteByte('^')
			for i := 0; i < op.Len(); i++ {
				b.WriteByte('N')
			}
		}
	}
	fmt.Fprintf(&b, "%d", matchRun)
	return b.String()
}

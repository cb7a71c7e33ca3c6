// Package mapping parses mashmap-style candidate mapping lines into
// typed records and formats the resulting alignments as PAF or SAM.
//
// Grounded on computeAlignments.hpp's parseMashmapRow (spec.md §4.4)
// for the field mapping and malformed-line policy.
package mapping

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mudesheng/wgalign/params"
)

// Strand is the mapping orientation, '+' forward or '-' reverse.
type Strand byte

const (
	Forward Strand = '+'
	Reverse Strand = '-'
)

// BoundaryRow is one parsed candidate mapping interval — spec.md's
// MappingBoundaryRow. Positions are 0-based half-open.
type BoundaryRow struct {
	QID      string
	QStart   int
	QEnd     int
	Strand   Strand
	RID      string
	RStart   int
	REnd     int
	Identity float64

	// RankMapping distinguishes multiple split-alignment records for
	// the same query in SAM output; assigned by the pipeline, not by
	// ParseRow, since it depends on grouping across lines.
	RankMapping int
}

const minFields = 13

// ParseRow parses one whitespace-delimited mashmap mapping line per
// spec.md §4.4's column mapping. Any malformed line is a fatal
// configuration/input error — the caller is expected to have the
// process exit, matching spec.md §7's "malformed mapping line" entry.
func ParseRow(line string) (BoundaryRow, error) {
	tokens := strings.Fields(line)
	if len(tokens) < minFields {
		return BoundaryRow{}, fmt.Errorf("mapping.ParseRow: need >= %d fields, got %d: %q", minFields, len(tokens), line)
	}

	var row BoundaryRow
	row.QID = tokens[0]

	qStart, err := strconv.Atoi(tokens[2])
	if err != nil {
		return BoundaryRow{}, fmt.Errorf("mapping.ParseRow: qStart: %w", err)
	}
	qEnd, err := strconv.Atoi(tokens[3])
	if err != nil {
		return BoundaryRow{}, fmt.Errorf("mapping.ParseRow: qEnd: %w", err)
	}
	row.QStart, row.QEnd = qStart, qEnd

	switch tokens[4] {
	case "+":
		row.Strand = Forward
	case "-":
		row.Strand = Reverse
	default:
		return BoundaryRow{}, fmt.Errorf("mapping.ParseRow: strand must be + or -, got %q", tokens[4])
	}

	row.RID = tokens[5]

	rStart, err := strconv.Atoi(tokens[7])
	if err != nil {
		return BoundaryRow{}, fmt.Errorf("mapping.ParseRow: rStart: %w", err)
	}
	rEnd, err := strconv.Atoi(tokens[8])
	if err != nil {
		return BoundaryRow{}, fmt.Errorf("mapping.ParseRow: rEnd: %w", err)
	}
	row.RStart, row.REnd = rStart, rEnd

	idFields := strings.Split(tokens[12], ":")
	last := idFields[len(idFields)-1]
	if id, err := strconv.ParseFloat(last, 64); err == nil {
		row.Identity = id
	} else {
		row.Identity = params.FixedPercentageIdentity
	}

	return row, nil
}

package mapping

import (
	"strings"
	"testing"
)

func exampleResult() AlignmentResult {
	return AlignmentResult{
		Row: AlignmentCoords{
			QID: "q1", QStart: 0, QEnd: 100, Strand: Forward,
			RID: "r1", RStart: 0, REnd: 100,
		},
		NumMatches: 100,
		BlockLen:   100,
		MapQ:       60,
		CIGAR:      "100M",
		NM:         0,
		QLen:       100,
		RLen:       100,
	}
}

func TestEncodePAFHasTwelveCoreFields(t *testing.T) {
	line := EncodePAF(exampleResult())
	fields := strings.Split(line, "\t")
	if len(fields) < 12 {
		t.Fatalf("PAF line has too few fields: %q", line)
	}
	if fields[0] != "q1" || fields[5] != "r1" {
		t.Fatalf("unexpected qname/rname: %+v", fields[:6])
	}
}

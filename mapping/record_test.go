package mapping

import "testing"

func sampleLine(idField string) string {
	return "q1 qlen 10 100 + r1 rlen 50 140 1234 90 255 " + idField
}

func TestParseRowBasic(t *testing.T) {
	row, err := ParseRow(sampleLine("id:f1:95.5"))
	if err != nil {
		t.Fatal(err)
	}
	if row.QID != "q1" || row.QStart != 10 || row.QEnd != 100 {
		t.Fatalf("unexpected query fields: %+v", row)
	}
	if row.Strand != Forward {
		t.Fatalf("expected forward strand, got %c", row.Strand)
	}
	if row.RID != "r1" || row.RStart != 50 || row.REnd != 140 {
		t.Fatalf("unexpected ref fields: %+v", row)
	}
	if row.Identity != 95.5 {
		t.Fatalf("expected identity 95.5, got %v", row.Identity)
	}
}

func TestParseRowNonNumericIdentityFallsBack(t *testing.T) {
	row, err := ParseRow(sampleLine("id:f1:notanumber"))
	if err != nil {
		t.Fatal(err)
	}
	if row.Identity != 95.0 {
		t.Fatalf("expected fixed fallback identity 95.0, got %v", row.Identity)
	}
}

func TestParseRowTooFewFields(t *testing.T) {
	if _, err := ParseRow("only a few tokens here"); err == nil {
		t.Fatalf("expected an error for a malformed line")
	}
}

func TestParseRowBadStrand(t *testing.T) {
	line := "q1 qlen 10 100 X r1 rlen 50 140 1234 90 255 id:f1:95"
	if _, err := ParseRow(line); err == nil {
		t.Fatalf("expected an error for an invalid strand token")
	}
}

package sales

import (
	"bytes"
	"testing"
)

func TestGenerateRoundTripsThroughLoader(t *testing.T) {
	opt := DefaultGenerateOptions()
	opt.Rows = 500
	opt.Regions = true
	opt.Seed = 7

	var buf bytes.Buffer
	if err := Generate(&buf, opt); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	tbl, err := LoadReader(bytes.NewReader(buf.Bytes()), "gen.csv", LoadOptions{})
	if err != nil {
		t.Fatalf("LoadReader: %v", err)
	}
	if tbl.Len() != 500 || tbl.Skipped != 0 {
		t.Fatalf("rows=%d skipped=%d", tbl.Len(), tbl.Skipped)
	}
	if !tbl.HasAnomaly || !tbl.HasRegion {
		t.Fatalf("generated header should carry Anomaly and Region")
	}
	if n := len(tbl.Anomalies()); n == 0 || n > 100 {
		t.Fatalf("implausible anomaly count %d", n)
	}

	var again bytes.Buffer
	if err := Generate(&again, opt); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !bytes.Equal(buf.Bytes(), again.Bytes()) {
		t.Fatalf("same seed should produce identical output")
	}
}

func TestGenerateRejectsZeroRows(t *testing.T) {
	if err := Generate(&bytes.Buffer{}, GenerateOptions{}); err == nil {
		t.Fatalf("expected error for zero rows")
	}
}

package fh

import (
	"strings"
	"testing"
)

const sampleFile = `HEADER:
KeyCode=TRS_01
DateBegin=1401
DateEnd=1465
Species=QUSP
DATA:Single
 120  98 105 110  87  93 101  99 104  96
  88  91  95 102 100   0
HEADER:
keycode=TRS_02
dateend=1480
DATA:Tree
 75 80 85 0
`

func TestRead(t *testing.T) {
	series, err := Read(strings.NewReader(sampleFile))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(series) != 2 {
		t.Fatalf("parsed %d series, want 2", len(series))
	}

	first := series[0]
	if first.KeyCode != "TRS_01" || first.Kind != "single" {
		t.Errorf("first series = %s (%s)", first.KeyCode, first.Kind)
	}
	if first.Begin != 1401 || first.End != 1465 {
		t.Errorf("first series span = %d..%d", first.Begin, first.End)
	}
	if len(first.Widths) != 14 {
		t.Errorf("first series has %d widths, want 14", len(first.Widths))
	}
	if first.Widths[0] != 1.20 {
		t.Errorf("widths are in 1/100 mm: got %v, want 1.20", first.Widths[0])
	}
	if first.Fields["species"] != "QUSP" {
		t.Errorf("extra field species = %q", first.Fields["species"])
	}

	second := series[1]
	if second.KeyCode != "TRS_02" || second.Kind != "tree" {
		t.Errorf("second series = %s (%s)", second.KeyCode, second.Kind)
	}
	if second.Begin != 0 || second.End != 1480 {
		t.Errorf("second series span = %d..%d", second.Begin, second.End)
	}
	if len(second.Widths) != 3 {
		t.Errorf("second series has %d widths, want 3", len(second.Widths))
	}
}

func TestRead_MissingKeyCodeGetsGenerated(t *testing.T) {
	series, err := Read(strings.NewReader("HEADER:\nDateEnd=1500\nDATA:Single\n10 20 0\n"))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if series[0].KeyCode != "series_1" {
		t.Errorf("generated key code = %q", series[0].KeyCode)
	}
}

func TestRead_Errors(t *testing.T) {
	cases := []struct {
		name  string
		input string
	}{
		{"data before header", "DATA:Single\n10 20 0\n"},
		{"unknown data kind", "HEADER:\nKeyCode=x\nDATA:Pentuple\n10 0\n"},
		{"field outside header", "Species=QUSP\n"},
		{"malformed field", "HEADER:\nno equals sign here\nDATA:Single\n10 0\n"},
		{"non-integer width", "HEADER:\nKeyCode=x\nDATA:Single\n10 twelve 0\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Read(strings.NewReader(tc.input)); err == nil {
				t.Error("expected parse error")
			}
		})
	}
}

func TestWriteCSV(t *testing.T) {
	series := []RingSeries{
		{KeyCode: "TRS_01", Kind: "single", Begin: 1401, Widths: []float64{1.2, 0.98}},
		{KeyCode: "UNDATED", Kind: "single", Widths: []float64{0.75}},
	}
	var sb strings.Builder
	if err := WriteCSV(&sb, series); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	out := sb.String()
	for _, want := range []string{"# TRS_01 (single)", "1401,1.20", "1402,0.98", "# UNDATED (single)", "1,0.75"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

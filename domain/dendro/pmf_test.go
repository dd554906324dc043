package dendro

import (
	"math"
	"testing"
)

func TestNormalize(t *testing.T) {
	p := FellingDatePMF{Entries: []PMFEntry{
		{Year: 1500, Prob: 2},
		{Year: 1501, Prob: 6},
	}}
	n := p.Normalize()
	if got := n.Sum(); math.Abs(got-1) > 1e-12 {
		t.Fatalf("normalized sum = %v, want 1", got)
	}
	if n.Entries[1].Prob != 0.75 {
		t.Errorf("entry prob = %v, want 0.75", n.Entries[1].Prob)
	}
	// Zero mass stays untouched.
	z := FellingDatePMF{Entries: []PMFEntry{{Year: 1500, Prob: 0}}}
	if got := z.Normalize().Sum(); got != 0 {
		t.Errorf("zero-mass normalize sum = %v, want 0", got)
	}
}

func TestTruncate(t *testing.T) {
	p := FellingDatePMF{Entries: []PMFEntry{
		{Year: 1499, Prob: 1e-9},
		{Year: 1500, Prob: 0.5},
		{Year: 1501, Prob: 0.5},
		{Year: 1502, Prob: 1e-8},
	}}
	trimmed := p.Truncate(1e-7)
	if len(trimmed.Entries) != 2 {
		t.Fatalf("kept %d entries, want 2", len(trimmed.Entries))
	}
	if trimmed.Entries[0].Year != 1500 || trimmed.Entries[1].Year != 1501 {
		t.Errorf("kept years %d, %d", trimmed.Entries[0].Year, trimmed.Entries[1].Year)
	}
}

func TestMode(t *testing.T) {
	p := FellingDatePMF{Entries: []PMFEntry{
		{Year: 1500, Prob: 0.2},
		{Year: 1501, Prob: 0.4},
		{Year: 1502, Prob: 0.4},
	}}
	year, ok := p.Mode()
	if !ok || year != 1501 {
		t.Errorf("mode = %d (ok=%v), want earliest tied year 1501", year, ok)
	}
	if _, ok := (FellingDatePMF{}).Mode(); ok {
		t.Error("empty PMF reported a mode")
	}
}

func TestProbAt(t *testing.T) {
	p := PointMass("s", 1650)
	if got := p.ProbAt(1650); got != 1 {
		t.Errorf("ProbAt(1650) = %v, want 1", got)
	}
	if got := p.ProbAt(1651); got != 0 {
		t.Errorf("ProbAt(1651) = %v, want 0", got)
	}
}

func TestStepMass(t *testing.T) {
	p := StepMass("s", 1480, 1484)
	if len(p.Entries) != 5 {
		t.Fatalf("step has %d entries, want 5", len(p.Entries))
	}
	for _, e := range p.Entries {
		if e.Prob != 0.2 {
			t.Errorf("year %d prob = %v, want 0.2", e.Year, e.Prob)
		}
	}
	// Inverted bounds collapse to a single year.
	single := StepMass("s", 1500, 1490)
	if len(single.Entries) != 1 || single.Entries[0].Year != 1500 {
		t.Errorf("inverted step = %+v", single.Entries)
	}
}

func TestUnionAxis(t *testing.T) {
	axis, ok := UnionAxis([]FellingDatePMF{
		PointMass("a", 1490),
		StepMass("b", 1494, 1497),
	})
	if !ok {
		t.Fatal("no axis from non-empty PMFs")
	}
	if axis[0] != 1490 || axis[len(axis)-1] != 1497 || len(axis) != 8 {
		t.Errorf("axis = %v", axis)
	}

	if _, ok := UnionAxis(nil); ok {
		t.Error("empty input produced an axis")
	}
	if _, ok := UnionAxis([]FellingDatePMF{{}}); ok {
		t.Error("empty PMF produced an axis")
	}
}

func TestAligned(t *testing.T) {
	p := FellingDatePMF{Entries: []PMFEntry{
		{Year: 1501, Prob: 0.7},
		{Year: 1502, Prob: 0.3},
	}}
	got := p.Aligned([]int{1500, 1501, 1502, 1503})
	want := []float64{0, 0.7, 0.3, 0}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("aligned[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

package ions

import (
	"math"
	"testing"

	"github.com/jkoedam/seqcover/internal/mass"
)

func mustSeq(t *testing.T, pep string) mass.Sequence {
	t.Helper()
	seq, err := mass.ParseSequence(pep, nil)
	if err != nil {
		t.Fatal(err)
	}
	return seq
}

func TestConcreteIonMz(t *testing.T) {
	seq := mustSeq(t, "PEPTIDE")
	sch, err := NewScheme([]string{"b", "y"}, 1, nil)
	if err != nil {
		t.Fatal(err)
	}

	var b1, y1 Candidate
	for _, c := range sch.Candidates() {
		if c.Prefix() {
			b1 = c
		} else {
			y1 = c
		}
	}
	if b1 == nil || y1 == nil {
		t.Fatal("expected one b and one y candidate")
	}

	// b2 of PEPTIDE (PE): 227.1026
	ionsB := b1.Ions(seq.Composition(0, 2), 2)
	if len(ionsB) != 1 {
		t.Fatalf("b candidate without losses expanded to %d ions", len(ionsB))
	}
	if math.Abs(ionsB[0].Mz-227.1026) > 1e-3 {
		t.Errorf("b2 m/z = %f, want 227.1026", ionsB[0].Mz)
	}
	if ionsB[0].Name != "b2" {
		t.Errorf("b2 name = %q", ionsB[0].Name)
	}

	// y3 of PEPTIDE (IDE): 376.1714
	ionsY := y1.Ions(seq.Composition(4, 7), 3)
	if math.Abs(ionsY[0].Mz-376.1714) > 1e-3 {
		t.Errorf("y3 m/z = %f, want 376.1714", ionsY[0].Mz)
	}
	if ionsY[0].Name != "y3" {
		t.Errorf("y3 name = %q", ionsY[0].Name)
	}
}

func TestLossVariants(t *testing.T) {
	seq := mustSeq(t, "PEPTIDE")
	sch, err := NewScheme([]string{"y"}, 1, []Loss{LossWater, LossAmmonia})
	if err != nil {
		t.Fatal(err)
	}
	c := sch.Candidates()[0]
	out := c.Ions(seq.Composition(4, 7), 3)
	if len(out) != 3 {
		t.Fatalf("expected 3 loss variants, got %d", len(out))
	}
	// No-loss variant comes first
	if out[0].Name != "y3" || out[1].Name != "y3-H2O" || out[2].Name != "y3-NH3" {
		t.Errorf("variant names = %q, %q, %q", out[0].Name, out[1].Name, out[2].Name)
	}
	if math.Abs((out[0].Mz-out[1].Mz)-18.0106/1.0) > 1e-3 {
		t.Errorf("water loss delta = %f, want 18.0106", out[0].Mz-out[1].Mz)
	}
}

func TestChargeExpansion(t *testing.T) {
	sch, err := NewScheme([]string{"b", "y"}, 3, nil)
	if err != nil {
		t.Fatal(err)
	}
	if n := len(sch.Candidates()); n != 6 {
		t.Errorf("2 series x 3 charges should give 6 candidates, got %d", n)
	}
	seq := mustSeq(t, "PEPTIDE")
	for _, c := range sch.Candidates() {
		ion := c.Ions(seq.Composition(0, 2), 2)[0]
		if ion.Charge != c.Charge() {
			t.Errorf("ion charge %d != candidate charge %d", ion.Charge, c.Charge())
		}
	}
}

func TestComplementarySeries(t *testing.T) {
	// b_i + y_(n-i) must sum to precursor + 2 protons (for 1+ fragments)
	seq := mustSeq(t, "PEPTIDE")
	sch, _ := NewScheme([]string{"b", "y"}, 1, nil)
	var b, y Candidate
	for _, c := range sch.Candidates() {
		if c.Prefix() {
			b = c
		} else {
			y = c
		}
	}
	precursor := seq.Mass() + 2*mass.MassProton
	for clv := 1; clv < len(seq); clv++ {
		bMz := b.Ions(seq.Composition(0, clv), clv)[0].Mz
		yMz := y.Ions(seq.Composition(clv, len(seq)), len(seq)-clv)[0].Mz
		if math.Abs(bMz+yMz-precursor) > 1e-6 {
			t.Errorf("clv %d: b+y = %f, want %f", clv, bMz+yMz, precursor)
		}
	}
}

func TestNewSchemeErrors(t *testing.T) {
	if _, err := NewScheme([]string{"q"}, 1, nil); err == nil {
		t.Error("expected error for unknown series")
	}
	if _, err := NewScheme([]string{"b"}, 0, nil); err == nil {
		t.Error("expected error for zero max charge")
	}
	if _, err := NewScheme(nil, 1, nil); err == nil {
		t.Error("expected error for empty series list")
	}
}

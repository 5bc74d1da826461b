package config

import (
	"testing"

	"github.com/spf13/viper"

	"github.com/jkoedam/seqcover/internal/mass"
)

func TestNewDefaults(t *testing.T) {
	viper.Reset()
	SetDefaults()

	c, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := c.Match.IonTypes; len(got) != 2 || got[0] != "b" || got[1] != "y" {
		t.Errorf("default ion types = %v, want [b y]", got)
	}
	if c.Match.Tolerance != "20ppm" {
		t.Errorf("default tolerance = %q, want 20ppm", c.Match.Tolerance)
	}
	if c.Match.MaxFragmentCharge != 1 {
		t.Errorf("default max fragment charge = %d, want 1", c.Match.MaxFragmentCharge)
	}
	if c.Filter.MaxQValue != 1.0 {
		t.Errorf("default max q-value = %f, want 1.0", c.Filter.MaxQValue)
	}
	if c.Run.Workers != 0 {
		t.Errorf("default workers = %d, want 0", c.Run.Workers)
	}
}

func TestNewOverrides(t *testing.T) {
	viper.Reset()
	SetDefaults()
	viper.Set("match.ion-types", []string{"b", "y", "c", "z"})
	viper.Set("match.neutral-losses", []string{"H2O", "NH3"})
	viper.Set("match.tolerance", "0.02Da")
	viper.Set("match.max-fragment-charge", 2)
	viper.Set("filter.max-qvalue", 0.01)

	c, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if len(c.Match.IonTypes) != 4 {
		t.Errorf("ion types = %v, want 4 series", c.Match.IonTypes)
	}

	sch, err := c.Match.Scheme()
	if err != nil {
		t.Fatalf("Scheme: %v", err)
	}
	// 4 series, 2 charges, 3 loss variants each (none, H2O, NH3)
	if got := len(sch.Candidates()); got != 8 {
		t.Errorf("got %d candidates, want 8", got)
	}

	tol, err := c.Match.MassTolerance()
	if err != nil {
		t.Fatalf("MassTolerance: %v", err)
	}
	if tol.Unit != mass.Dalton || tol.Value != 0.02 {
		t.Errorf("tolerance = %v, want 0.02 Da", tol)
	}
}

func TestSchemeRejectsUnknownSettings(t *testing.T) {
	m := MatchConfig{IonTypes: []string{"b", "q"}, MaxFragmentCharge: 1}
	if _, err := m.Scheme(); err == nil {
		t.Error("unknown ion series accepted")
	}

	m = MatchConfig{IonTypes: []string{"b"}, NeutralLosses: []string{"CO2"}, MaxFragmentCharge: 1}
	if _, err := m.Scheme(); err == nil {
		t.Error("unknown neutral loss accepted")
	}

	m = MatchConfig{IonTypes: []string{"b"}, Tolerance: "fast"}
	if _, err := m.MassTolerance(); err == nil {
		t.Error("malformed tolerance accepted")
	}
}

package mass

import (
	"fmt"
	"strconv"
	"strings"
)

// ToleranceUnit selects how a Tolerance value is interpreted.
type ToleranceUnit int

const (
	// PPM is a relative tolerance in parts per million.
	PPM ToleranceUnit = iota
	// Dalton is an absolute tolerance in mass units.
	Dalton
)

// Tolerance is a symmetric mass-error window around an m/z value.
type Tolerance struct {
	Value float64
	Unit  ToleranceUnit
}

// NewTolerance returns a Tolerance, rejecting negative values.
func NewTolerance(value float64, unit ToleranceUnit) (Tolerance, error) {
	if value < 0 {
		return Tolerance{}, fmt.Errorf("tolerance must be >= 0, got %g", value)
	}
	return Tolerance{Value: value, Unit: unit}, nil
}

// ParseTolerance parses strings like "20ppm", "10 ppm" or "0.5Da".
func ParseTolerance(s string) (Tolerance, error) {
	t := strings.TrimSpace(strings.ToLower(s))
	var unit ToleranceUnit
	var num string
	switch {
	case strings.HasSuffix(t, "ppm"):
		unit = PPM
		num = strings.TrimSpace(strings.TrimSuffix(t, "ppm"))
	case strings.HasSuffix(t, "da"):
		unit = Dalton
		num = strings.TrimSpace(strings.TrimSuffix(t, "da"))
	default:
		return Tolerance{}, fmt.Errorf("tolerance %q: unit must be ppm or Da", s)
	}
	v, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return Tolerance{}, fmt.Errorf("tolerance %q: %w", s, err)
	}
	return NewTolerance(v, unit)
}

// Delta returns the absolute mass window half-width at the given m/z.
func (t Tolerance) Delta(mz float64) float64 {
	if t.Unit == PPM {
		return t.Value * mz / 1e6
	}
	return t.Value
}

// Window returns the inclusive m/z interval [lo, hi] around mz.
func (t Tolerance) Window(mz float64) (lo, hi float64) {
	d := t.Delta(mz)
	return mz - d, mz + d
}

func (t Tolerance) String() string {
	if t.Unit == PPM {
		return fmt.Sprintf("%gppm", t.Value)
	}
	return fmt.Sprintf("%gDa", t.Value)
}

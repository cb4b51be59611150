package align

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats/scalar"

	perr "github.com/ChrisMcGann/pepform/pkg/errors"
)

// Unit is the unit of a Tolerance.
type Unit uint8

const (
	PPM Unit = iota
	Dalton
)

// Tolerance is the window within which two masses count as equal.
type Tolerance struct {
	Value float64
	Unit  Unit
}

// Ppm creates a relative tolerance in parts per million.
func Ppm(v float64) Tolerance { return Tolerance{Value: v, Unit: PPM} }

// Da creates an absolute tolerance in dalton.
func Da(v float64) Tolerance { return Tolerance{Value: v, Unit: Dalton} }

// ParseTolerance parses "<value> ppm" or "<value> da", with or without the
// space.
func ParseTolerance(s string) (Tolerance, error) {
	lower := strings.ToLower(strings.TrimSpace(s))
	var unit Unit
	switch {
	case strings.HasSuffix(lower, "ppm"):
		unit, lower = PPM, strings.TrimSuffix(lower, "ppm")
	case strings.HasSuffix(lower, "da"):
		unit, lower = Dalton, strings.TrimSuffix(lower, "da")
	default:
		return Tolerance{}, perr.Syntax("Invalid tolerance", "expected a value followed by ppm or da", perr.Full(s))
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(lower), 64)
	if err != nil || v < 0 || math.IsNaN(v) {
		return Tolerance{}, perr.Syntax("Invalid tolerance", "expected a non negative number", perr.Full(s))
	}
	return Tolerance{Value: v, Unit: unit}, nil
}

func (t Tolerance) String() string {
	if t.Unit == Dalton {
		return fmt.Sprintf("%g da", t.Value)
	}
	return fmt.Sprintf("%g ppm", t.Value)
}

// Window returns the absolute window around mass.
func (t Tolerance) Window(mass float64) float64 {
	if t.Unit == Dalton {
		return t.Value
	}
	return math.Abs(mass) * t.Value * 1e-6
}

// Within reports whether b lies within the tolerance of a.
func (t Tolerance) Within(a, b float64) bool {
	return scalar.EqualWithinAbs(a, b, t.Window(a))
}

// AnyWithin reports whether any pair of alternatives is within tolerance.
func (t Tolerance) AnyWithin(a, b []float64) bool {
	for _, x := range a {
		for _, y := range b {
			if t.Within(x, y) {
				return true
			}
		}
	}
	return false
}

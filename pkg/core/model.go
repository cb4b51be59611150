package core

import (
	"fmt"
	"strings"
)

type locationKind uint8

const (
	locNone locationKind = iota
	locAll
	locSkipN
	locSkipC
	locSkipNC
	locTakeN
	locTakeC
)

// Location selects the residue indices at which an ion series is
// generated. The zero Location generates nothing.
type Location struct {
	kind locationKind
	a, b int
}

// Location values without parameters.
var (
	LocationAll  = Location{kind: locAll}
	LocationNone = Location{kind: locNone}
)

// SkipN generates at every index except the first n.
func SkipN(n int) Location { return Location{kind: locSkipN, a: n} }

// SkipC generates at every index except the last n.
func SkipC(n int) Location { return Location{kind: locSkipC, a: n} }

// SkipNC skips the first n and the last c indices.
func SkipNC(n, c int) Location { return Location{kind: locSkipNC, a: n, b: c} }

// TakeN skips the first skip indices and then generates at take indices.
func TakeN(skip, take int) Location { return Location{kind: locTakeN, a: skip, b: take} }

// TakeC generates only at the last n indices.
func TakeC(n int) Location { return Location{kind: locTakeC, a: n} }

// Possible reports whether the location includes pos.
func (l Location) Possible(pos PeptidePosition) bool {
	i, n := pos.SequenceIndex, pos.SequenceLength
	switch l.kind {
	case locAll:
		return true
	case locSkipN:
		return i >= l.a
	case locSkipC:
		return i < n-l.a
	case locSkipNC:
		return i >= l.a && i < n-l.b
	case locTakeN:
		return i >= l.a && i < l.a+l.b
	case locTakeC:
		return i >= n-l.a
	}
	return false
}

func (l Location) String() string {
	switch l.kind {
	case locAll:
		return "all"
	case locSkipN:
		return fmt.Sprintf("skip-n(%d)", l.a)
	case locSkipC:
		return fmt.Sprintf("skip-c(%d)", l.a)
	case locSkipNC:
		return fmt.Sprintf("skip-nc(%d,%d)", l.a, l.b)
	case locTakeN:
		return fmt.Sprintf("take-n(%d,%d)", l.a, l.b)
	case locTakeC:
		return fmt.Sprintf("take-c(%d)", l.a)
	}
	return "none"
}

// IonType identifies a fragment series.
type IonType uint8

const (
	IonA IonType = iota
	IonB
	IonC
	IonD
	IonV
	IonW
	IonX
	IonY
	IonZ
	IonPrecursor
	IonM
	IonDiagnostic
	IonOxonium
	IonGlycanY
)

var ionNames = [...]string{"a", "b", "c", "d", "v", "w", "x", "y", "z", "p", "m", "diagnostic", "B", "Y"}

func (t IonType) String() string {
	return ionNames[t]
}

// ParseIonType parses the name written by String.
// Backbone series also match in upper case when no exact name matches.
func ParseIonType(s string) (IonType, bool) {
	for i, n := range ionNames {
		if n == s {
			return IonType(i), true
		}
	}
	for i, n := range ionNames[:IonPrecursor] {
		if strings.EqualFold(n, s) {
			return IonType(i), true
		}
	}
	return 0, false
}

// IsNTerminal reports whether the series keeps the N terminus.
func (t IonType) IsNTerminal() bool {
	return t <= IonD
}

// IsCTerminal reports whether the series keeps the C terminus.
func (t IonType) IsCTerminal() bool {
	return t >= IonV && t <= IonZ
}

// IonSettings configures one backbone ion series.
type IonSettings struct {
	Location Location
	Losses   []NeutralLoss
}

// Model selects the fragments generated for a peptide.
type Model struct {
	A, B, C, D, V, W, X, Y, Z IonSettings
	Precursor                 []NeutralLoss
	// M enables precursor minus one residue fragments.
	M bool
	// ModificationLosses adds modification specific neutral losses.
	ModificationLosses bool
	// Diagnostics adds modification specific diagnostic ions.
	Diagnostics bool
	// GlycanFragmentation adds B and Y ions of structured glycans.
	GlycanFragmentation bool
}

// Ion returns the settings of a backbone series.
func (m Model) Ion(t IonType) IonSettings {
	switch t {
	case IonA:
		return m.A
	case IonB:
		return m.B
	case IonC:
		return m.C
	case IonD:
		return m.D
	case IonV:
		return m.V
	case IonW:
		return m.W
	case IonX:
		return m.X
	case IonY:
		return m.Y
	case IonZ:
		return m.Z
	}
	return IonSettings{Location: LocationNone}
}

var (
	waterLoss   = NeutralLoss{Formula: Water}
	ammoniaLoss = NeutralLoss{Formula: Ammonia}
)

// AllModel generates every ion series.
func AllModel() Model {
	n := SkipNC(1, 1)
	c := SkipN(1)
	return Model{
		A:                   IonSettings{Location: n},
		B:                   IonSettings{Location: n, Losses: []NeutralLoss{waterLoss}},
		C:                   IonSettings{Location: n},
		D:                   IonSettings{Location: n},
		V:                   IonSettings{Location: c},
		W:                   IonSettings{Location: c},
		X:                   IonSettings{Location: c},
		Y:                   IonSettings{Location: c, Losses: []NeutralLoss{waterLoss}},
		Z:                   IonSettings{Location: c},
		Precursor:           []NeutralLoss{waterLoss, ammoniaLoss},
		M:                   true,
		ModificationLosses:  true,
		Diagnostics:         true,
		GlycanFragmentation: true,
	}
}

// CIDHCDModel generates the b and y series of collisional activation.
func CIDHCDModel() Model {
	return Model{
		A:                  IonSettings{Location: TakeN(1, 1)},
		B:                  IonSettings{Location: SkipNC(1, 1), Losses: []NeutralLoss{waterLoss}},
		Y:                  IonSettings{Location: SkipN(1), Losses: []NeutralLoss{waterLoss}},
		Precursor:          []NeutralLoss{waterLoss},
		ModificationLosses: true,
		Diagnostics:        true,
	}
}

// ETDModel generates the c and z series of electron transfer.
func ETDModel() Model {
	return Model{
		C:                  IonSettings{Location: SkipNC(1, 1)},
		W:                  IonSettings{Location: SkipN(1)},
		Y:                  IonSettings{Location: SkipN(1), Losses: []NeutralLoss{waterLoss}},
		Z:                  IonSettings{Location: SkipN(1), Losses: []NeutralLoss{waterLoss}},
		Precursor:          []NeutralLoss{waterLoss, ammoniaLoss},
		ModificationLosses: true,
		Diagnostics:        true,
	}
}

// EThcDModel combines the series of ETD and HCD.
func EThcDModel() Model {
	return Model{
		B:                  IonSettings{Location: SkipNC(1, 1), Losses: []NeutralLoss{waterLoss}},
		C:                  IonSettings{Location: SkipNC(1, 1)},
		W:                  IonSettings{Location: SkipN(1)},
		Y:                  IonSettings{Location: SkipN(1), Losses: []NeutralLoss{waterLoss}},
		Z:                  IonSettings{Location: SkipN(1), Losses: []NeutralLoss{waterLoss}},
		Precursor:          []NeutralLoss{waterLoss, ammoniaLoss},
		ModificationLosses: true,
		Diagnostics:        true,
	}
}

// NoneModel only generates the precursor.
func NoneModel() Model {
	return Model{}
}

// ModelByName returns the model called all, cid_hcd, etd, ethcd or none.
func ModelByName(name string) (Model, bool) {
	switch strings.ToLower(name) {
	case "all":
		return AllModel(), true
	case "cid_hcd", "cid", "hcd":
		return CIDHCDModel(), true
	case "etd":
		return ETDModel(), true
	case "ethcd":
		return EThcDModel(), true
	case "none":
		return NoneModel(), true
	}
	return Model{}, false
}

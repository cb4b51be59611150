// Package filter provides post-generation filtering and clustering of
// theoretical fragments
package filter

import (
	"fmt"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/ChrisMcGann/pepform/pkg/align"
	"github.com/ChrisMcGann/pepform/pkg/core"
)

// Config holds filtering configuration
type Config struct {
	IonTypes []string // Keep only specified ion types (nil = all)
	MinMZ    float64  // Keep only fragments at or above this m/z (0 = no limit)
	MaxMZ    float64  // Keep only fragments at or below this m/z (0 = no limit)
	NoLosses bool     // Drop fragments with a neutral loss
}

// Validate checks the ion type names and the m/z range.
func (c *Config) Validate() error {
	for _, t := range c.IonTypes {
		if _, ok := core.ParseIonType(strings.TrimSpace(t)); !ok {
			return fmt.Errorf("unknown ion type '%s'", t)
		}
	}
	if c.MinMZ < 0 || c.MaxMZ < 0 {
		return fmt.Errorf("m/z limits must not be negative")
	}
	if c.MaxMZ != 0 && c.MaxMZ < c.MinMZ {
		return fmt.Errorf("max m/z %g is below min m/z %g", c.MaxMZ, c.MinMZ)
	}
	return nil
}

// Apply applies all configured filters. Fragments without a defined mass
// are always removed. The generation order of the kept fragments is
// preserved.
func (c *Config) Apply(fragments []core.Fragment) ([]core.Fragment, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	fragments = RemoveMassless(fragments)

	// Filter by ion type first
	if len(c.IonTypes) > 0 {
		fragments = c.filterByIonType(fragments)
	}

	if c.MinMZ > 0 || c.MaxMZ > 0 {
		fragments = c.filterByMZ(fragments)
	}

	if c.NoLosses {
		fragments = removeLosses(fragments)
	}

	return fragments, nil
}

// filterByIonType keeps only fragments matching specified ion types
func (c *Config) filterByIonType(fragments []core.Fragment) []core.Fragment {
	var filtered []core.Fragment
	for _, f := range fragments {
		if matchesIonType(f.Ion, c.IonTypes) {
			filtered = append(filtered, f)
		}
	}
	return filtered
}

// matchesIonType checks if an ion matches any of the allowed ion types
func matchesIonType(ion core.IonType, ionTypes []string) bool {
	for _, name := range ionTypes {
		if t, ok := core.ParseIonType(strings.TrimSpace(name)); ok && t == ion {
			return true
		}
	}
	return false
}

// filterByMZ removes fragments outside the m/z range
func (c *Config) filterByMZ(fragments []core.Fragment) []core.Fragment {
	var filtered []core.Fragment
	for _, f := range fragments {
		mz, _ := f.MZ()
		if mz < c.MinMZ || (c.MaxMZ > 0 && mz > c.MaxMZ) {
			continue
		}
		filtered = append(filtered, f)
	}
	return filtered
}

func removeLosses(fragments []core.Fragment) []core.Fragment {
	var filtered []core.Fragment
	for _, f := range fragments {
		if f.Loss == nil {
			filtered = append(filtered, f)
		}
	}
	return filtered
}

// RemoveMassless removes fragments whose formula has no monoisotopic mass
func RemoveMassless(fragments []core.Fragment) []core.Fragment {
	var filtered []core.Fragment
	for _, f := range fragments {
		if _, ok := f.MZ(); ok {
			filtered = append(filtered, f)
		}
	}
	return filtered
}

// Cluster is a group of fragments with indistinguishable m/z.
type Cluster struct {
	MZ        float64 // Mean m/z of the members
	Fragments []core.Fragment
}

// Names returns the annotations of the members joined by commas.
func (c Cluster) Names() string {
	names := make([]string, len(c.Fragments))
	for i, f := range c.Fragments {
		names[i] = fmt.Sprintf("%s^%d", f.Name(), f.Charge)
	}
	return strings.Join(names, ",")
}

// Merge groups fragments by m/z. A fragment joins the current cluster when
// it is within tolerance of the lowest m/z of that cluster. Clusters are
// ordered by m/z and keep the generation order for equal values. Fragments
// without a defined mass are dropped.
func Merge(fragments []core.Fragment, tolerance align.Tolerance) []Cluster {
	fragments = RemoveMassless(fragments)
	mzs := make([]float64, len(fragments))
	for i, f := range fragments {
		mzs[i], _ = f.MZ()
	}
	order := make([]int, len(fragments))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return mzs[order[i]] < mzs[order[j]]
	})

	var clusters []Cluster
	var values []float64
	first := 0.0
	flush := func() {
		if len(values) == 0 {
			return
		}
		clusters[len(clusters)-1].MZ = floats.Sum(values) / float64(len(values))
		values = values[:0]
	}
	for _, idx := range order {
		mz := mzs[idx]
		if len(values) == 0 || !tolerance.Within(first, mz) {
			flush()
			clusters = append(clusters, Cluster{})
			first = mz
		}
		clusters[len(clusters)-1].Fragments = append(clusters[len(clusters)-1].Fragments, fragments[idx])
		values = append(values, mz)
	}
	flush()
	return clusters
}

package services

import (
	"sort"

	"orderflow/internal/core/domain/model/courier"
	"orderflow/internal/core/domain/model/kernel"
)

// Candidate is a courier ranked by distance from a pickup point.
type Candidate struct {
	CourierID  kernel.UUID
	DistanceKm float64
}

// GeoMatcher is a domain service that ranks couriers by great-circle distance
// from an order's pickup point, subject to a radius constraint.
//
// The matcher is a pure function over its inputs: it performs no I/O and
// mutates nothing. Couriers that are not matchable (offline, busy, or without
// a reported location) are silently ineligible, not an error.
type GeoMatcher struct{}

// NewGeoMatcher creates a new GeoMatcher instance.
func NewGeoMatcher() GeoMatcher {
	return GeoMatcher{}
}

// SelectCandidates filters couriers to those within radiusKm of pickup
// (inclusive) and returns them sorted ascending by distance. Ties keep the
// original scan order, so results are deterministic for a given input slice.
// An empty courier set or no courier within radius yields an empty slice.
func (GeoMatcher) SelectCandidates(
	pickup kernel.GeoPoint,
	couriers []*courier.Courier,
	radiusKm float64,
) ([]Candidate, error) {
	if err := pickup.Validate(); err != nil {
		return nil, err
	}

	candidates := make([]Candidate, 0, len(couriers))
	for _, c := range couriers {
		if c == nil || !c.IsMatchable() {
			continue
		}

		km, err := c.Location().DistanceKm(pickup)
		if err != nil {
			// Unreachable for couriers built through the constructors, which
			// only admit validated points. Kept so a bad input slice degrades
			// to ineligibility instead of failing the scan.
			continue
		}

		if km <= radiusKm {
			candidates = append(candidates, Candidate{
				CourierID:  c.ID(),
				DistanceKm: km,
			})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].DistanceKm < candidates[j].DistanceKm
	})

	return candidates, nil
}

// Nearest returns the single closest in-radius candidate, if any.
func (m GeoMatcher) Nearest(
	pickup kernel.GeoPoint,
	couriers []*courier.Courier,
	radiusKm float64,
) (Candidate, bool, error) {
	candidates, err := m.SelectCandidates(pickup, couriers, radiusKm)
	if err != nil || len(candidates) == 0 {
		return Candidate{}, false, err
	}
	return candidates[0], true, nil
}

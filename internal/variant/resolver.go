package variant

import (
	"fmt"
	"reflect"
	"sort"

	"stagehand/internal/api"
	"stagehand/internal/device"
	"stagehand/pkg/logging"
)

// Ranking is the outcome of scoring one candidate.
type Ranking struct {
	Candidate     Candidate
	Score         int
	Contributions []Contribution
	// Excluded is set when an exact-type pin removed the candidate before scoring.
	Excluded bool
	// Rejected is set for negative scores.
	Rejected bool
	// Selected marks the winner.
	Selected bool
}

// Name returns the candidate label.
func (r Ranking) Name() string {
	return r.Candidate.label()
}

// Resolver picks one candidate per capability request.
type Resolver struct {
	registry *Registry
}

// NewResolver creates a resolver over reg.
func NewResolver(reg *Registry) *Resolver {
	return &Resolver{registry: reg}
}

// Registry returns the underlying candidate registry.
func (r *Resolver) Registry() *Registry {
	return r.registry
}

// Resolve returns an instance of the winning candidate for capability on d.
func (r *Resolver) Resolve(capability reflect.Type, d *device.Device) (any, error) {
	winner, err := Select(capability, r.registry.CandidatesFor(capability), d)
	if err != nil {
		return nil, err
	}
	return winner.New(), nil
}

// Explain scores every candidate for capability on d without instantiating any.
func (r *Resolver) Explain(capability reflect.Type, d *device.Device) []Ranking {
	rankings, _ := rank(capability, r.registry.CandidatesFor(capability), d)
	return rankings
}

// ResolveFor resolves capability T and returns it typed.
func ResolveFor[T any](r *Resolver, d *device.Device) (T, error) {
	var zero T
	v, err := r.Resolve(TypeOf[T](), d)
	if err != nil {
		return zero, err
	}
	typed, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("candidate for %s returned %T", TypeOf[T](), v)
	}
	return typed, nil
}

// Select picks one candidate for capability among candidates, scored
// against d:
//
//   - a concrete capability type pins the exact type; other types are dropped
//   - a single remaining candidate that declares no criteria is returned
//     without scoring; one that declares criteria must still score >= 0
//   - otherwise candidates are stable-sorted by descending score, negative
//     scores are rejected and the first remaining candidate wins
//
// Equal non-negative scores keep registration order.
func Select(capability reflect.Type, candidates []Candidate, d *device.Device) (Candidate, error) {
	rankings, winner := rank(capability, candidates, d)
	if winner < 0 {
		return Candidate{}, api.NewNoMatchingVariantError(capabilityName(capability), deviceName(d), len(candidates))
	}
	chosen := rankings[winner]
	logging.Debug("Variant", "Selected %s for %s on %s (score %d of %d candidates)",
		chosen.Name(), capabilityName(capability), deviceName(d), chosen.Score, len(candidates))
	return chosen.Candidate, nil
}

// Rank scores explicitly supplied candidates the way Select does and returns
// them in decision order without instantiating any.
func Rank(capability reflect.Type, candidates []Candidate, d *device.Device) []Ranking {
	rankings, _ := rank(capability, candidates, d)
	return rankings
}

// rank scores candidates and returns them in decision order together with the
// index of the winner, or -1.
func rank(capability reflect.Type, candidates []Candidate, d *device.Device) ([]Ranking, int) {
	pinned := capability != nil && capability.Kind() != reflect.Interface

	var eligible, excluded []Ranking
	for _, c := range candidates {
		if pinned && c.Type != capability {
			excluded = append(excluded, Ranking{Candidate: c, Excluded: true})
			continue
		}
		eligible = append(eligible, Ranking{Candidate: c})
	}

	if len(eligible) == 1 && eligible[0].Candidate.Criteria.IsZero() {
		eligible[0].Selected = true
		return append(eligible, excluded...), 0
	}

	for i := range eligible {
		eligible[i].Score, eligible[i].Contributions = ScoreDetail(eligible[i].Candidate.Criteria, d)
		logging.Debug("Variant", "Candidate %s for %s scored %d on %s",
			eligible[i].Name(), capabilityName(capability), eligible[i].Score, deviceName(d))
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		return eligible[i].Score > eligible[j].Score
	})

	winner := -1
	for i := range eligible {
		if eligible[i].Score < 0 {
			eligible[i].Rejected = true
			continue
		}
		if winner < 0 {
			winner = i
			eligible[i].Selected = true
		}
	}

	return append(eligible, excluded...), winner
}

func capabilityName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}

func deviceName(d *device.Device) string {
	if d == nil {
		return ""
	}
	return d.Name
}

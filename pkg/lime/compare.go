package lime

import "sort"

// Presence classifies a feature's membership across the global and local
// top-K views.
type Presence int

const (
	PresenceBoth Presence = iota
	PresenceGlobalOnly
	PresenceLocalOnly
)

func (p Presence) String() string {
	switch p {
	case PresenceBoth:
		return "both"
	case PresenceGlobalOnly:
		return "global-only"
	default:
		return "local-only"
	}
}

// Comparison is the comparator's verdict for one feature.
type Comparison struct {
	Feature     string
	Presence    Presence
	GlobalScore float64
	LocalWeight float64
}

// Compare reconciles an externally supplied global importance map with the
// aggregated local explanations, both truncated to their top-k views. Every
// feature of the union is classified into exactly one presence class. The
// function is pure: no mutation, no I/O. An empty global map classifies all
// local features as local-only.
func Compare(global map[string]float64, set *ExplanationSet, k int) []Comparison {
	globalTop := topGlobalFeatures(global, k)
	inGlobal := map[string]struct{}{}
	for _, name := range globalTop {
		inGlobal[name] = struct{}{}
	}

	localWeight := map[string]float64{}
	for _, t := range set.Terms {
		if _, ok := localWeight[t.Feature]; !ok {
			localWeight[t.Feature] = t.Mean
		}
	}

	var result []Comparison
	inLocal := map[string]struct{}{}
	for _, name := range set.TopFeatures(k) {
		inLocal[name] = struct{}{}
		c := Comparison{Feature: name, Presence: PresenceLocalOnly, LocalWeight: localWeight[name]}
		if _, ok := inGlobal[name]; ok {
			c.Presence = PresenceBoth
			c.GlobalScore = global[name]
		}
		result = append(result, c)
	}
	for _, name := range globalTop {
		if _, ok := inLocal[name]; ok {
			continue
		}
		result = append(result, Comparison{
			Feature:     name,
			Presence:    PresenceGlobalOnly,
			GlobalScore: global[name],
		})
	}
	return result
}

func topGlobalFeatures(global map[string]float64, k int) []string {
	names := make([]string, 0, len(global))
	for name := range global {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if global[names[i]] != global[names[j]] {
			return global[names[i]] > global[names[j]]
		}
		return names[i] < names[j]
	})
	if len(names) > k {
		names = names[:k]
	}
	return names
}

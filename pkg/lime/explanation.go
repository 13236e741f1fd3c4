package lime

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Term is one entry of a local explanation: a feature condition and its
// signed influence weight toward the explained label.
type Term struct {
	// Feature is the bare column name, e.g. "Oldpeak".
	Feature string
	// Condition is the bin-level description, e.g. "Oldpeak > 1.60".
	Condition string
	Weight    float64
}

// Explanation is the local explanation of one (instance, label) pair.
// Weights are only comparable within one Explanation. RSquared is a trust
// signal for downstream consumers; a low value never fails the call.
type Explanation struct {
	RecordID  int
	Label     string
	Terms     []Term
	Intercept float64
	RSquared  float64
}

// AggregatedTerm summarizes one feature condition across the explanations
// that contributed it.
type AggregatedTerm struct {
	Feature   string
	Condition string
	Mean      float64
	StdDev    float64
	Count     int
}

// ExplanationSet is an ordered collection of aggregated terms, descending by
// mean weight magnitude.
type ExplanationSet struct {
	Terms []AggregatedTerm
}

// Aggregate groups explanation terms by condition and computes the mean
// weight and its dispersion per condition across the contributing cases.
func Aggregate(explanations []*Explanation) *ExplanationSet {
	byCondition := map[string][]float64{}
	features := map[string]string{}
	var order []string
	for _, e := range explanations {
		for _, t := range e.Terms {
			if _, ok := byCondition[t.Condition]; !ok {
				order = append(order, t.Condition)
				features[t.Condition] = t.Feature
			}
			byCondition[t.Condition] = append(byCondition[t.Condition], t.Weight)
		}
	}

	terms := make([]AggregatedTerm, 0, len(order))
	for _, condition := range order {
		weights := byCondition[condition]
		mean, std := stat.MeanStdDev(weights, nil)
		if len(weights) < 2 {
			std = 0
		}
		terms = append(terms, AggregatedTerm{
			Feature:   features[condition],
			Condition: condition,
			Mean:      mean,
			StdDev:    std,
			Count:     len(weights),
		})
	}
	sort.SliceStable(terms, func(i, j int) bool {
		mi, mj := math.Abs(terms[i].Mean), math.Abs(terms[j].Mean)
		if mi != mj {
			return mi > mj
		}
		return terms[i].Condition < terms[j].Condition
	})
	return &ExplanationSet{Terms: terms}
}

// TopFeatures returns the first k distinct feature names of the set, in
// aggregate order.
func (s *ExplanationSet) TopFeatures(k int) []string {
	var names []string
	seen := map[string]struct{}{}
	for _, t := range s.Terms {
		if _, ok := seen[t.Feature]; ok {
			continue
		}
		seen[t.Feature] = struct{}{}
		names = append(names, t.Feature)
		if len(names) == k {
			break
		}
	}
	return names
}

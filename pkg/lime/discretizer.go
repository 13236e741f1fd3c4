package lime

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"

	"glime/pkg/model"
)

// Scheme is a fitted discretization scheme: quantile bin edges for every
// continuous feature and the observed level set for every categorical one,
// together with the corpus value pools replacement values are drawn from.
// A Scheme is read-only after Fit and safe for concurrent use.
type Scheme struct {
	meta    *model.Metadata
	numBins int

	// edges[u] holds the ascending quantile edges of continuous feature u;
	// nil for categorical features. A value v falls in the first bin whose
	// upper edge is >= v; values above the last edge fall in the last bin.
	edges [][]float64

	// pools[u] holds every corpus value observed for continuous feature u.
	pools [][]float64

	// catPools[c] holds every corpus level observed for categorical feature
	// c, duplicates included, so a uniform draw follows the empirical
	// marginal distribution.
	catPools [][]int

	// catSeen[c] is the fit-time level set of categorical feature c.
	catSeen []map[int]struct{}
}

// Discretized is the bin/level assignment of one record over the unified
// feature index: continuous features first, categorical features after.
type Discretized struct {
	Bins []int
}

// Fit computes a discretization scheme from a training corpus in one
// sequential pass. Identical corpus and configuration yield an identical
// scheme.
func Fit(meta *model.Metadata, records []*model.Record, numBins int) (*Scheme, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("cannot fit discretization scheme on an empty corpus")
	}
	if numBins < 2 {
		return nil, fmt.Errorf("invalid bin count %d: at least 2 bins required", numBins)
	}

	nc := meta.NumContinuous()
	nk := meta.NumCategorical()
	s := &Scheme{
		meta:     meta,
		numBins:  numBins,
		edges:    make([][]float64, nc+nk),
		pools:    make([][]float64, nc),
		catPools: make([][]int, nk),
		catSeen:  make([]map[int]struct{}, nk),
	}

	for u := 0; u < nc; u++ {
		values := make([]float64, len(records))
		for i, r := range records {
			values[i] = r.Continuous[u]
		}
		s.pools[u] = values

		sorted := make([]float64, len(values))
		copy(sorted, values)
		sort.Float64s(sorted)
		s.edges[u] = quantileEdges(sorted, numBins)
	}

	for c := 0; c < nk; c++ {
		seen := map[int]struct{}{}
		pool := make([]int, len(records))
		for i, r := range records {
			pool[i] = r.Categorical[c]
			seen[r.Categorical[c]] = struct{}{}
		}
		s.catPools[c] = pool
		s.catSeen[c] = seen
	}

	return s, nil
}

// quantileEdges returns the interior quantile cut points of sorted values.
// Duplicate edges collapse, so low-cardinality or constant features yield
// fewer (possibly zero) edges.
func quantileEdges(sorted []float64, numBins int) []float64 {
	edges := make([]float64, 0, numBins-1)
	for b := 1; b < numBins; b++ {
		q := stat.Quantile(float64(b)/float64(numBins), stat.Empirical, sorted, nil)
		if len(edges) == 0 || q > edges[len(edges)-1] {
			edges = append(edges, q)
		}
	}
	if len(edges) > 0 && edges[len(edges)-1] >= sorted[len(sorted)-1] {
		// An edge at the maximum would leave the top bin empty.
		edges = edges[:len(edges)-1]
	}
	return edges
}

func (s *Scheme) NumFeatures() int {
	return len(s.edges)
}

// Transform maps each feature of the record to its bin/level identifier.
// Re-deriving the assignment from the same fitted scheme is deterministic.
func (s *Scheme) Transform(r *model.Record) (*Discretized, error) {
	nc := s.meta.NumContinuous()
	bins := make([]int, s.NumFeatures())
	for u := 0; u < nc; u++ {
		bins[u] = s.binOf(u, r.Continuous[u])
	}
	for c := 0; c < s.meta.NumCategorical(); c++ {
		level := r.Categorical[c]
		if _, ok := s.catSeen[c][level]; !ok {
			column := s.meta.FeatureName(nc + c)
			value := s.meta.LevelName(c, level)
			if value == "" {
				value = fmt.Sprintf("#%d", level)
			}
			return nil, &UnknownCategoryError{Column: column, Value: value}
		}
		bins[nc+c] = level
	}
	return &Discretized{Bins: bins}, nil
}

func (s *Scheme) binOf(u int, value float64) int {
	for b, edge := range s.edges[u] {
		if value <= edge {
			return b
		}
	}
	return len(s.edges[u])
}

// FeatureName resolves a unified feature index to its column name.
func (s *Scheme) FeatureName(u int) string {
	return s.meta.FeatureName(u)
}

// Describe renders a feature/bin pair as a human-readable condition, e.g.
// "Oldpeak > 1.60" or "Thal = fixed".
func (s *Scheme) Describe(u, bin int) string {
	name := s.meta.FeatureName(u)
	nc := s.meta.NumContinuous()
	if u >= nc {
		level := s.meta.LevelName(u-nc, bin)
		if level == "" {
			level = fmt.Sprintf("#%d", bin)
		}
		return fmt.Sprintf("%s = %s", name, level)
	}
	edges := s.edges[u]
	switch {
	case len(edges) == 0:
		return name
	case bin == 0:
		return fmt.Sprintf("%s <= %.2f", name, edges[0])
	case bin >= len(edges):
		return fmt.Sprintf("%s > %.2f", name, edges[len(edges)-1])
	default:
		return fmt.Sprintf("%.2f < %s <= %.2f", edges[bin-1], name, edges[bin])
	}
}

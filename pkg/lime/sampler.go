package lime

import (
	"math/rand"

	"glime/pkg/model"
)

// Sample is one perturbed neighbor of the explained instance: the keep-mask
// over the unified feature index (1 = the feature still falls in the
// original bin, 0 = it does not), the reconstructed record the black box is
// queried with, and the proximity weight assigned by the kernel.
type Sample struct {
	Mask   []float64
	Record *model.Record
	Weight float64
}

const keepProbability = 0.5

// sampleNeighborhood generates n samples around the target record. Sample 0
// is always the unmodified anchor (all-ones mask). Every replacement value
// is drawn from the corpus pool of its feature, so perturbed records remain
// realistic inputs. A replacement that happens to land in the original bin
// keeps an indicator of 1.
func sampleNeighborhood(rng *rand.Rand, scheme *Scheme, record *model.Record, disc *Discretized, n int) []*Sample {
	d := scheme.NumFeatures()
	nc := scheme.meta.NumContinuous()

	samples := make([]*Sample, 0, n)
	anchor := &Sample{
		Mask:   make([]float64, d),
		Record: record.Clone(),
	}
	for u := range anchor.Mask {
		anchor.Mask[u] = 1
	}
	samples = append(samples, anchor)

	for i := 1; i < n; i++ {
		clone := record.Clone()
		mask := make([]float64, d)
		for u := 0; u < d; u++ {
			if rng.Float64() < keepProbability {
				mask[u] = 1
				continue
			}
			if u < nc {
				pool := scheme.pools[u]
				value := pool[rng.Intn(len(pool))]
				clone.Continuous[u] = value
				if scheme.binOf(u, value) == disc.Bins[u] {
					mask[u] = 1
				}
			} else {
				c := u - nc
				pool := scheme.catPools[c]
				level := pool[rng.Intn(len(pool))]
				clone.Categorical[c] = level
				if level == disc.Bins[u] {
					mask[u] = 1
				}
			}
		}
		samples = append(samples, &Sample{Mask: mask, Record: clone})
	}
	return samples
}

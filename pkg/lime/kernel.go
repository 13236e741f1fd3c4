package lime

import "math"

// defaultBandwidth derives the kernel bandwidth from the feature count.
func defaultBandwidth(numFeatures int) float64 {
	return 0.75 * math.Sqrt(float64(numFeatures))
}

// kernelWeight maps the mask's distance from the all-ones anchor (fraction
// of features differing) through an exponential kernel. A zero-distance mask
// receives exactly 1.0.
func kernelWeight(mask []float64, bandwidth float64) float64 {
	differing := 0.0
	for _, kept := range mask {
		if kept == 0 {
			differing++
		}
	}
	distance := differing / float64(len(mask))
	return math.Exp(-distance * distance / (bandwidth * bandwidth))
}

func applyKernel(samples []*Sample, bandwidth float64) {
	for _, s := range samples {
		s.Weight = kernelWeight(s.Mask, bandwidth)
	}
}

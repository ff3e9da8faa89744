// Package noise provides the seeded random sources used by the sensor
// simulators: Gaussian samples for per-channel jitter and spectrally shaped
// pink noise for background microseism texture.
//
// Every Generator is fully determined by its seed. Two Generators built from
// the same seed produce identical sample streams, which is what makes frame
// sequences reproducible end to end.
package noise

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/stat"
)

// dcEpsilon replaces the zero frequency of the pink-noise filter so the DC
// coefficient is attenuated instead of divided by zero.
const dcEpsilon = 1e-6

// Generator is a seeded pseudo-random source. It is not safe for concurrent
// use; each simulator owns its own Generator.
type Generator struct {
	rnd *rand.Rand
}

// New creates a deterministic Generator from the given seed.
func New(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewPCG(uint64(seed), 0))}
}

// Gaussian returns a normally distributed sample with the given mean and
// standard deviation.
func (g *Generator) Gaussian(mean, std float64) float64 {
	return g.rnd.NormFloat64()*std + mean
}

// Uniform returns a sample drawn uniformly from [lo, hi).
func (g *Generator) Uniform(lo, hi float64) float64 {
	return lo + g.rnd.Float64()*(hi-lo)
}

// Float64 returns a sample drawn uniformly from [0, 1).
func (g *Generator) Float64() float64 {
	return g.rnd.Float64()
}

// Pink generates n samples of 1/f^exponent noise. White Gaussian noise is
// transformed to the frequency domain, each coefficient is attenuated by
// 1/f^(exponent/2), and the inverse transform is normalized to zero mean and
// unit variance.
//
// Pink(1, exponent) degenerates to a single standard-normal sample; spectral
// shaping is meaningless for one sample, and the streaming simulators call it
// once per tick.
func (g *Generator) Pink(n int, exponent float64) []float64 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{g.rnd.NormFloat64()}
	}

	white := make([]float64, n)
	for i := range white {
		white[i] = g.rnd.NormFloat64()
	}

	fft := fourier.NewFFT(n)
	coeff := fft.Coefficients(nil, white)
	for i := range coeff {
		f := fft.Freq(i)
		if f < dcEpsilon {
			f = dcEpsilon
		}
		coeff[i] /= complex(math.Pow(f, exponent/2), 0)
	}

	// Sequence returns the unnormalized inverse transform, scaled by n.
	seq := fft.Sequence(nil, coeff)
	for i := range seq {
		seq[i] /= float64(n)
	}

	mean := stat.Mean(seq, nil)
	std := stat.StdDev(seq, nil)
	if std == 0 {
		return seq
	}
	for i := range seq {
		seq[i] = (seq[i] - mean) / std
	}
	return seq
}

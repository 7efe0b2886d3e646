package colour

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat"
)

const (
	// DefaultMaxIterations bounds the Lloyd iterations of a clustering run.
	DefaultMaxIterations = 20

	// DefaultSeed drives k-means++ seeding when no seed is configured.
	DefaultSeed uint64 = 1
)

// Clustering is the outcome of a k-means run.
type Clustering struct {
	// Centroids holds exactly k Lab colours, in cluster order.
	Centroids []Lab
	// Assignment maps each sample index to its nearest centroid index.
	Assignment []int
	// Iterations is the number of assignment passes performed.
	Iterations int
	// Converged is true when the last pass changed no assignment.
	Converged bool
}

// ClusterWeights returns the summed sample weight of each cluster.
func (c *Clustering) ClusterWeights(weights []float64) []float64 {
	totals := make([]float64, len(c.Centroids))
	for i, cluster := range c.Assignment {
		if i < len(weights) {
			totals[cluster] += weights[i]
		}
	}
	return totals
}

type kmeansConfig struct {
	seed    uint64
	initial []Lab
}

// KMeansOption configures KMeansLab.
type KMeansOption func(*kmeansConfig)

// WithSeed sets the seed of the k-means++ initialisation.
func WithSeed(seed uint64) KMeansOption {
	return func(c *kmeansConfig) {
		c.seed = seed
	}
}

// WithInitialCentroids skips k-means++ and starts from the given centroids.
// The slice must hold exactly k colours; it is copied.
func WithInitialCentroids(centroids []Lab) KMeansOption {
	return func(c *kmeansConfig) {
		c.initial = append([]Lab(nil), centroids...)
	}
}

// KMeansLab clusters Lab samples with weighted Lloyd iterations.
//
// Seeding is weighted k-means++ from a PCG generator seeded with WithSeed
// (DefaultSeed otherwise), so a given input always yields the same palette.
// Each iteration assigns every sample to its nearest centroid (ties to the
// lowest index), then moves each centroid to the weighted mean of its samples.
// The run stops early once an iteration changes no assignment.
//
// A cluster that receives no samples keeps its previous centroid.
func KMeansLab(samples []Lab, weights []float64, k, maxIterations int, opts ...KMeansOption) (*Clustering, error) {
	cfg := kmeansConfig{seed: DefaultSeed}
	for _, opt := range opts {
		opt(&cfg)
	}

	if err := validateKMeansInput(samples, weights, k, maxIterations); err != nil {
		return nil, err
	}

	var centroids []Lab
	if cfg.initial != nil {
		if len(cfg.initial) != k {
			return nil, fmt.Errorf("%w: %d initial centroids supplied for k=%d", ErrInvalidInput, len(cfg.initial), k)
		}
		for i, c := range cfg.initial {
			if !c.IsFinite() {
				return nil, fmt.Errorf("%w: initial centroid %d is not finite", ErrInvalidInput, i)
			}
		}
		centroids = cfg.initial
	} else {
		rng := rand.New(rand.NewPCG(cfg.seed, cfg.seed^0x9e3779b97f4a7c15))
		centroids = seedPlusPlus(samples, weights, k, rng)
	}

	assignment := make([]int, len(samples))
	for i := range assignment {
		assignment[i] = -1
	}

	result := &Clustering{}
	for iter := 0; iter < maxIterations; iter++ {
		changed := assignSamples(samples, centroids, assignment)
		result.Iterations = iter + 1
		if changed == 0 {
			result.Converged = true
			break
		}
		centroids = recomputeCentroids(samples, weights, assignment, centroids)
	}

	if !result.Converged {
		// Keep the assignment consistent with the centroids being returned.
		changed := assignSamples(samples, centroids, assignment)
		result.Converged = changed == 0
	}

	result.Centroids = centroids
	result.Assignment = assignment
	return result, nil
}

func validateKMeansInput(samples []Lab, weights []float64, k, maxIterations int) error {
	if len(samples) == 0 {
		return fmt.Errorf("%w: no samples to cluster", ErrInvalidInput)
	}
	if k <= 0 {
		return fmt.Errorf("%w: palette size must be at least 1, got %d", ErrInvalidInput, k)
	}
	if k > len(samples) {
		return fmt.Errorf("%w: palette size %d exceeds sample count %d", ErrInvalidInput, k, len(samples))
	}
	if len(weights) != len(samples) {
		return fmt.Errorf("%w: %d weights for %d samples", ErrInvalidInput, len(weights), len(samples))
	}
	if maxIterations < 1 {
		return fmt.Errorf("%w: max iterations must be at least 1, got %d", ErrInvalidInput, maxIterations)
	}
	for i, w := range weights {
		if !(w > 0) || math.IsInf(w, 0) {
			return fmt.Errorf("%w: sample %d has invalid weight %v", ErrInvalidInput, i, w)
		}
	}
	for i, s := range samples {
		if !s.IsFinite() {
			return fmt.Errorf("%w: sample %d is not finite", ErrInvalidInput, i)
		}
	}
	return nil
}

// seedPlusPlus picks k initial centroids with weighted k-means++.
func seedPlusPlus(samples []Lab, weights []float64, k int, rng *rand.Rand) []Lab {
	return extendSeeds(samples, weights, nil, k, rng)
}

// extendSeeds grows seeds to k centroids. Without seeds the first centroid is
// drawn proportionally to weight; each following one proportionally to weight
// times the squared distance to the nearest centroid chosen so far. When every
// sample already coincides with a centroid, a sample is drawn uniformly and
// duplicated.
func extendSeeds(samples []Lab, weights []float64, seeds []Lab, k int, rng *rand.Rand) []Lab {
	centroids := make([]Lab, 0, k)
	centroids = append(centroids, seeds...)
	if len(centroids) >= k {
		return centroids[:k]
	}

	if len(centroids) == 0 {
		centroids = append(centroids, samples[pickWeighted(weights, rng)])
	}

	dist := make([]float64, len(samples))
	for i, s := range samples {
		d := LabDistance(s, centroids[nearestCentroid(s, centroids)])
		dist[i] = weights[i] * d * d
	}

	for len(centroids) < k {
		idx := pickWeighted(dist, rng)
		if idx < 0 {
			idx = rng.IntN(len(samples))
		}
		next := samples[idx]
		centroids = append(centroids, next)

		for i, s := range samples {
			d := LabDistance(s, next)
			if wd := weights[i] * d * d; wd < dist[i] {
				dist[i] = wd
			}
		}
	}

	return centroids
}

// pickWeighted draws an index with probability proportional to its weight.
// Returns -1 when all weights are zero.
func pickWeighted(weights []float64, rng *rand.Rand) int {
	total := 0.0
	for _, w := range weights {
		total += w
	}
	if total <= 0 {
		return -1
	}

	target := rng.Float64() * total
	cumulative := 0.0
	for i, w := range weights {
		cumulative += w
		if cumulative > target && w > 0 {
			return i
		}
	}

	// Rounding left target past the final sum.
	for i := len(weights) - 1; i >= 0; i-- {
		if weights[i] > 0 {
			return i
		}
	}
	return -1
}

// assignSamples moves every sample to its nearest centroid and returns how many
// assignments changed.
func assignSamples(samples, centroids []Lab, assignment []int) int {
	changed := 0
	for i, s := range samples {
		nearest := nearestCentroid(s, centroids)
		if assignment[i] != nearest {
			assignment[i] = nearest
			changed++
		}
	}
	return changed
}

// recomputeCentroids returns the weighted mean of each cluster. Clusters
// without members keep their previous position.
func recomputeCentroids(samples []Lab, weights []float64, assignment []int, previous []Lab) []Lab {
	members := make([][]int, len(previous))
	for i, cluster := range assignment {
		members[cluster] = append(members[cluster], i)
	}

	centroids := make([]Lab, len(previous))
	for c, idx := range members {
		if len(idx) == 0 {
			centroids[c] = previous[c]
			continue
		}

		ls := make([]float64, len(idx))
		as := make([]float64, len(idx))
		bs := make([]float64, len(idx))
		ws := make([]float64, len(idx))
		for j, i := range idx {
			ls[j] = samples[i].L
			as[j] = samples[i].A
			bs[j] = samples[i].B
			ws[j] = weights[i]
		}

		centroids[c] = Lab{
			L: stat.Mean(ls, ws),
			A: stat.Mean(as, ws),
			B: stat.Mean(bs, ws),
		}
	}
	return centroids
}

package colour

import (
	"fmt"
	"image"
	"image/color"
	"math/rand/v2"

	"github.com/cenkalti/dominantcolor"
	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"
)

// Clusterer groups weighted Lab samples into k clusters.
type Clusterer interface {
	// Cluster returns exactly k centroids and one assignment per sample.
	Cluster(samples []Lab, weights []float64, k, maxIterations int) (*Clustering, error)
}

// Algorithm represents the clustering algorithm type.
type Algorithm string

const (
	// AlgorithmKMeans uses weighted k-means in Lab with k-means++ seeding.
	AlgorithmKMeans Algorithm = "kmeans"

	// AlgorithmDominant seeds weighted k-means from the dominant colours of the
	// sampled pixels, topping up with k-means++ when too few are found.
	AlgorithmDominant Algorithm = "dominant"

	// AlgorithmUnweighted runs plain k-means over Lab coordinates, ignoring
	// importance weights. Its seeding is random and not reproducible.
	AlgorithmUnweighted Algorithm = "unweighted"
)

// ValidAlgorithms returns a list of valid algorithm names.
func ValidAlgorithms() []Algorithm {
	return []Algorithm{
		AlgorithmKMeans,
		AlgorithmDominant,
		AlgorithmUnweighted,
	}
}

// IsValidAlgorithm checks if the given algorithm name is valid.
func IsValidAlgorithm(alg Algorithm) bool {
	for _, valid := range ValidAlgorithms() {
		if alg == valid {
			return true
		}
	}
	return false
}

// NewClusterer creates a Clusterer for the specified algorithm.
// The seed is used by the algorithms that support reproducible seeding.
func NewClusterer(alg Algorithm, seed uint64) (Clusterer, error) {
	switch alg {
	case AlgorithmKMeans, "":
		return &KMeansClusterer{Seed: seed}, nil
	case AlgorithmDominant:
		return &DominantClusterer{Seed: seed}, nil
	case AlgorithmUnweighted:
		return &UnweightedClusterer{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown algorithm: %s (valid algorithms: %v)", ErrInvalidInput, alg, ValidAlgorithms())
	}
}

// KMeansClusterer runs KMeansLab with k-means++ seeding.
type KMeansClusterer struct {
	Seed uint64
}

// Cluster implements Clusterer.
func (c *KMeansClusterer) Cluster(samples []Lab, weights []float64, k, maxIterations int) (*Clustering, error) {
	return KMeansLab(samples, weights, k, maxIterations, WithSeed(c.Seed))
}

// DominantClusterer seeds KMeansLab with dominant colours.
type DominantClusterer struct {
	Seed uint64
}

// Cluster implements Clusterer.
func (c *DominantClusterer) Cluster(samples []Lab, weights []float64, k, maxIterations int) (*Clustering, error) {
	if err := validateKMeansInput(samples, weights, k, maxIterations); err != nil {
		return nil, err
	}

	candidates := dominantcolor.FindWeight(samplesImage(samples), k)
	seeds := make([]Lab, 0, k)
	for _, cand := range candidates {
		if len(seeds) == k {
			break
		}
		lab := RGBToLab(ToRGB(cand.RGBA))
		if len(seeds) > 0 && LabDistance(lab, seeds[nearestCentroid(lab, seeds)]) < 1 {
			continue
		}
		seeds = append(seeds, lab)
	}

	rng := rand.New(rand.NewPCG(c.Seed, c.Seed^0x9e3779b97f4a7c15))
	seeds = extendSeeds(samples, weights, seeds, k, rng)

	return KMeansLab(samples, weights, k, maxIterations, WithInitialCentroids(seeds))
}

// samplesImage lays the samples out as a one-row image so image-based
// palette libraries can consume them.
func samplesImage(samples []Lab) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, len(samples), 1))
	for i, s := range samples {
		rgb := LabToRGB(s)
		img.SetNRGBA(i, 0, color.NRGBA{R: rgb.R, G: rgb.G, B: rgb.B, A: 255})
	}
	return img
}

// UnweightedClusterer partitions samples with github.com/muesli/kmeans.
type UnweightedClusterer struct{}

// Cluster implements Clusterer. Weights are validated but not used.
// Iterations is not reported by the underlying library and stays 0.
func (c *UnweightedClusterer) Cluster(samples []Lab, weights []float64, k, maxIterations int) (*Clustering, error) {
	if err := validateKMeansInput(samples, weights, k, maxIterations); err != nil {
		return nil, err
	}

	dataset := make(clusters.Observations, len(samples))
	for i, s := range samples {
		dataset[i] = clusters.Coordinates{s.L, s.A, s.B}
	}

	km := kmeans.New()
	partition, err := km.Partition(dataset, k)
	if err != nil {
		return nil, fmt.Errorf("failed to partition samples: %w", err)
	}

	centroids := make([]Lab, k)
	for i := range centroids {
		// The library may hand back fewer or degenerate clusters; fall back
		// to a real sample so every centroid stays a valid colour.
		centroids[i] = samples[i%len(samples)]
		if i < len(partition) && len(partition[i].Center) >= 3 {
			center := Lab{L: partition[i].Center[0], A: partition[i].Center[1], B: partition[i].Center[2]}
			if center.IsFinite() {
				centroids[i] = center
			}
		}
	}

	assignment := make([]int, len(samples))
	for i := range assignment {
		assignment[i] = -1
	}
	assignSamples(samples, centroids, assignment)

	return &Clustering{
		Centroids:  centroids,
		Assignment: assignment,
	}, nil
}

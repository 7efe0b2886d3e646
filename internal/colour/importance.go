package colour

import (
	"fmt"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// Weighting selects the heuristic used to give each sample its clustering weight.
type Weighting string

const (
	// WeightingContrast favours samples that differ from their axis neighbours,
	// so thin details survive next to large flat regions.
	WeightingContrast Weighting = "contrast"

	// WeightingChroma favours saturated mid-tones over greys and extremes.
	WeightingChroma Weighting = "chroma"

	// WeightingUniform gives every sample weight 1 (plain k-means).
	WeightingUniform Weighting = "uniform"
)

// ValidWeightings returns the supported weighting heuristics.
func ValidWeightings() []Weighting {
	return []Weighting{WeightingContrast, WeightingChroma, WeightingUniform}
}

// ParseWeighting converts a name to a Weighting. The empty string selects contrast.
func ParseWeighting(s string) (Weighting, error) {
	if s == "" {
		return WeightingContrast, nil
	}
	w := Weighting(s)
	if !slices.Contains(ValidWeightings(), w) {
		return "", fmt.Errorf("%w: unknown weighting %q (valid: %v)", ErrInvalidInput, s, ValidWeightings())
	}
	return w, nil
}

// contrastScale converts an average neighbour distance into extra weight.
const contrastScale = 25.0

var neighbourOffsets = [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}

// ContrastWeight returns 1 plus the average Lab distance between pixel and its
// axis-aligned neighbours divided by 25. Neighbours must be inside the image and
// inside labs, which is indexed row-major. With no usable neighbour the weight is 1.
func ContrastWeight(pixel Lab, labs []Lab, width, height, x, y int) float64 {
	weight := 1.0
	total := 0.0
	valid := 0

	for _, off := range neighbourOffsets {
		nx, ny := x+off[0], y+off[1]
		if nx < 0 || nx >= width || ny < 0 || ny >= height {
			continue
		}
		idx := ny*width + nx
		if idx >= len(labs) {
			continue
		}
		total += LabDistance(pixel, labs[idx])
		valid++
	}

	if valid > 0 {
		weight += (total / float64(valid)) / contrastScale
	}
	return weight
}

// ChromaWeight scores a colour by chroma and closeness to mid lightness.
// The result is always at least 1.
func ChromaWeight(c Lab) float64 {
	midtone := 1 - clamp(abs(c.L-50)/50, 0, 1)
	return 1 + c.Chroma()/50 + 0.5*midtone
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// SampleStride converts a detail level into a pixel stride: max(1, floor(1000/detail)).
// Higher detail means denser sampling.
func SampleStride(detailLevel int) (int, error) {
	if detailLevel < 1 {
		return 0, fmt.Errorf("%w: detail level must be at least 1, got %d", ErrInvalidInput, detailLevel)
	}
	return max(1, 1000/detailLevel), nil
}

// Samples is a strided subsample of an image with per-sample weights.
type Samples struct {
	Lab     []Lab
	Weights []float64
	// Index holds the row-major source pixel index of each sample.
	Index  []int
	Stride int
}

// Len returns the number of samples.
func (s *Samples) Len() int {
	return len(s.Lab)
}

// WeightStats returns the mean and standard deviation of the sample weights.
func (s *Samples) WeightStats() (mean, std float64) {
	if len(s.Weights) == 0 {
		return 0, 0
	}
	if len(s.Weights) == 1 {
		return s.Weights[0], 0
	}
	return stat.MeanStdDev(s.Weights, nil)
}

// Sample draws every stride-th pixel (row-major) from a full-resolution Lab grid
// and weights each one. Contrast weights look at the sample's real neighbours in
// the grid, not at neighbouring samples.
func Sample(labs []Lab, width, height, detailLevel int, weighting Weighting) (*Samples, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: image dimensions must be positive, got %dx%d", ErrInvalidInput, width, height)
	}
	if len(labs) != width*height {
		return nil, fmt.Errorf("%w: expected %d pixels for %dx%d, got %d", ErrInvalidInput, width*height, width, height, len(labs))
	}
	stride, err := SampleStride(detailLevel)
	if err != nil {
		return nil, err
	}
	weighting, err = ParseWeighting(string(weighting))
	if err != nil {
		return nil, err
	}

	n := (len(labs) + stride - 1) / stride
	s := &Samples{
		Lab:     make([]Lab, 0, n),
		Weights: make([]float64, 0, n),
		Index:   make([]int, 0, n),
		Stride:  stride,
	}

	for i := 0; i < len(labs); i += stride {
		lab := labs[i]
		var w float64
		switch weighting {
		case WeightingContrast:
			w = ContrastWeight(lab, labs, width, height, i%width, i/width)
		case WeightingChroma:
			w = ChromaWeight(lab)
		default:
			w = 1
		}
		s.Lab = append(s.Lab, lab)
		s.Weights = append(s.Weights, w)
		s.Index = append(s.Index, i)
	}

	return s, nil
}

package analyze

import (
	"math"
	"sort"

	"github.com/chazu/meshprobe/pkg/mesh"
)

const (
	// DefaultLayerTolerance is the Z rounding step for layer buckets.
	DefaultLayerTolerance = 0.1
	// DefaultLayerFraction is the minimum bucket count as a fraction of
	// the triangle count.
	DefaultLayerFraction = 0.01
)

// LayerParams configures DetectLayers.
type LayerParams struct {
	Tolerance   float64 // Z rounding step
	MinFraction float64 // bucket count must be >= MinFraction × triangle count
}

// DefaultLayerParams returns the 0.1 / 1% layer settings.
func DefaultLayerParams() LayerParams {
	return LayerParams{
		Tolerance:   DefaultLayerTolerance,
		MinFraction: DefaultLayerFraction,
	}
}

// ZBucket is one bin of the vertex height histogram.
type ZBucket struct {
	Z     float64 `json:"z"`
	Count int     `json:"count"`
}

// ZHistogram counts vertices per Z bucket. Each Z is rounded (half to even)
// to the nearest multiple of tolerance. Buckets are returned in ascending Z.
func ZHistogram(m *mesh.Mesh, tolerance float64) []ZBucket {
	if m.IsEmpty() {
		return nil
	}
	if tolerance <= 0 {
		tolerance = DefaultLayerTolerance
	}

	counts := make(map[int64]int)
	for _, tri := range m.Triangles {
		for _, v := range tri {
			counts[int64(math.RoundToEven(v.Z/tolerance))]++
		}
	}

	keys := make([]int64, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	out := make([]ZBucket, len(keys))
	for i, k := range keys {
		out[i] = ZBucket{Z: float64(k) * tolerance, Count: counts[k]}
	}
	return out
}

// LayerThreshold is the minimum bucket count for a layer in m.
func LayerThreshold(m *mesh.Mesh, p LayerParams) float64 {
	if m == nil {
		return 0
	}
	return float64(m.TriangleCount()) * p.MinFraction
}

// DetectLayers returns the Z heights where vertices concentrate (floors,
// shelf tops, wall tops), ascending and distinct. A bucket qualifies when
// its count is at least MinFraction × triangle count; the comparison is
// inclusive.
func DetectLayers(m *mesh.Mesh, p LayerParams) []float64 {
	if p.Tolerance <= 0 {
		p.Tolerance = DefaultLayerTolerance
	}
	threshold := LayerThreshold(m, p)

	var layers []float64
	for _, b := range ZHistogram(m, p.Tolerance) {
		if float64(b.Count) >= threshold {
			layers = append(layers, b.Z)
		}
	}
	return layers
}

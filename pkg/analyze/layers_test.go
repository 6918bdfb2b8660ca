package analyze

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/meshprobe/pkg/mesh"
	"github.com/chazu/meshprobe/pkg/meshtest"
)

func repeatZ(z float64, n int) []mesh.Vertex {
	out := make([]mesh.Vertex, n)
	for i := range out {
		out[i] = mesh.Vertex{X: float64(i), Y: float64(i % 7), Z: z}
	}
	return out
}

func TestDetectLayersCube(t *testing.T) {
	m := meshtest.Cube(10)
	assert.InDelta(t, 0.12, LayerThreshold(m, DefaultLayerParams()), 1e-12)

	layers := DetectLayers(m, DefaultLayerParams())
	require.Len(t, layers, 2)
	assert.InDelta(t, 0, layers[0], 1e-9)
	assert.InDelta(t, 10, layers[1], 1e-9)

	hist := ZHistogram(m, DefaultLayerTolerance)
	require.Len(t, hist, 2)
	assert.Equal(t, 18, hist[0].Count)
	assert.Equal(t, 18, hist[1].Count)
}

func TestDetectLayersRecall(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	// 1000 triangles, 2% of the 3000 vertices at exactly Z = 5.
	verts := repeatZ(5.0, 60)
	verts = append(verts, meshtest.Scatter(rng, 2940,
		mesh.Vertex{X: 0, Y: 0, Z: 10}, mesh.Vertex{X: 100, Y: 100, Z: 500}, 0)...)
	rng.Shuffle(len(verts), func(i, j int) { verts[i], verts[j] = verts[j], verts[i] })
	m := meshtest.Soup("layers", verts)
	require.Equal(t, 1000, m.TriangleCount())

	layers := DetectLayers(m, DefaultLayerParams())
	found := false
	for _, z := range layers {
		if math.Abs(z-5.0) <= 0.1 {
			found = true
		}
	}
	assert.True(t, found, "expected a layer near 5.0, got %v", layers)
}

func TestDetectLayersThresholdInclusive(t *testing.T) {
	// 48 triangles at 1/16 gives a threshold of exactly 3 vertices.
	verts := repeatZ(1, 139)
	verts = append(verts, repeatZ(7, 3)...)
	verts = append(verts, repeatZ(8, 2)...)
	m := meshtest.Soup("shelves", verts)
	require.Equal(t, 48, m.TriangleCount())
	require.Equal(t, 3.0, LayerThreshold(m, LayerParams{MinFraction: 0.0625}))

	layers := DetectLayers(m, LayerParams{Tolerance: 0.1, MinFraction: 0.0625})
	require.Len(t, layers, 2)
	assert.InDelta(t, 1.0, layers[0], 1e-9)
	assert.InDelta(t, 7.0, layers[1], 1e-9)
}

func TestDetectLayersRoundingMergesNearbyHeights(t *testing.T) {
	verts := []mesh.Vertex{
		{Z: 2.01}, {Z: 1.98}, {Z: 2.04},
		{Z: 4.0}, {Z: 4.0}, {Z: 4.0},
	}
	hist := ZHistogram(meshtest.Soup("near", verts), 0.1)
	require.Len(t, hist, 2)
	assert.InDelta(t, 2.0, hist[0].Z, 1e-9)
	assert.Equal(t, 3, hist[0].Count)
	assert.InDelta(t, 4.0, hist[1].Z, 1e-9)
}

func TestDetectLayersOrderIndependent(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	verts := meshtest.Scatter(rng, 600, mesh.Vertex{}, mesh.Vertex{X: 10, Y: 10, Z: 3}, 0)
	verts = append(verts, repeatZ(1.5, 30)...)
	m := meshtest.Soup("mixed", verts)

	want := DetectLayers(m, DefaultLayerParams())
	for i := 0; i < 5; i++ {
		assert.Equal(t, want, DetectLayers(meshtest.Shuffled(rng, m), DefaultLayerParams()))
	}
}

func TestDetectLayersAscendingDistinct(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	verts := meshtest.Scatter(rng, 900, mesh.Vertex{Z: -20}, mesh.Vertex{X: 50, Y: 50, Z: 20}, 0)
	layers := DetectLayers(meshtest.Soup("cloud", verts), LayerParams{Tolerance: 1, MinFraction: 0.01})
	for i := 1; i < len(layers); i++ {
		assert.Less(t, layers[i-1], layers[i])
	}
}

func TestDetectLayersEmptyAndDefaults(t *testing.T) {
	assert.Empty(t, DetectLayers(mesh.New("empty", nil), DefaultLayerParams()))
	assert.Empty(t, ZHistogram(nil, 0.1))

	// A zero tolerance falls back to the default rather than dividing by zero.
	layers := DetectLayers(meshtest.Cube(10), LayerParams{MinFraction: 0.01})
	assert.Len(t, layers, 2)
}

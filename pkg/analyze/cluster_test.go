package analyze

import (
	"math"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/meshprobe/pkg/mesh"
	"github.com/chazu/meshprobe/pkg/meshtest"
)

// standoffBase lays out a floor at z=0 with cylindrical standoffs rising
// 5-9 units above it and sparse noise elsewhere in the band.
func standoffBase(rng *rand.Rand, centers ...mesh.Vertex) *mesh.Mesh {
	var verts []mesh.Vertex
	for _, c := range centers {
		verts = append(verts, meshtest.Ring(c.X, c.Y, 3, 5, 9, 40, 5)...)
	}
	verts = append(verts, meshtest.Scatter(rng, 61,
		mesh.Vertex{X: -40, Y: -30, Z: 1.5}, mesh.Vertex{X: 80, Y: 90, Z: 11.5}, 10, centers...)...)
	verts = append(verts, meshtest.Scatter(rng, 9,
		mesh.Vertex{X: -40, Y: -30, Z: 0}, mesh.Vertex{X: 80, Y: 90, Z: 0}, 0)...)
	return meshtest.Soup("base.stl", verts)
}

func TestFindClustersRecall(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	m := standoffBase(rng, mesh.Vertex{X: 20, Y: 30})

	res, err := FindClusters(m, DefaultClusterParams(0))
	require.NoError(t, err)
	require.Len(t, res.Clusters, 1)

	c := res.Clusters[0]
	assert.InDelta(t, 20, c.CenterX, 0.5)
	assert.InDelta(t, 30, c.CenterY, 0.5)
	assert.InEpsilon(t, 6, c.Diameter, 0.1)
	assert.GreaterOrEqual(t, c.VertexCount, DefaultMinClusterSize)
	assert.Equal(t, 200, c.VertexCount)
	assert.InDelta(t, 5, c.ZMin, 1e-9)
	assert.InDelta(t, 9, c.ZMax, 1e-9)
	assert.InDelta(t, 9, c.Height(0), 1e-9)

	require.Len(t, res.Mounting, 1)
	assert.Equal(t, c, res.Mounting[0])
	assert.Equal(t, 270, res.BandVertices+9, "floor vertices sit outside the band")
}

func TestFindClustersSortedByCenter(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	m := standoffBase(rng,
		mesh.Vertex{X: 50, Y: 10},
		mesh.Vertex{X: 0, Y: 60},
		mesh.Vertex{X: 0, Y: 0},
	)

	res, err := FindClusters(m, DefaultClusterParams(0))
	require.NoError(t, err)
	require.Len(t, res.Clusters, 3)

	want := [][2]float64{{0, 0}, {0, 60}, {50, 10}}
	for i, c := range res.Clusters {
		assert.InDelta(t, want[i][0], c.CenterX, 0.5)
		assert.InDelta(t, want[i][1], c.CenterY, 0.5)
	}
}

func TestFindClustersDeterministic(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	m := standoffBase(rng,
		mesh.Vertex{X: 10, Y: 10},
		mesh.Vertex{X: 40, Y: 10},
		mesh.Vertex{X: 10, Y: 60},
		mesh.Vertex{X: 40, Y: 60},
	)
	want, err := FindClusters(m, DefaultClusterParams(0))
	require.NoError(t, err)
	require.Len(t, want.Clusters, 4)

	for i := 0; i < 10; i++ {
		got, err := FindClusters(meshtest.Shuffled(rng, m), DefaultClusterParams(0))
		require.NoError(t, err)
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("shuffle %d changed the result (-want +got):\n%s", i, diff)
		}
	}
}

func TestFindClustersDropsSmallRegions(t *testing.T) {
	// Ten vertices in one cell meet the seed density but not the size floor.
	verts := make([]mesh.Vertex, 0, 12)
	for i := 0; i < 12; i++ {
		verts = append(verts, mesh.Vertex{X: 5 + 0.01*float64(i), Y: 5, Z: 4})
	}
	res, err := FindClusters(meshtest.Soup("pin", verts), DefaultClusterParams(0))
	require.NoError(t, err)
	assert.Empty(t, res.Clusters)
	assert.Equal(t, 1, res.DenseCells)
	assert.Equal(t, 12, res.BandVertices)
}

func TestFindClustersContinuationThreshold(t *testing.T) {
	cell := func(x, y float64, n int) []mesh.Vertex {
		out := make([]mesh.Vertex, n)
		for i := range out {
			out[i] = mesh.Vertex{X: x + 0.01*float64(i), Y: y, Z: 5}
		}
		return out
	}
	var verts []mesh.Vertex
	verts = append(verts, cell(0, 0, 20)...) // seed
	verts = append(verts, cell(1, 1, 3)...)  // absorbed
	verts = append(verts, cell(2, 2, 2)...)  // too sparse to continue
	verts = append(verts, cell(-1, 0, 2)...) // too sparse to continue
	verts = append(verts, cell(9, 9, 3)...)  // not adjacent
	require.Zero(t, len(verts)%3)

	res, err := FindClusters(meshtest.Soup("chain", verts), DefaultClusterParams(0))
	require.NoError(t, err)
	require.Len(t, res.Clusters, 1)

	c := res.Clusters[0]
	assert.Equal(t, 23, c.VertexCount)
	assert.Equal(t, []GridCell{{X: 0, Y: 0}, {X: 1, Y: 1}}, c.Cells)
}

func TestFindClustersBandIsStrict(t *testing.T) {
	p := DefaultClusterParams(0)
	var verts []mesh.Vertex
	verts = append(verts, meshtest.Ring(20, 20, 3, p.ZLow, p.ZLow, 40, 1)...)
	verts = append(verts, meshtest.Ring(20, 20, 3, p.ZHigh, p.ZHigh, 40, 1)...)
	verts = append(verts, verts[0])

	res, err := FindClusters(meshtest.Soup("edges", verts), p)
	require.NoError(t, err)
	assert.Zero(t, res.BandVertices)
	assert.Empty(t, res.Clusters)
}

func TestFindClustersEmptyMesh(t *testing.T) {
	res, err := FindClusters(mesh.New("empty", nil), DefaultClusterParams(0))
	require.NoError(t, err)
	assert.Empty(t, res.Clusters)
	assert.Empty(t, res.Mounting)
}

func TestFindClustersMountingRange(t *testing.T) {
	var verts []mesh.Vertex
	verts = append(verts, meshtest.Ring(0, 0, 3, 5, 9, 40, 5)...)   // diameter 6
	verts = append(verts, meshtest.Ring(60, 0, 10, 5, 9, 80, 5)...) // diameter 20

	res, err := FindClusters(meshtest.Soup("mixed", verts), DefaultClusterParams(0))
	require.NoError(t, err)
	require.Len(t, res.Clusters, 2)
	assert.InEpsilon(t, 20, res.Clusters[1].Diameter, 0.1)

	require.Len(t, res.Mounting, 1)
	assert.InDelta(t, 0, res.Mounting[0].CenterX, 0.5)
}

func TestMountingFeaturesInclusive(t *testing.T) {
	clusters := []Cluster{
		{CenterX: 1, Diameter: 3.99},
		{CenterX: 2, Diameter: 4},
		{CenterX: 3, Diameter: 12},
		{CenterX: 4, Diameter: 12.01},
	}
	got := MountingFeatures(clusters, 4, 12)
	require.Len(t, got, 2)
	assert.Equal(t, 2.0, got[0].CenterX)
	assert.Equal(t, 3.0, got[1].CenterX)
}

func TestClusterParamsValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*ClusterParams)
	}{
		{"zero grid", func(p *ClusterParams) { p.GridSize = 0 }},
		{"nan grid", func(p *ClusterParams) { p.GridSize = math.NaN() }},
		{"empty band", func(p *ClusterParams) { p.ZHigh = p.ZLow }},
		{"zero density", func(p *ClusterParams) { p.CellDensity = 0 }},
		{"continue above seed", func(p *ClusterParams) { p.ContinueDensity = p.CellDensity + 1 }},
		{"negative size", func(p *ClusterParams) { p.MinClusterSize = -1 }},
		{"inverted diameters", func(p *ClusterParams) { p.MinDiameter, p.MaxDiameter = 12, 4 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultClusterParams(0)
			tt.modify(&p)
			assert.Error(t, p.Validate())

			_, err := FindClusters(meshtest.Cube(10), p)
			assert.ErrorContains(t, err, "cluster params")
		})
	}
	assert.NoError(t, DefaultClusterParams(-16.3).Validate())
}

func TestBuildGridRoundsHalfToEven(t *testing.T) {
	verts := []mesh.Vertex{
		{X: 0.5, Y: 1.5, Z: 5},
		{X: 2.5, Y: -0.5, Z: 5},
		{X: 0.49, Y: 1.51, Z: 5},
	}
	g := BuildGrid(meshtest.Soup("halves", verts), 0, 10, 1)
	assert.Equal(t, 3, g.Count)
	assert.Len(t, g.Cells[GridCell{X: 0, Y: 2}], 2)
	assert.Len(t, g.Cells[GridCell{X: 2, Y: 0}], 1)
}

func TestDenseCellsOrder(t *testing.T) {
	g := Grid{Size: 1, Cells: map[GridCell][]mesh.Vertex{
		{X: 3, Y: 0}:  make([]mesh.Vertex, 6),
		{X: 1, Y: 5}:  make([]mesh.Vertex, 6),
		{X: 1, Y: 2}:  make([]mesh.Vertex, 6),
		{X: 9, Y: 9}:  make([]mesh.Vertex, 8),
		{X: 0, Y: 0}:  make([]mesh.Vertex, 4),
		{X: -4, Y: 1}: make([]mesh.Vertex, 5),
	}}
	want := []GridCell{{X: 9, Y: 9}, {X: 1, Y: 2}, {X: 1, Y: 5}, {X: 3, Y: 0}, {X: -4, Y: 1}}
	assert.Equal(t, want, g.denseCells(5))
}

package sdfx

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/meshprobe/pkg/analyze"
	"github.com/chazu/meshprobe/pkg/mesh"
)

func TestBox(t *testing.T) {
	k := New()
	m, err := k.ToMesh(k.Box(100, 50, 25), 0)
	require.NoError(t, err)
	require.False(t, m.IsEmpty())
	assert.Equal(t, 3*m.TriangleCount(), m.VertexCount())

	bb, err := analyze.Bounds(m)
	require.NoError(t, err)
	const tol = 0.5
	assert.InDelta(t, 0, bb.Min.X, tol)
	assert.InDelta(t, 0, bb.Min.Z, tol)
	assert.InDelta(t, 100, bb.Max.X, tol)
	assert.InDelta(t, 50, bb.Max.Y, tol)
	assert.InDelta(t, 25, bb.Max.Z, tol)
}

func TestCylinder(t *testing.T) {
	k := New()
	m, err := k.ToMesh(k.Cylinder(50, 10), 100)
	require.NoError(t, err)

	bb, err := analyze.Bounds(m)
	require.NoError(t, err)
	assert.InDelta(t, 0, bb.Center.X, 0.5)
	assert.InDelta(t, 0, bb.Center.Z, 0.5)
	assert.InDelta(t, 20, bb.Size.X, 1)
	assert.InDelta(t, 50, bb.Size.Z, 1)
}

func TestDifference(t *testing.T) {
	k := New()

	box := k.Box(100, 100, 100)
	boxMesh, err := k.ToMesh(box, 100)
	require.NoError(t, err)

	hole := k.Translate(k.Cylinder(120, 20), 50, 50, 50)
	diffMesh, err := k.ToMesh(k.Difference(box, hole), 100)
	require.NoError(t, err)

	// A box with a hole has more surface than a plain box.
	assert.Greater(t, diffMesh.TriangleCount(), boxMesh.TriangleCount())
}

func TestUnion(t *testing.T) {
	k := New()
	u := k.Union(k.Box(50, 50, 50), k.Translate(k.Box(50, 50, 50), 30, 0, 0))
	min, max := u.BoundingBox()
	assert.InDelta(t, 0, min[0], 0.01)
	assert.InDelta(t, 80, max[0], 0.01)

	m, err := k.ToMesh(u, 80)
	require.NoError(t, err)
	assert.False(t, m.IsEmpty())
}

func TestTranslate(t *testing.T) {
	k := New()
	translated := k.Translate(k.Box(10, 10, 10), 100, 200, 300)
	min, max := translated.BoundingBox()

	expectMin := [3]float64{100, 200, 300}
	expectMax := [3]float64{110, 210, 310}
	for i := 0; i < 3; i++ {
		assert.InDelta(t, expectMin[i], min[i], 0.01, "min[%d]", i)
		assert.InDelta(t, expectMax[i], max[i], 0.01, "max[%d]", i)
	}
}

func TestToMeshRoundsToFloat32(t *testing.T) {
	k := New()
	m, err := k.ToMesh(k.Cylinder(7.3, 2.9), 60)
	require.NoError(t, err)

	for _, v := range m.Vertices() {
		for _, c := range []float64{v.X, v.Y, v.Z} {
			require.Equal(t, c, float64(float32(c)))
		}
	}

	// An STL round trip therefore reproduces the mesh exactly.
	var buf bytes.Buffer
	require.NoError(t, mesh.Encode(&buf, m))
	back, err := mesh.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, m.Triangles, back.Triangles)
}

func TestCylinderVerticesOnSurface(t *testing.T) {
	k := New()
	m, err := k.ToMesh(k.Cylinder(20, 5), 80)
	require.NoError(t, err)

	for _, v := range m.Vertices() {
		r := math.Hypot(v.X, v.Y)
		onSide := math.Abs(r-5) < 0.5
		onCap := math.Abs(math.Abs(v.Z)-10) < 0.5
		require.True(t, onSide || onCap, "vertex %+v off the surface", v)
	}
}

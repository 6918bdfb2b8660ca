// Package meshtest builds synthetic meshes for tests: cubes, dense rings that
// stand in for cylindrical standoffs, and scattered background noise.
package meshtest

import (
	"bytes"
	"math"
	"math/rand"
	"testing"

	"github.com/chazu/meshprobe/pkg/mesh"
)

// Cube returns the 12-triangle surface of an axis-aligned cube with its
// minimum corner at the origin.
func Cube(size float64) *mesh.Mesh {
	s := size
	c := [8]mesh.Vertex{
		{X: 0, Y: 0, Z: 0}, {X: s, Y: 0, Z: 0}, {X: s, Y: s, Z: 0}, {X: 0, Y: s, Z: 0},
		{X: 0, Y: 0, Z: s}, {X: s, Y: 0, Z: s}, {X: s, Y: s, Z: s}, {X: 0, Y: s, Z: s},
	}
	quads := [6][4]int{
		{0, 3, 2, 1}, // bottom
		{4, 5, 6, 7}, // top
		{0, 1, 5, 4}, // front
		{2, 3, 7, 6}, // back
		{1, 2, 6, 5}, // right
		{3, 0, 4, 7}, // left
	}
	tris := make([]mesh.Triangle, 0, 12)
	for _, q := range quads {
		tris = append(tris,
			mesh.Triangle{c[q[0]], c[q[1]], c[q[2]]},
			mesh.Triangle{c[q[0]], c[q[2]], c[q[3]]},
		)
	}
	return mesh.New("cube.stl", tris)
}

// Ring returns angles×levels vertices on a circle of radius r around
// (cx, cy), repeated at levels evenly spaced heights from zLow to zHigh.
func Ring(cx, cy, r, zLow, zHigh float64, angles, levels int) []mesh.Vertex {
	out := make([]mesh.Vertex, 0, angles*levels)
	for l := 0; l < levels; l++ {
		z := zLow
		if levels > 1 {
			z = zLow + (zHigh-zLow)*float64(l)/float64(levels-1)
		}
		for a := 0; a < angles; a++ {
			theta := 2 * math.Pi * float64(a) / float64(angles)
			out = append(out, mesh.Vertex{X: cx + r*math.Cos(theta), Y: cy + r*math.Sin(theta), Z: z})
		}
	}
	return out
}

// Scatter returns n vertices drawn uniformly from the box lo..hi, skipping
// any that land within keepOut of one of the avoid points in XY.
func Scatter(rng *rand.Rand, n int, lo, hi mesh.Vertex, keepOut float64, avoid ...mesh.Vertex) []mesh.Vertex {
	out := make([]mesh.Vertex, 0, n)
	for len(out) < n {
		v := mesh.Vertex{
			X: lo.X + rng.Float64()*(hi.X-lo.X),
			Y: lo.Y + rng.Float64()*(hi.Y-lo.Y),
			Z: lo.Z + rng.Float64()*(hi.Z-lo.Z),
		}
		if near(v, keepOut, avoid) {
			continue
		}
		out = append(out, v)
	}
	return out
}

func near(v mesh.Vertex, d float64, pts []mesh.Vertex) bool {
	for _, p := range pts {
		if math.Hypot(v.X-p.X, v.Y-p.Y) < d {
			return true
		}
	}
	return false
}

// Soup groups vertices three at a time into triangles. A short final group
// is padded by repeating its last vertex, which changes per-vertex counts,
// so callers that care should pass a multiple of three.
func Soup(name string, verts []mesh.Vertex) *mesh.Mesh {
	tris := make([]mesh.Triangle, 0, (len(verts)+2)/3)
	for i := 0; i < len(verts); i += 3 {
		var t mesh.Triangle
		for j := 0; j < 3; j++ {
			k := i + j
			if k >= len(verts) {
				k = len(verts) - 1
			}
			t[j] = verts[k]
		}
		tris = append(tris, t)
	}
	return mesh.New(name, tris)
}

// Shuffled returns a copy of m with its triangles in a random order.
func Shuffled(rng *rand.Rand, m *mesh.Mesh) *mesh.Mesh {
	tris := append([]mesh.Triangle(nil), m.Triangles...)
	rng.Shuffle(len(tris), func(i, j int) { tris[i], tris[j] = tris[j], tris[i] })
	return mesh.New(m.Name, tris)
}

// Encoded returns m in the binary STL layout.
func Encoded(t testing.TB, m *mesh.Mesh) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := mesh.Encode(&buf, m); err != nil {
		t.Fatalf("encode %s: %v", m.Name, err)
	}
	return buf.Bytes()
}

// Package mesh holds the triangle-soup representation of a surface mesh and
// the binary STL codec that produces it.
package mesh

// Vertex is a point in model coordinates (millimetres for enclosure parts).
type Vertex struct {
	X, Y, Z float64
}

// Sub returns v - w.
func (v Vertex) Sub(w Vertex) Vertex {
	return Vertex{X: v.X - w.X, Y: v.Y - w.Y, Z: v.Z - w.Z}
}

// Cross returns the cross product v × w.
func (v Vertex) Cross(w Vertex) Vertex {
	return Vertex{
		X: v.Y*w.Z - v.Z*w.Y,
		Y: v.Z*w.X - v.X*w.Z,
		Z: v.X*w.Y - v.Y*w.X,
	}
}

// Triangle is a single facet. It has no identity beyond its three vertices.
type Triangle [3]Vertex

// Mesh is an ordered triangle soup. Triangle order is the order found in the
// source file and carries no meaning for any analysis.
type Mesh struct {
	Name      string           `json:"name"`
	Header    [HeaderSize]byte `json:"-"`
	Triangles []Triangle       `json:"triangles"`
}

// New returns a named mesh over the given triangles.
func New(name string, tris []Triangle) *Mesh {
	return &Mesh{Name: name, Triangles: tris}
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Triangles)
}

// VertexCount returns the number of vertex slots (three per triangle).
// Shared corners are counted once per triangle that uses them.
func (m *Mesh) VertexCount() int {
	return len(m.Triangles) * 3
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return m == nil || len(m.Triangles) == 0
}

// Vertices returns every vertex of every triangle, flattened in triangle order.
func (m *Mesh) Vertices() []Vertex {
	if m.IsEmpty() {
		return nil
	}
	out := make([]Vertex, 0, m.VertexCount())
	for _, tri := range m.Triangles {
		out = append(out, tri[0], tri[1], tri[2])
	}
	return out
}

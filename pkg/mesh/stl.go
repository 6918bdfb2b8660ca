package mesh

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/chazu/meshprobe/pkg/monitoring"
)

const (
	// HeaderSize is the opaque header at the start of a binary STL file.
	HeaderSize = 80
	// RecordSize is the encoded size of one triangle: normal, three
	// vertices and the attribute byte count.
	RecordSize = 50

	// maxPrealloc caps how far a declared triangle count is trusted before
	// any record has been read.
	maxPrealloc = 1 << 20
)

// short name, for convenience
var le = binary.LittleEndian

// Decode reads a binary STL stream. The header and every normal and
// attribute field are ignored. Degenerate or duplicate triangles are
// returned as found.
func Decode(r io.Reader) (*Mesh, error) {
	br := bufio.NewReader(r)
	m := &Mesh{}

	if _, err := io.ReadFull(br, m.Header[:]); err != nil {
		return nil, &FormatError{Op: "header", Err: err}
	}

	var buf [RecordSize]byte
	if _, err := io.ReadFull(br, buf[:4]); err != nil {
		return nil, &FormatError{Op: "count", Err: err}
	}
	n := le.Uint32(buf[:4])

	m.Triangles = make([]Triangle, 0, min(int(n), maxPrealloc))
	for i := uint32(0); i < n; i++ {
		if _, err := io.ReadFull(br, buf[:]); err != nil {
			return nil, &FormatError{Op: "triangle", Triangle: int(i), Declared: n, Err: err}
		}
		m.Triangles = append(m.Triangles, Triangle{
			getVertex(buf[12:24]),
			getVertex(buf[24:36]),
			getVertex(buf[36:48]),
		})
	}

	if extra, _ := io.Copy(io.Discard, br); extra > 0 {
		monitoring.Logf("mesh: ignoring %d trailing bytes after %d triangles", extra, n)
	}
	return m, nil
}

// Load decodes the binary STL file at path. The mesh is named after the
// file's base name.
func Load(path string) (*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	m.Name = filepath.Base(path)
	return m, nil
}

// Encode writes m in the binary STL layout. The facet normal is derived from
// the vertex winding and the attribute field is written as zero.
func Encode(w io.Writer, m *Mesh) error {
	bw := bufio.NewWriter(w)

	var buf [RecordSize]byte
	header := m.Header
	if header == ([HeaderSize]byte{}) && m.Name != "" {
		copy(header[:], m.Name)
	}
	if _, err := bw.Write(header[:]); err != nil {
		return err
	}
	if uint64(len(m.Triangles)) > math.MaxUint32 {
		return fmt.Errorf("mesh: %d triangles exceed the binary STL limit", len(m.Triangles))
	}
	le.PutUint32(buf[:4], uint32(len(m.Triangles)))
	if _, err := bw.Write(buf[:4]); err != nil {
		return err
	}

	for _, tri := range m.Triangles {
		putVertex(buf[0:12], facetNormal(tri))
		putVertex(buf[12:24], tri[0])
		putVertex(buf[24:36], tri[1])
		putVertex(buf[36:48], tri[2])
		le.PutUint16(buf[48:], 0)
		if _, err := bw.Write(buf[:]); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Save writes m to path in the binary STL layout.
func Save(path string, m *Mesh) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Encode(f, m); err != nil {
		f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	return f.Close()
}

func getVertex(b []byte) Vertex {
	_ = b[:12]
	return Vertex{
		X: float64(math.Float32frombits(le.Uint32(b[0:4]))),
		Y: float64(math.Float32frombits(le.Uint32(b[4:8]))),
		Z: float64(math.Float32frombits(le.Uint32(b[8:12]))),
	}
}

func putVertex(b []byte, v Vertex) {
	_ = b[:12]
	le.PutUint32(b[0:4], math.Float32bits(float32(v.X)))
	le.PutUint32(b[4:8], math.Float32bits(float32(v.Y)))
	le.PutUint32(b[8:12], math.Float32bits(float32(v.Z)))
}

// facetNormal returns the unit normal implied by counter-clockwise winding,
// or the zero vector for a degenerate triangle.
func facetNormal(t Triangle) Vertex {
	n := t[1].Sub(t[0]).Cross(t[2].Sub(t[0]))
	l := math.Sqrt(n.X*n.X + n.Y*n.Y + n.Z*n.Z)
	if l == 0 {
		return Vertex{}
	}
	return Vertex{X: n.X / l, Y: n.Y / l, Z: n.Z / l}
}

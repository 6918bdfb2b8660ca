package mesh_test

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/meshprobe/pkg/mesh"
	"github.com/chazu/meshprobe/pkg/meshtest"
	"github.com/chazu/meshprobe/pkg/monitoring"
)

// f32 returns a value that survives a float32 round trip unchanged.
func f32(rng *rand.Rand, scale float64) float64 {
	return float64(float32((rng.Float64() - 0.5) * scale))
}

func randomMesh(rng *rand.Rand, n int) *mesh.Mesh {
	tris := make([]mesh.Triangle, n)
	for i := range tris {
		for j := 0; j < 3; j++ {
			tris[i][j] = mesh.Vertex{X: f32(rng, 200), Y: f32(rng, 200), Z: f32(rng, 50)}
		}
	}
	return mesh.New("random", tris)
}

func TestDecodeRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for _, n := range []int{0, 1, 12, 997} {
		t.Run(fmt.Sprintf("%d triangles", n), func(t *testing.T) {
			want := randomMesh(rng, n)
			data := meshtest.Encoded(t, want)
			require.Len(t, data, mesh.HeaderSize+4+mesh.RecordSize*n)

			got, err := mesh.Decode(bytes.NewReader(data))
			require.NoError(t, err)
			if diff := cmp.Diff(want.Triangles, got.Triangles); diff != "" {
				t.Errorf("triangles differ after round trip (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecodeIgnoresNormalAndAttribute(t *testing.T) {
	data := meshtest.Encoded(t, meshtest.Cube(10))
	// Scribble over the first record's normal and attribute bytes.
	rec := data[mesh.HeaderSize+4:]
	binary.LittleEndian.PutUint32(rec[0:4], 0xdeadbeef)
	binary.LittleEndian.PutUint16(rec[48:50], 0xffff)

	got, err := mesh.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, meshtest.Cube(10).Triangles, got.Triangles)
}

func TestDecodeFormatErrors(t *testing.T) {
	full := meshtest.Encoded(t, meshtest.Cube(10))

	tests := []struct {
		name   string
		data   []byte
		op     string
		triIdx int
	}{
		{"empty stream", nil, "header", 0},
		{"short header", full[:40], "header", 0},
		{"missing count", full[:mesh.HeaderSize], "count", 0},
		{"partial count", full[:mesh.HeaderSize+2], "count", 0},
		{"no records", full[:mesh.HeaderSize+4], "triangle", 0},
		{"truncated mid record", full[:mesh.HeaderSize+4+mesh.RecordSize*3+20], "triangle", 3},
		{"last record short", full[:len(full)-1], "triangle", 11},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := mesh.Decode(bytes.NewReader(tt.data))
			require.Error(t, err)
			assert.Nil(t, m)

			var fe *mesh.FormatError
			require.True(t, errors.As(err, &fe), "want *FormatError, got %T", err)
			assert.Equal(t, tt.op, fe.Op)
			if tt.op == "triangle" {
				assert.Equal(t, tt.triIdx, fe.Triangle)
				assert.Equal(t, uint32(12), fe.Declared)
			}
			assert.True(t, errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF))
		})
	}
}

func TestDecodeTrailingBytesLogged(t *testing.T) {
	original := monitoring.Logf
	defer func() { monitoring.Logf = original }()

	var logged []string
	monitoring.SetLogger(func(format string, v ...interface{}) {
		logged = append(logged, fmt.Sprintf(format, v...))
	})

	data := append(meshtest.Encoded(t, meshtest.Cube(10)), 1, 2, 3)
	m, err := mesh.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 12, m.TriangleCount())
	require.Len(t, logged, 1)
	assert.Contains(t, logged[0], "3 trailing bytes")
}

func TestLoadAndSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lid.stl")
	require.NoError(t, mesh.Save(path, meshtest.Cube(10)))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, int64(84+50*12), info.Size())

	m, err := mesh.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "lid.stl", m.Name)
	assert.Equal(t, 12, m.TriangleCount())
	assert.Equal(t, 36, m.VertexCount())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := mesh.Load(filepath.Join(t.TempDir(), "missing.stl"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLoadTruncatedFileNamesPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "base.stl")
	data := meshtest.Encoded(t, meshtest.Cube(10))
	require.NoError(t, os.WriteFile(path, data[:100], 0o644))

	_, err := mesh.Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), path)
	var fe *mesh.FormatError
	assert.True(t, errors.As(err, &fe))
}

func TestEncodeWritesUnitNormals(t *testing.T) {
	data := meshtest.Encoded(t, meshtest.Cube(10))
	got, err := mesh.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, 12, got.TriangleCount())

	// The first cube facet is on the bottom face and winds downward.
	rec := data[mesh.HeaderSize+4:]
	var n [3]float32
	require.NoError(t, binary.Read(bytes.NewReader(rec[:12]), binary.LittleEndian, &n))
	assert.Equal(t, [3]float32{0, 0, -1}, n)
}

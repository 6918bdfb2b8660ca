package params

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleSCAD = `// Enclosure parameters
$fn = 64;

wall_thickness = 2.5;
rj45_cutout_w  = 17.0;   // housing 16 + clearance
rj45_cutout_h=14.5;
rj45_overhang = 4.318;
support_post_board_x = -12;
inner_w = case_w - 2 * wall_thickness;
version = 1.2.3;
  terminal_cutout_w = 18.4;
label = "base";
`

func TestParse(t *testing.T) {
	tbl, err := Parse(strings.NewReader(sampleSCAD))
	require.NoError(t, err)

	assert.Equal(t, Table{
		"wall_thickness":       2.5,
		"rj45_cutout_w":        17.0,
		"rj45_cutout_h":        14.5,
		"rj45_overhang":        4.318,
		"support_post_board_x": -12,
		"terminal_cutout_w":    18.4,
	}, tbl)
}

func TestParseSkips(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"comment", "// wall_thickness = 3;"},
		{"special variable", "$fa = 12;"},
		{"expression", "inner = outer - 4;"},
		{"no semicolon", "wall = 3"},
		{"string", `name = "lid";`},
		{"malformed number", "v = 1.2.3;"},
		{"bare dot", "v = .;"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl, err := Parse(strings.NewReader(tt.line))
			require.NoError(t, err)
			assert.Empty(t, tbl)
		})
	}
}

func TestParseLastAssignmentWins(t *testing.T) {
	tbl, err := Parse(strings.NewReader("w = 1;\nw = 2;\n"))
	require.NoError(t, err)
	assert.Equal(t, 2.0, tbl.Get("w", 0))
}

func TestGetAndNames(t *testing.T) {
	tbl := Table{"b": 2, "a": 1, "c": 3}
	assert.Equal(t, 1.0, tbl.Get("a", 9))
	assert.Equal(t, 9.0, tbl.Get("missing", 9))
	assert.Equal(t, []string{"a", "b", "c"}, tbl.Names())

	var empty Table
	assert.Equal(t, 4.0, empty.Get("x", 4))
	assert.Empty(t, empty.Names())
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.scad")
	require.NoError(t, os.WriteFile(path, []byte(sampleSCAD), 0644))

	tbl, err := LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, tbl, 6)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.scad"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

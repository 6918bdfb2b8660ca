package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/meshprobe/pkg/analyze"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestEmptyConfigDefaults(t *testing.T) {
	cfg := EmptyConfig()
	assert.Equal(t, analyze.DefaultLayerParams(), cfg.GetLayerParams())
	assert.Equal(t, analyze.DefaultClusterParams(-16.3), cfg.GetClusterParams(-16.3))
	assert.Equal(t, 0.5, cfg.GetFaceTolerance())
	assert.Equal(t, 1.0, cfg.GetWallTolerance())
	assert.Equal(t, DefaultEnclosure(), cfg.GetEnclosure())
	assert.Equal(t, 7.5, cfg.GetFloorZ(7.5))
	require.NoError(t, cfg.Validate())
}

func TestDefaultConfigMatchesAccessors(t *testing.T) {
	full, empty := DefaultConfig(), EmptyConfig()
	assert.Equal(t, empty.GetLayerParams(), full.GetLayerParams())
	assert.Equal(t, empty.GetClusterParams(2), full.GetClusterParams(2))
	assert.Equal(t, empty.GetFaceTolerance(), full.GetFaceTolerance())
	assert.Equal(t, empty.GetWallTolerance(), full.GetWallTolerance())
	assert.Equal(t, empty.GetEnclosure(), full.GetEnclosure())
}

func TestDefaultsFileMatchesDefaultConfig(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join("..", "..", DefaultConfigPath))
	require.NoError(t, err)
	if diff := cmp.Diff(DefaultConfig(), cfg); diff != "" {
		t.Errorf("defaults file drifted from DefaultConfig (-want +got):\n%s", diff)
	}
}

func TestLoadConfigPartial(t *testing.T) {
	path := writeConfig(t, "partial.json", `{
  "floor_z": -16.3,
  "grid_size": 0.5,
  "min_cluster_size": 40,
  "enclosure": {"wall_thickness": 3.0, "rj45": {"height": 14}}
}`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, -16.3, cfg.GetFloorZ(0))
	p := cfg.GetClusterParams(cfg.GetFloorZ(0))
	assert.Equal(t, 0.5, p.GridSize)
	assert.Equal(t, 40, p.MinClusterSize)
	assert.InDelta(t, -15.3, p.ZLow, 1e-9)
	assert.Equal(t, analyze.DefaultCellDensity, p.CellDensity)

	enc := cfg.GetEnclosure()
	assert.Equal(t, 3.0, enc.WallThickness)
	assert.Equal(t, 14.0, enc.RJ45.Height)
	assert.Equal(t, DefaultEnclosure().RJ45.OffsetY, enc.RJ45.OffsetY)
	assert.Equal(t, DefaultEnclosure().ShieldWidth, enc.ShieldWidth)
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		path    func(t *testing.T) string
		wantErr string
	}{
		{
			name:    "wrong extension",
			path:    func(t *testing.T) string { return writeConfig(t, "cfg.yaml", "{}") },
			wantErr: ".json extension",
		},
		{
			name:    "missing file",
			path:    func(t *testing.T) string { return "/nonexistent/path/config.json" },
			wantErr: "failed to stat",
		},
		{
			name: "too large",
			path: func(t *testing.T) string {
				return writeConfig(t, "big.json", `{"x":"`+strings.Repeat("a", maxFileSize)+`"}`)
			},
			wantErr: "too large",
		},
		{
			name:    "bad json",
			path:    func(t *testing.T) string { return writeConfig(t, "bad.json", `{"grid_size": "wide"`) },
			wantErr: "failed to parse",
		},
		{
			name:    "invalid values",
			path:    func(t *testing.T) string { return writeConfig(t, "neg.json", `{"grid_size": -1}`) },
			wantErr: "invalid configuration",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(tt.path(t))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"empty", Config{}, false},
		{"zero layer tolerance", Config{LayerTolerance: ptrFloat64(0)}, true},
		{"fraction above one", Config{LayerMinFraction: ptrFloat64(1.5)}, true},
		{"negative face tolerance", Config{FaceTolerance: ptrFloat64(-0.5)}, true},
		{"zero wall tolerance", Config{WallTolerance: ptrFloat64(0)}, true},
		{"inverted band", Config{BandLowOffset: ptrFloat64(12), BandHighOffset: ptrFloat64(1)}, true},
		{"continue above seed", Config{ContinueDensity: ptrInt(9)}, true},
		{"inverted diameters", Config{MinDiameter: ptrFloat64(20)}, true},
		{"negative wall", Config{Enclosure: &Enclosure{WallThickness: -1}}, true},
		{"custom valid", Config{GridSize: ptrFloat64(0.25), CellDensity: ptrInt(8)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// Package config loads the JSON analysis settings. Every field is optional;
// the Get* accessors fall back to the built-in defaults, so partial files
// are safe.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/chazu/meshprobe/pkg/analyze"
)

// DefaultConfigPath is the canonical defaults file, relative to the repo root.
const DefaultConfigPath = "config/meshprobe.defaults.json"

// DefaultWallTolerance is the slab half-width used to find a wall opening.
const DefaultWallTolerance = 1.0

const maxFileSize = 1 * 1024 * 1024 // 1MB

// Config is the root of the settings file.
type Config struct {
	// Layer detection
	LayerTolerance   *float64 `json:"layer_tolerance,omitempty"`
	LayerMinFraction *float64 `json:"layer_min_fraction,omitempty"`

	// Standoff clustering. The band is placed relative to the floor, which
	// defaults to the mesh minimum Z unless FloorZ is set.
	FloorZ          *float64 `json:"floor_z,omitempty"`
	BandLowOffset   *float64 `json:"band_low_offset,omitempty"`
	BandHighOffset  *float64 `json:"band_high_offset,omitempty"`
	GridSize        *float64 `json:"grid_size,omitempty"`
	CellDensity     *int     `json:"cell_density,omitempty"`
	ContinueDensity *int     `json:"continue_density,omitempty"`
	MinClusterSize  *int     `json:"min_cluster_size,omitempty"`
	MinDiameter     *float64 `json:"min_diameter,omitempty"`
	MaxDiameter     *float64 `json:"max_diameter,omitempty"`

	// Face and wall extents
	FaceTolerance *float64 `json:"face_tolerance,omitempty"`
	WallTolerance *float64 `json:"wall_tolerance,omitempty"`

	Enclosure *Enclosure `json:"enclosure,omitempty"`
}

func ptrFloat64(v float64) *float64 { return &v }
func ptrInt(v int) *int             { return &v }

// EmptyConfig returns a Config with every field unset.
func EmptyConfig() *Config {
	return &Config{}
}

// DefaultConfig returns a Config with every field set to its default.
func DefaultConfig() *Config {
	enc := DefaultEnclosure()
	return &Config{
		LayerTolerance:   ptrFloat64(analyze.DefaultLayerTolerance),
		LayerMinFraction: ptrFloat64(analyze.DefaultLayerFraction),
		BandLowOffset:    ptrFloat64(analyze.DefaultBandLowOffset),
		BandHighOffset:   ptrFloat64(analyze.DefaultBandHighOffset),
		GridSize:         ptrFloat64(analyze.DefaultGridSize),
		CellDensity:      ptrInt(analyze.DefaultCellDensity),
		ContinueDensity:  ptrInt(analyze.DefaultContinueDensity),
		MinClusterSize:   ptrInt(analyze.DefaultMinClusterSize),
		MinDiameter:      ptrFloat64(analyze.DefaultMinDiameter),
		MaxDiameter:      ptrFloat64(analyze.DefaultMaxDiameter),
		FaceTolerance:    ptrFloat64(analyze.DefaultFaceTolerance),
		WallTolerance:    ptrFloat64(DefaultWallTolerance),
		Enclosure:        &enc,
	}
}

// LoadConfig reads a Config from a JSON file. The path must have a .json
// extension and the file must be under 1MB.
func LoadConfig(path string) (*Config, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks the fields that are set, and the cluster parameters they
// combine into.
func (c *Config) Validate() error {
	if c.LayerTolerance != nil && *c.LayerTolerance <= 0 {
		return fmt.Errorf("layer_tolerance must be positive, got %f", *c.LayerTolerance)
	}
	if c.LayerMinFraction != nil {
		if f := *c.LayerMinFraction; f < 0 || f > 1 {
			return fmt.Errorf("layer_min_fraction must be between 0 and 1, got %f", f)
		}
	}
	if c.FaceTolerance != nil && *c.FaceTolerance <= 0 {
		return fmt.Errorf("face_tolerance must be positive, got %f", *c.FaceTolerance)
	}
	if c.WallTolerance != nil && *c.WallTolerance <= 0 {
		return fmt.Errorf("wall_tolerance must be positive, got %f", *c.WallTolerance)
	}
	if err := c.GetClusterParams(0).Validate(); err != nil {
		return err
	}
	if c.Enclosure != nil {
		if err := c.Enclosure.Validate(); err != nil {
			return fmt.Errorf("enclosure: %w", err)
		}
	}
	return nil
}

// GetLayerParams returns the layer detection settings.
func (c *Config) GetLayerParams() analyze.LayerParams {
	p := analyze.DefaultLayerParams()
	if c.LayerTolerance != nil {
		p.Tolerance = *c.LayerTolerance
	}
	if c.LayerMinFraction != nil {
		p.MinFraction = *c.LayerMinFraction
	}
	return p
}

// GetFloorZ returns the configured floor height, or fallback when unset.
func (c *Config) GetFloorZ(fallback float64) float64 {
	if c.FloorZ == nil {
		return fallback
	}
	return *c.FloorZ
}

// GetClusterParams returns the clustering settings with the Z band placed
// relative to floorZ.
func (c *Config) GetClusterParams(floorZ float64) analyze.ClusterParams {
	p := analyze.DefaultClusterParams(floorZ)
	if c.BandLowOffset != nil {
		p.ZLow = floorZ + *c.BandLowOffset
	}
	if c.BandHighOffset != nil {
		p.ZHigh = floorZ + *c.BandHighOffset
	}
	if c.GridSize != nil {
		p.GridSize = *c.GridSize
	}
	if c.CellDensity != nil {
		p.CellDensity = *c.CellDensity
	}
	if c.ContinueDensity != nil {
		p.ContinueDensity = *c.ContinueDensity
	}
	if c.MinClusterSize != nil {
		p.MinClusterSize = *c.MinClusterSize
	}
	if c.MinDiameter != nil {
		p.MinDiameter = *c.MinDiameter
	}
	if c.MaxDiameter != nil {
		p.MaxDiameter = *c.MaxDiameter
	}
	return p
}

// GetFaceTolerance returns the face_tolerance value or the default.
func (c *Config) GetFaceTolerance() float64 {
	if c.FaceTolerance == nil {
		return analyze.DefaultFaceTolerance
	}
	return *c.FaceTolerance
}

// GetWallTolerance returns the wall_tolerance value or the default.
func (c *Config) GetWallTolerance() float64 {
	if c.WallTolerance == nil {
		return DefaultWallTolerance
	}
	return *c.WallTolerance
}

// GetEnclosure returns the enclosure geometry or the default board stack.
func (c *Config) GetEnclosure() Enclosure {
	if c.Enclosure == nil {
		return DefaultEnclosure()
	}
	return *c.Enclosure
}

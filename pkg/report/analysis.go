// Package report gathers the measurements of a mesh into an Analysis and
// renders it as a text report, a layer histogram plot or a cluster chart.
package report

import (
	"fmt"
	"strings"

	"github.com/chazu/meshprobe/pkg/analyze"
	"github.com/chazu/meshprobe/pkg/config"
	"github.com/chazu/meshprobe/pkg/mesh"
	"github.com/chazu/meshprobe/pkg/monitoring"
)

// Analysis is everything measured on one mesh.
type Analysis struct {
	Name      string               `json:"name"`
	Triangles int                  `json:"triangles"`
	Box       analyze.BoundingBox  `json:"bbox"`
	Layers    []float64            `json:"layers"`
	Histogram []analyze.ZBucket    `json:"-"`
	Threshold float64              `json:"layer_threshold"`
	TopFace   []analyze.FaceExtent `json:"top_face,omitempty"`
	Features  *Features            `json:"features,omitempty"`
}

// Features is the standoff search result for a feature-bearing mesh.
type Features struct {
	FloorZ    float64               `json:"floor_z"`
	Params    analyze.ClusterParams `json:"params"`
	Result    analyze.ClusterResult `json:"result"`
	RightWall *analyze.SliceExtent  `json:"right_wall,omitempty"`
}

// Options selects the optional passes of Analyze.
type Options struct {
	Config *config.Config // nil uses config.DefaultConfig

	// Standoffs runs the cluster pass whatever the mesh is called.
	Standoffs bool

	// FloorZ overrides the floor height, which otherwise comes from the
	// config or the bounding box minimum Z.
	FloorZ *float64
	// Params overrides the cluster parameters derived from Config.
	Params *analyze.ClusterParams

	// RightWall adds the +X wall slice to the feature pass.
	RightWall bool
}

// IsTopMesh reports whether a mesh name marks a lid or top part.
func IsTopMesh(name string) bool {
	n := strings.ToLower(name)
	return strings.Contains(n, "lid") || strings.Contains(n, "top")
}

// IsBaseMesh reports whether a mesh name marks a feature-bearing base.
func IsBaseMesh(name string) bool {
	return strings.Contains(strings.ToLower(name), "base")
}

// Analyze runs the bounding box and layer passes on m, the top-face pass
// for lids and the standoff pass for bases (or when opts.Standoffs is set).
func Analyze(m *mesh.Mesh, opts Options) (*Analysis, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	box, err := analyze.Bounds(m)
	if err != nil {
		return nil, err
	}

	lp := cfg.GetLayerParams()
	a := &Analysis{
		Name:      m.Name,
		Triangles: m.TriangleCount(),
		Box:       box,
		Layers:    analyze.DetectLayers(m, lp),
		Histogram: analyze.ZHistogram(m, lp.Tolerance),
		Threshold: analyze.LayerThreshold(m, lp),
	}

	if IsTopMesh(m.Name) {
		a.TopFace = analyze.FaceExtents(m, analyze.FaceParams{
			Axis:      analyze.AxisZ,
			Tolerance: cfg.GetFaceTolerance(),
		})
	}

	if opts.Standoffs || IsBaseMesh(m.Name) {
		floor := cfg.GetFloorZ(box.Min.Z)
		if opts.FloorZ != nil {
			floor = *opts.FloorZ
		}
		params := cfg.GetClusterParams(floor)
		if opts.Params != nil {
			params = *opts.Params
		}
		res, err := analyze.FindClusters(m, params)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", m.Name, err)
		}
		monitoring.Logf("report: %s: %d band vertices, %d dense cells, %d clusters",
			m.Name, res.BandVertices, res.DenseCells, len(res.Clusters))

		a.Features = &Features{FloorZ: floor, Params: params, Result: res}
		if opts.RightWall {
			if s, ok := analyze.AxisSlice(m, analyze.AxisX, box.Max.X, cfg.GetWallTolerance()); ok {
				a.Features.RightWall = &s
			}
		}
	}
	return a, nil
}

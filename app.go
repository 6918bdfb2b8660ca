package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chazu/meshprobe/pkg/analyze"
	"github.com/chazu/meshprobe/pkg/config"
	"github.com/chazu/meshprobe/pkg/engine"
	"github.com/chazu/meshprobe/pkg/kernel"
	"github.com/chazu/meshprobe/pkg/kernel/manifold"
	"github.com/chazu/meshprobe/pkg/kernel/sdfx"
	"github.com/chazu/meshprobe/pkg/mesh"
	"github.com/chazu/meshprobe/pkg/monitoring"
	"github.com/chazu/meshprobe/pkg/params"
	"github.com/chazu/meshprobe/pkg/report"
	"github.com/chazu/meshprobe/pkg/store"
	"github.com/chazu/meshprobe/pkg/tessellate"
	"github.com/chazu/meshprobe/pkg/verify"
)

// DefaultGlob selects the meshes analysed when no files are given.
const DefaultGlob = "original/*.stl"

var (
	errNoFiles      = errors.New("no STL files found")
	errChecksFailed = errors.New("some verifications failed")
	errPlacement    = errors.New("board placement has collisions")
)

// App is the command backend shared by every subcommand. Reports go to out;
// diagnostics go through monitoring.Logf.
type App struct {
	cfg    *config.Config
	engine *engine.Engine
	kernel kernel.Kernel
	out    io.Writer
}

// NewApp creates an App with the built-in defaults and the sdfx kernel.
func NewApp(out io.Writer) *App {
	return &App{
		cfg:    config.DefaultConfig(),
		engine: engine.NewEngine(),
		kernel: sdfx.New(),
		out:    out,
	}
}

// LoadConfig replaces the defaults with the JSON config at path. Values the
// file omits keep their defaults.
func (a *App) LoadConfig(path string) error {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return err
	}
	a.cfg = cfg
	return nil
}

// UseKernel selects the geometry kernel Synth tessellates with: "sdfx"
// (marching cubes) or "manifold" (exact, needs -tags=manifold).
func (a *App) UseKernel(name string) error {
	switch name {
	case "", "sdfx":
		a.kernel = sdfx.New()
	case "manifold":
		k, err := manifold.New()
		if err != nil {
			return err
		}
		a.kernel = k
	default:
		return fmt.Errorf("unknown kernel %q", name)
	}
	return nil
}

// AnalyzeOptions selects the optional outputs of AnalyzeFiles.
type AnalyzeOptions struct {
	Standoffs bool   // run the standoff pass on every file
	PlotDir   string // write <name>_layers.png here
	HTMLDir   string // write <name>_clusters.html here for files with clusters
	DBPath    string // record each run in this sqlite database
}

// defaultFiles lists the meshes under DefaultGlob in lexical order.
func defaultFiles() []string {
	files, _ := filepath.Glob(DefaultGlob)
	return files
}

// AnalyzeFiles reports on each file in turn. A file that cannot be read or
// analysed is logged and skipped; the error then counts the failures.
func (a *App) AnalyzeFiles(files []string, opts AnalyzeOptions) error {
	if len(files) == 0 {
		return errNoFiles
	}

	var st *store.Store
	if opts.DBPath != "" {
		var err error
		if st, err = store.Open(opts.DBPath); err != nil {
			return fmt.Errorf("open run history: %w", err)
		}
		defer st.Close()
	}

	failed := 0
	for _, path := range files {
		if err := a.analyzeFile(path, opts, st); err != nil {
			monitoring.Logf("analyze: %v", err)
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(files))
	}
	return nil
}

func (a *App) analyzeFile(path string, opts AnalyzeOptions, st *store.Store) error {
	// Step 1: Decode the mesh.
	m, err := mesh.Load(path)
	if err != nil {
		return err
	}

	// Step 2: Run the measurement passes and print the report.
	an, err := report.Analyze(m, report.Options{Config: a.cfg, Standoffs: opts.Standoffs})
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if err := report.WriteText(a.out, an); err != nil {
		return err
	}

	// Step 3: Optional plot, chart and history outputs.
	stem := strings.TrimSuffix(m.Name, filepath.Ext(m.Name))
	if opts.PlotDir != "" {
		if err := os.MkdirAll(opts.PlotDir, 0o755); err != nil {
			return err
		}
		if err := report.SaveLayerPlot(filepath.Join(opts.PlotDir, stem+"_layers.png"), an); err != nil {
			return err
		}
	}
	if opts.HTMLDir != "" && an.Features != nil {
		if err := writeClusterChart(filepath.Join(opts.HTMLDir, stem+"_clusters.html"), an); err != nil {
			return err
		}
	}
	if st != nil {
		if err := recordRun(st, an); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	return nil
}

// jsonParams records the cluster settings a run was measured with.
func jsonParams(f *report.Features) ([]byte, error) {
	return json.Marshal(struct {
		FloorZ float64 `json:"floor_z"`
		analyze.ClusterParams
	}{f.FloorZ, f.Params})
}

func writeClusterChart(path string, an *report.Analysis) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := report.ClusterChart(f, an); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func recordRun(st *store.Store, an *report.Analysis) error {
	var res *analyze.ClusterResult
	var paramsJSON []byte
	if an.Features != nil {
		res = &an.Features.Result
		var err error
		if paramsJSON, err = jsonParams(an.Features); err != nil {
			return err
		}
	}
	run := store.NewRun(an.Name, an.Triangles, an.Box, an.Layers, res)
	run.ParamsJSON = paramsJSON
	if err := st.Insert(run); err != nil {
		return err
	}
	monitoring.Logf("store: recorded run %s for %s", run.RunID, an.Name)
	return nil
}

// StandoffOptions overrides the configured clustering parameters. Nil
// fields keep the configured value.
type StandoffOptions struct {
	FloorZ          *float64
	ZMinOffset      *float64
	ZMaxOffset      *float64
	GridSize        *float64
	CellDensity     *int
	ContinueDensity *int
	MinClusterSize  *int
	MinDiameter     *float64
	MaxDiameter     *float64
	HTMLPath        string
}

// apply places the band relative to floor and applies the overrides.
func (o StandoffOptions) apply(p *analyze.ClusterParams, floor float64) {
	if o.ZMinOffset != nil {
		p.ZLow = floor + *o.ZMinOffset
	}
	if o.ZMaxOffset != nil {
		p.ZHigh = floor + *o.ZMaxOffset
	}
	if o.GridSize != nil {
		p.GridSize = *o.GridSize
	}
	if o.CellDensity != nil {
		p.CellDensity = *o.CellDensity
	}
	if o.ContinueDensity != nil {
		p.ContinueDensity = *o.ContinueDensity
	}
	if o.MinClusterSize != nil {
		p.MinClusterSize = *o.MinClusterSize
	}
	if o.MinDiameter != nil {
		p.MinDiameter = *o.MinDiameter
	}
	if o.MaxDiameter != nil {
		p.MaxDiameter = *o.MaxDiameter
	}
}

// Standoffs runs the full standoff report on one base mesh, including the
// +X wall opening scan.
func (a *App) Standoffs(path string, opts StandoffOptions) (*report.Analysis, error) {
	m, err := mesh.Load(path)
	if err != nil {
		return nil, err
	}
	bb, err := analyze.Bounds(m)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	floor := a.cfg.GetFloorZ(bb.Min.Z)
	if opts.FloorZ != nil {
		floor = *opts.FloorZ
	}
	p := a.cfg.GetClusterParams(floor)
	opts.apply(&p, floor)

	an, err := report.Analyze(m, report.Options{
		Config:    a.cfg,
		Standoffs: true,
		FloorZ:    &floor,
		Params:    &p,
		RightWall: true,
	})
	if err != nil {
		return nil, err
	}
	if err := report.WriteText(a.out, an); err != nil {
		return nil, err
	}
	if opts.HTMLPath != "" {
		if err := writeClusterChart(opts.HTMLPath, an); err != nil {
			return nil, err
		}
	}
	return an, nil
}

// Verify evaluates a rule script against a parameter file and prints the
// verification report. An empty rulesPath selects the bundled alignment
// rules. It returns errChecksFailed when any check fails.
func (a *App) Verify(paramsPath, rulesPath string) error {
	// Step 1: Read the design parameters and the rules.
	table, err := params.LoadFile(paramsPath)
	if err != nil {
		return err
	}
	source := verify.AlignmentRules
	if rulesPath != "" {
		b, err := os.ReadFile(rulesPath)
		if err != nil {
			return err
		}
		source = string(b)
	}
	monitoring.Logf("verify: %d parameters from %s", len(table), paramsPath)

	// Step 2: Evaluate the rules.
	results, evalErrs, err := a.engine.Evaluate(source, table)
	if err != nil {
		return fmt.Errorf("evaluate rules: %w", err)
	}
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			monitoring.Logf("verify: rule error: %v", e)
		}
		return fmt.Errorf("rules: %w", evalErrs[0])
	}

	// Step 3: Report.
	passed, err := verify.WriteReport(a.out, results)
	if err != nil {
		return err
	}
	if !passed {
		return errChecksFailed
	}
	return nil
}

// Positions prints the board placement report for the case whose outer
// envelope is the bounding box of the mesh at path. With strict set,
// collisions are returned as errPlacement.
func (a *App) Positions(path string, strict bool) (verify.PlacementReport, error) {
	m, err := mesh.Load(path)
	if err != nil {
		return verify.PlacementReport{}, err
	}
	bb, err := analyze.Bounds(m)
	if err != nil {
		return verify.PlacementReport{}, fmt.Errorf("%s: %w", path, err)
	}

	r := verify.Placement(a.cfg.GetEnclosure(), bb)
	if err := r.WriteText(a.out); err != nil {
		return r, err
	}
	if strict && !r.Passed() {
		return r, errPlacement
	}
	return r, nil
}

// Synth writes a reference enclosure base tessellated through the kernel.
func (a *App) Synth(out string, p tessellate.BaseParams) (*mesh.Mesh, error) {
	model, err := tessellate.BaseModel(filepath.Base(out), p)
	if err != nil {
		return nil, err
	}
	m, err := tessellate.Tessellate(model, a.kernel)
	if err != nil {
		return nil, err
	}
	if err := mesh.Save(out, m); err != nil {
		return nil, err
	}
	fmt.Fprintf(a.out, "Wrote %s: %d triangles, floor top at Z=%.2f\n", out, m.TriangleCount(), p.FloorTop())
	return m, nil
}

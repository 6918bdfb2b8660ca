package analyze

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/chazu/meshprobe/pkg/mesh"
)

// Defaults for standoff clustering. They were tuned against one base mesh's
// triangulation density; meshes exported at a different resolution usually
// need their own values.
const (
	DefaultGridSize        = 1.0
	DefaultCellDensity     = 5
	DefaultContinueDensity = 3
	DefaultMinClusterSize  = 20
	DefaultMinDiameter     = 4.0
	DefaultMaxDiameter     = 12.0

	// DefaultBandLowOffset and DefaultBandHighOffset place the search band
	// relative to the floor: standoffs are typically 3-8 mm tall.
	DefaultBandLowOffset  = 1.0
	DefaultBandHighOffset = 12.0
)

// ClusterParams configures FindClusters.
type ClusterParams struct {
	ZLow            float64 `json:"z_low"` // vertices must satisfy ZLow < z < ZHigh
	ZHigh           float64 `json:"z_high"`
	GridSize        float64 `json:"grid_size"`        // XY cell edge length
	CellDensity     int     `json:"cell_density"`     // vertices for a cell to seed a cluster
	ContinueDensity int     `json:"continue_density"` // vertices for a neighbour cell to be absorbed
	MinClusterSize  int     `json:"min_cluster_size"` // vertices for a region to be reported
	MinDiameter     float64 `json:"min_diameter"`     // mounting-feature diameter range, inclusive
	MaxDiameter     float64 `json:"max_diameter"`
}

// DefaultClusterParams returns the standoff defaults with the Z band placed
// 1-12 units above floorZ.
func DefaultClusterParams(floorZ float64) ClusterParams {
	return ClusterParams{
		ZLow:            floorZ + DefaultBandLowOffset,
		ZHigh:           floorZ + DefaultBandHighOffset,
		GridSize:        DefaultGridSize,
		CellDensity:     DefaultCellDensity,
		ContinueDensity: DefaultContinueDensity,
		MinClusterSize:  DefaultMinClusterSize,
		MinDiameter:     DefaultMinDiameter,
		MaxDiameter:     DefaultMaxDiameter,
	}
}

// Validate reports parameter combinations that cannot produce a sensible
// partition.
func (p ClusterParams) Validate() error {
	if p.GridSize <= 0 || math.IsNaN(p.GridSize) {
		return fmt.Errorf("grid size must be positive, got %v", p.GridSize)
	}
	if !(p.ZLow < p.ZHigh) {
		return fmt.Errorf("z band is empty: %v..%v", p.ZLow, p.ZHigh)
	}
	if p.CellDensity < 1 || p.ContinueDensity < 1 {
		return fmt.Errorf("cell densities must be at least 1, got %d/%d", p.CellDensity, p.ContinueDensity)
	}
	if p.ContinueDensity > p.CellDensity {
		return fmt.Errorf("continue density %d exceeds cell density %d", p.ContinueDensity, p.CellDensity)
	}
	if p.MinClusterSize < 0 {
		return fmt.Errorf("min cluster size must not be negative, got %d", p.MinClusterSize)
	}
	if p.MinDiameter > p.MaxDiameter {
		return fmt.Errorf("diameter range is inverted: %v..%v", p.MinDiameter, p.MaxDiameter)
	}
	return nil
}

// GridCell is an XY cell key: each coordinate divided by the grid size and
// rounded half to even.
type GridCell struct {
	X, Y int
}

// Grid buckets the vertices of a Z band into XY cells.
type Grid struct {
	Size  float64
	Cells map[GridCell][]mesh.Vertex
	Count int // vertices inside the band
}

// BuildGrid collects the vertices with zLow < z < zHigh into cells of the
// given size.
func BuildGrid(m *mesh.Mesh, zLow, zHigh, size float64) Grid {
	g := Grid{Size: size, Cells: make(map[GridCell][]mesh.Vertex)}
	if m.IsEmpty() {
		return g
	}
	for _, tri := range m.Triangles {
		for _, v := range tri {
			if v.Z <= zLow || v.Z >= zHigh {
				continue
			}
			c := g.cellOf(v)
			g.Cells[c] = append(g.Cells[c], v)
			g.Count++
		}
	}
	return g
}

func (g Grid) cellOf(v mesh.Vertex) GridCell {
	return GridCell{
		X: int(math.RoundToEven(v.X / g.Size)),
		Y: int(math.RoundToEven(v.Y / g.Size)),
	}
}

// denseCells returns the cells holding at least n vertices, most populated
// first. Ties are broken by cell coordinates so the order is stable.
func (g Grid) denseCells(n int) []GridCell {
	var out []GridCell
	for c, verts := range g.Cells {
		if len(verts) >= n {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		ni, nj := len(g.Cells[out[i]]), len(g.Cells[out[j]])
		if ni != nj {
			return ni > nj
		}
		return cellLess(out[i], out[j])
	})
	return out
}

func cellLess(a, b GridCell) bool {
	if a.X != b.X {
		return a.X < b.X
	}
	return a.Y < b.Y
}

// Cluster is a maximal 8-connected region of populated grid cells.
type Cluster struct {
	CenterX     float64    `json:"center_x"`
	CenterY     float64    `json:"center_y"`
	ZMin        float64    `json:"z_min"`
	ZMax        float64    `json:"z_max"`
	Diameter    float64    `json:"diameter"` // 2 × max XY distance from the centroid
	VertexCount int        `json:"vertex_count"`
	Cells       []GridCell `json:"-"`
}

// Height returns how far the cluster rises above floorZ.
func (c Cluster) Height(floorZ float64) float64 {
	return c.ZMax - floorZ
}

// ClusterResult is the outcome of one clustering pass.
type ClusterResult struct {
	Clusters     []Cluster // every retained cluster, sorted by centre X then Y
	Mounting     []Cluster // clusters whose diameter is within the mounting range
	BandVertices int       // vertices inside the Z band
	DenseCells   int       // cells that met the seed density
}

// FindClusters locates dense vertex regions within the Z band of p. It
// visits dense seed cells most populated first and grows each one over its
// 8 neighbours. A neighbour is absorbed when it holds at least
// ContinueDensity vertices. Each cell is visited at most once per pass, so
// the partition does not depend on seed or triangle order. Regions with
// fewer than MinClusterSize vertices are dropped.
func FindClusters(m *mesh.Mesh, p ClusterParams) (ClusterResult, error) {
	if err := p.Validate(); err != nil {
		return ClusterResult{}, fmt.Errorf("cluster params: %w", err)
	}

	grid := BuildGrid(m, p.ZLow, p.ZHigh, p.GridSize)
	seeds := grid.denseCells(p.CellDensity)
	res := ClusterResult{BandVertices: grid.Count, DenseCells: len(seeds)}

	visited := make(map[GridCell]bool, len(grid.Cells))
	for _, seed := range seeds {
		if visited[seed] {
			continue
		}
		members, cells := grid.expand(seed, p.ContinueDensity, visited)
		if len(members) < p.MinClusterSize {
			continue
		}
		res.Clusters = append(res.Clusters, summarize(members, cells))
	}

	sort.Slice(res.Clusters, func(i, j int) bool {
		a, b := res.Clusters[i], res.Clusters[j]
		if a.CenterX != b.CenterX {
			return a.CenterX < b.CenterX
		}
		return a.CenterY < b.CenterY
	})
	res.Mounting = MountingFeatures(res.Clusters, p.MinDiameter, p.MaxDiameter)
	return res, nil
}

// expand flood-fills from seed over 8-connected cells with at least
// minCount vertices, marking each absorbed cell in visited.
func (g Grid) expand(seed GridCell, minCount int, visited map[GridCell]bool) ([]mesh.Vertex, []GridCell) {
	var members []mesh.Vertex
	var cells []GridCell

	frontier := []GridCell{seed}
	for len(frontier) > 0 {
		c := frontier[len(frontier)-1]
		frontier = frontier[:len(frontier)-1]
		if visited[c] {
			continue
		}
		verts := g.Cells[c]
		if len(verts) < minCount {
			continue
		}
		visited[c] = true
		members = append(members, verts...)
		cells = append(cells, c)

		for dx := -1; dx <= 1; dx++ {
			for dy := -1; dy <= 1; dy++ {
				n := GridCell{X: c.X + dx, Y: c.Y + dy}
				if n == c || visited[n] {
					continue
				}
				if _, ok := g.Cells[n]; ok {
					frontier = append(frontier, n)
				}
			}
		}
	}
	return members, cells
}

// summarize computes the cluster metrics. Members are sorted first so the
// floating-point sums do not depend on the order vertices were gathered in.
func summarize(members []mesh.Vertex, cells []GridCell) Cluster {
	sort.Slice(members, func(i, j int) bool {
		a, b := members[i], members[j]
		if a.X != b.X {
			return a.X < b.X
		}
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return a.Z < b.Z
	})
	sort.Slice(cells, func(i, j int) bool { return cellLess(cells[i], cells[j]) })

	xs := make([]float64, len(members))
	ys := make([]float64, len(members))
	zs := make([]float64, len(members))
	for i, v := range members {
		xs[i], ys[i], zs[i] = v.X, v.Y, v.Z
	}
	cx := stat.Mean(xs, nil)
	cy := stat.Mean(ys, nil)

	var maxDist float64
	for i := range members {
		maxDist = math.Max(maxDist, math.Hypot(xs[i]-cx, ys[i]-cy))
	}

	return Cluster{
		CenterX:     cx,
		CenterY:     cy,
		ZMin:        floats.Min(zs),
		ZMax:        floats.Max(zs),
		Diameter:    2 * maxDist,
		VertexCount: len(members),
		Cells:       cells,
	}
}

// MountingFeatures returns the clusters whose diameter lies within
// [minDia, maxDia].
func MountingFeatures(clusters []Cluster, minDia, maxDia float64) []Cluster {
	var out []Cluster
	for _, c := range clusters {
		if c.Diameter >= minDia && c.Diameter <= maxDia {
			out = append(out, c)
		}
	}
	return out
}

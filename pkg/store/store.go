// Package store keeps a sqlite history of mesh analysis runs so that
// measurements of successive exports of a part can be compared.
package store

import (
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/chazu/meshprobe/pkg/analyze"
	"github.com/chazu/meshprobe/pkg/mesh"
	"github.com/chazu/meshprobe/pkg/monitoring"
)

// ErrNotFound is returned when a run ID is unknown.
var ErrNotFound = errors.New("run not found")

// schema.sql creates the run and cluster tables.
//
//go:embed schema.sql
var schemaSQL string

// Store is an open run history database.
type Store struct {
	*sql.DB
}

// Open opens (creating if needed) the database at path and applies the
// schema. Use ":memory:" for a throwaway store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// One connection keeps ":memory:" databases shared across calls.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	monitoring.Logf("store: initialized run history at %s", path)
	return &Store{db}, nil
}

// ClusterRecord is a stored cluster with its mounting classification.
type ClusterRecord struct {
	analyze.Cluster
	Mounting bool `json:"mounting"`
}

// Run is one persisted analysis of a mesh file.
type Run struct {
	RunID      string          `json:"run_id"`
	File       string          `json:"file"`
	Triangles  int             `json:"triangles"`
	Min        mesh.Vertex     `json:"min"`
	Max        mesh.Vertex     `json:"max"`
	Layers     []float64       `json:"layers"`
	Clusters   []ClusterRecord `json:"clusters,omitempty"`
	ParamsJSON json.RawMessage `json:"params_json,omitempty"`
	CreatedAt  int64           `json:"created_at"`
}

// NewRun builds a Run from the measurements of one file. Every cluster in
// res is recorded; those also in res.Mounting are flagged.
func NewRun(file string, triangles int, bb analyze.BoundingBox, layers []float64, res *analyze.ClusterResult) *Run {
	r := &Run{
		File:      file,
		Triangles: triangles,
		Min:       bb.Min,
		Max:       bb.Max,
		Layers:    layers,
	}
	if res == nil {
		return r
	}
	mounting := make(map[[2]float64]bool, len(res.Mounting))
	for _, c := range res.Mounting {
		mounting[[2]float64{c.CenterX, c.CenterY}] = true
	}
	for _, c := range res.Clusters {
		r.Clusters = append(r.Clusters, ClusterRecord{
			Cluster:  c,
			Mounting: mounting[[2]float64{c.CenterX, c.CenterY}],
		})
	}
	return r
}

// Insert persists run and its clusters in one transaction. An empty RunID
// is filled with a new UUID and a zero CreatedAt with the current time.
func (s *Store) Insert(run *Run) error {
	if run.RunID == "" {
		run.RunID = uuid.New().String()
	}
	if run.CreatedAt == 0 {
		run.CreatedAt = time.Now().UnixNano()
	}

	layers := run.Layers
	if layers == nil {
		layers = []float64{}
	}
	layersJSON, err := json.Marshal(layers)
	if err != nil {
		return fmt.Errorf("failed to encode layers: %w", err)
	}
	var paramsStr interface{}
	if len(run.ParamsJSON) > 0 {
		paramsStr = string(run.ParamsJSON)
	}

	tx, err := s.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO analysis_runs (
			run_id, file, triangles,
			min_x, min_y, min_z, max_x, max_y, max_z,
			layers_json, params_json, created_at_ns
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID, run.File, run.Triangles,
		run.Min.X, run.Min.Y, run.Min.Z, run.Max.X, run.Max.Y, run.Max.Z,
		string(layersJSON), paramsStr, run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	for i, c := range run.Clusters {
		_, err = tx.Exec(`
			INSERT INTO run_clusters (
				run_id, seq, center_x, center_y, z_min, z_max, diameter, vertex_count, mounting
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.RunID, i, c.CenterX, c.CenterY, c.ZMin, c.ZMax, c.Diameter, c.VertexCount, c.Mounting,
		)
		if err != nil {
			return fmt.Errorf("failed to insert cluster %d: %w", i, err)
		}
	}
	return tx.Commit()
}

const runColumns = `run_id, file, triangles,
	min_x, min_y, min_z, max_x, max_y, max_z,
	layers_json, params_json, created_at_ns`

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row scanner) (*Run, error) {
	var r Run
	var layersJSON string
	var paramsStr sql.NullString
	err := row.Scan(
		&r.RunID, &r.File, &r.Triangles,
		&r.Min.X, &r.Min.Y, &r.Min.Z, &r.Max.X, &r.Max.Y, &r.Max.Z,
		&layersJSON, &paramsStr, &r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(layersJSON), &r.Layers); err != nil {
		return nil, fmt.Errorf("run %s: decode layers: %w", r.RunID, err)
	}
	if paramsStr.Valid {
		r.ParamsJSON = json.RawMessage(paramsStr.String)
	}
	return &r, nil
}

// Get returns the run with the given ID, clusters included.
func (s *Store) Get(runID string) (*Run, error) {
	row := s.QueryRow(`SELECT `+runColumns+` FROM analysis_runs WHERE run_id = ?`, runID)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", runID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	if r.Clusters, err = s.clusters(runID); err != nil {
		return nil, err
	}
	return r, nil
}

// ListByFile returns up to limit runs for file, newest first. Clusters are
// not loaded. A limit <= 0 returns every run.
func (s *Store) ListByFile(file string, limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.Query(`SELECT `+runColumns+` FROM analysis_runs
		WHERE file = ?
		ORDER BY created_at_ns DESC
		LIMIT ?`, file, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Delete removes a run and its clusters.
func (s *Store) Delete(runID string) error {
	res, err := s.Exec(`DELETE FROM analysis_runs WHERE run_id = ?`, runID)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s: %w", runID, ErrNotFound)
	}
	return nil
}

func (s *Store) clusters(runID string) ([]ClusterRecord, error) {
	rows, err := s.Query(`
		SELECT center_x, center_y, z_min, z_max, diameter, vertex_count, mounting
		FROM run_clusters
		WHERE run_id = ?
		ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("query clusters: %w", err)
	}
	defer rows.Close()

	var out []ClusterRecord
	for rows.Next() {
		var c ClusterRecord
		if err := rows.Scan(&c.CenterX, &c.CenterY, &c.ZMin, &c.ZMax, &c.Diameter, &c.VertexCount, &c.Mounting); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

package results

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Run is one recorded pipeline phase execution for a scenario tuple.
type Run struct {
	ID         string
	Phase      string // "sample", "prcc" or "plot"
	Susc       float64
	TargetR0   float64
	TargetVar  string
	Samples    int
	Status     string // "ok" or "failed"
	Error      string
	OutputFile string
	CreatedAt  time.Time
}

// Catalog is a SQLite-backed record of every sampling, PRCC and plotting run.
type Catalog struct {
	db *sql.DB
}

// OpenCatalog opens (creating if needed) the run catalog at the given path.
func OpenCatalog(path string) (*Catalog, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	c := &Catalog{db: db}
	if err := c.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate catalog: %w", err)
	}
	return c, nil
}

func (c *Catalog) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		phase TEXT NOT NULL,
		susc REAL NOT NULL,
		target_r0 REAL NOT NULL,
		target_var TEXT NOT NULL,
		samples INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL,
		error TEXT,
		output_file TEXT,
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_tuple ON runs(susc, target_r0, target_var);
	CREATE INDEX IF NOT EXISTS idx_runs_phase ON runs(phase, created_at);
	`
	_, err := c.db.Exec(schema)
	return err
}

// Close closes the underlying database.
func (c *Catalog) Close() error {
	return c.db.Close()
}

// Record inserts a run row, assigning it a fresh UUID, and returns the ID.
func (c *Catalog) Record(r Run) (string, error) {
	id := uuid.NewString()
	created := r.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	_, err := c.db.Exec(
		`INSERT INTO runs (id, phase, susc, target_r0, target_var, samples, status, error, output_file, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, r.Phase, r.Susc, r.TargetR0, r.TargetVar, r.Samples, r.Status, r.Error, r.OutputFile, created,
	)
	if err != nil {
		return "", fmt.Errorf("record run: %w", err)
	}
	return id, nil
}

// Runs returns the recorded runs for a scenario tuple, newest first.
func (c *Catalog) Runs(susc, targetR0 float64, targetVar string) ([]Run, error) {
	rows, err := c.db.Query(
		`SELECT id, phase, susc, target_r0, target_var, samples, status, error, output_file, created_at
		 FROM runs WHERE susc = ? AND target_r0 = ? AND target_var = ?
		 ORDER BY created_at DESC`,
		susc, targetR0, targetVar,
	)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()
	return scanRuns(rows)
}

// Recent returns the most recent runs across all tuples.
func (c *Catalog) Recent(limit int) ([]Run, error) {
	rows, err := c.db.Query(
		`SELECT id, phase, susc, target_r0, target_var, samples, status, error, output_file, created_at
		 FROM runs ORDER BY created_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query recent runs: %w", err)
	}
	defer rows.Close()
	return scanRuns(rows)
}

func scanRuns(rows *sql.Rows) ([]Run, error) {
	var out []Run
	for rows.Next() {
		var r Run
		var errMsg, outputFile sql.NullString
		if err := rows.Scan(&r.ID, &r.Phase, &r.Susc, &r.TargetR0, &r.TargetVar,
			&r.Samples, &r.Status, &errMsg, &outputFile, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.Error = errMsg.String
		r.OutputFile = outputFile.String
		out = append(out, r)
	}
	return out, rows.Err()
}

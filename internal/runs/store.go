package runs

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// DBFileName is the runs database created under the log directory.
const DBFileName = "runs.db"

// Store manages pipeline run and artifact persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the runs database under dir.
func Open(dir string) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("runs: database directory required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure database directory: %w", err)
	}

	dbPath := filepath.Join(dir, DBFileName)
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

const runColumns = "id, asset, stem, status, error_message, conversion_outcome, conversion_detail, created_at, updated_at"

// NewRun inserts a run record for a freshly uploaded asset.
func (s *Store) NewRun(ctx context.Context, assetName, stem string) (*Run, error) {
	now := time.Now().UTC()
	run := &Run{
		ID:        uuid.NewString(),
		Asset:     assetName,
		Stem:      stem,
		Status:    StatusUploaded,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO pipeline_runs (`+runColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Asset, run.Stem, run.Status,
		run.ErrorMessage, run.ConversionOutcome, run.ConversionDetail,
		run.CreatedAt.Format(time.RFC3339Nano), run.UpdatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}
	return run, nil
}

// Update persists mutable run fields and refreshes the updated timestamp.
func (s *Store) Update(ctx context.Context, run *Run) error {
	if run == nil {
		return errors.New("runs: nil run")
	}
	run.UpdatedAt = time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`UPDATE pipeline_runs SET status = ?, error_message = ?, conversion_outcome = ?, conversion_detail = ?, updated_at = ? WHERE id = ?`,
		run.Status, run.ErrorMessage, run.ConversionOutcome, run.ConversionDetail,
		run.UpdatedAt.Format(time.RFC3339Nano), run.ID,
	)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update run rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("runs: run %s not found", run.ID)
	}
	return nil
}

// GetByID fetches a run by identifier. Returns nil when absent.
func (s *Store) GetByID(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM pipeline_runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return run, nil
}

// List returns runs ordered newest first, optionally filtered by status.
func (s *Store) List(ctx context.Context, statuses ...Status) ([]*Run, error) {
	query := `SELECT ` + runColumns + ` FROM pipeline_runs`
	args := make([]any, 0, len(statuses))
	if len(statuses) > 0 {
		placeholders := make([]string, len(statuses))
		for i, status := range statuses {
			placeholders[i] = "?"
			args = append(args, status)
		}
		query += ` WHERE status IN (` + strings.Join(placeholders, ", ") + `)`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

// LatestForStem returns the most recent run for an asset stem, or nil.
func (s *Store) LatestForStem(ctx context.Context, stem string) (*Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+runColumns+` FROM pipeline_runs WHERE stem = ? ORDER BY created_at DESC LIMIT 1`, stem)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest run: %w", err)
	}
	return run, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var run Run
	var status, createdAt, updatedAt string
	if err := row.Scan(&run.ID, &run.Asset, &run.Stem, &status,
		&run.ErrorMessage, &run.ConversionOutcome, &run.ConversionDetail,
		&createdAt, &updatedAt); err != nil {
		return nil, err
	}
	run.Status = Status(status)
	run.CreatedAt = parseTimestamp(createdAt)
	run.UpdatedAt = parseTimestamp(updatedAt)
	return &run, nil
}

func parseTimestamp(value string) time.Time {
	if ts, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return ts
	}
	return time.Time{}
}

// RecordArtifact upserts a manifest entry for a derived file, hashing the
// file contents for later audit. The file must exist.
func (s *Store) RecordArtifact(ctx context.Context, stem, kind, path string) (*Artifact, error) {
	sum, size, err := hashFile(path)
	if err != nil {
		return nil, fmt.Errorf("hash artifact: %w", err)
	}

	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO artifacts (stem, kind, path, sha256, size_bytes, created_at)
         VALUES (?, ?, ?, ?, ?, ?)
         ON CONFLICT (stem, kind) DO UPDATE SET
           path = excluded.path,
           sha256 = excluded.sha256,
           size_bytes = excluded.size_bytes,
           created_at = excluded.created_at`,
		stem, kind, path, sum, size, now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("record artifact: %w", err)
	}

	return &Artifact{Stem: stem, Kind: kind, Path: path, SHA256: sum, SizeBytes: size, CreatedAt: now}, nil
}

// ArtifactsForStem lists recorded artifacts for an asset stem.
func (s *Store) ArtifactsForStem(ctx context.Context, stem string) ([]Artifact, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, stem, kind, path, sha256, size_bytes, created_at FROM artifacts WHERE stem = ? ORDER BY created_at`, stem)
	if err != nil {
		return nil, fmt.Errorf("list artifacts: %w", err)
	}
	defer rows.Close()

	var out []Artifact
	for rows.Next() {
		var artifact Artifact
		var createdAt string
		if err := rows.Scan(&artifact.ID, &artifact.Stem, &artifact.Kind, &artifact.Path,
			&artifact.SHA256, &artifact.SizeBytes, &createdAt); err != nil {
			return nil, fmt.Errorf("scan artifact: %w", err)
		}
		artifact.CreatedAt = parseTimestamp(createdAt)
		out = append(out, artifact)
	}
	return out, rows.Err()
}

func hashFile(path string) (string, int64, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer file.Close()

	hasher := sha256.New()
	size, err := io.Copy(hasher, file)
	if err != nil {
		return "", 0, err
	}
	return hex.EncodeToString(hasher.Sum(nil)), size, nil
}

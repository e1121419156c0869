package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/critic/internal/adapters/driven/config/file"
	"github.com/custodia-labs/critic/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/critic/internal/core/domain"
	"github.com/custodia-labs/critic/internal/core/ports/driven"
)

// DatabaseFile is the database file name inside the data directory.
const DatabaseFile = "critic.db"

// Store is a unified SQLite-based storage that provides access to
// the artifact and run stores through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.critic/data/critic.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := file.DefaultHome()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, DatabaseFile)

	// WAL lets predictions read while a training run writes
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// ArtifactStore returns an ArtifactStore interface backed by this store.
func (s *Store) ArtifactStore() driven.ArtifactStore {
	return &artifactStore{store: s}
}

// RunStore returns a RunStore interface backed by this store.
func (s *Store) RunStore() driven.RunStore {
	return &runStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_initial.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}

		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if err := s.apply(version, string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// apply executes one migration and records its version atomically.
func (s *Store) apply(version int, content string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.Exec(content); err != nil {
		return err
	}
	if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
		return err
	}
	return tx.Commit()
}

// ==================== Artifact Store ====================

// artifactStore implements driven.ArtifactStore.
type artifactStore struct {
	store *Store
}

var _ driven.ArtifactStore = (*artifactStore)(nil)

// Save stores an artifact. Model and vocabulary land in the same row,
// so a reader never sees one without the other.
func (s *artifactStore) Save(ctx context.Context, artifact *domain.Artifact) (domain.ArtifactInfo, error) {
	if artifact == nil || artifact.Info.ID == "" {
		return domain.ArtifactInfo{}, fmt.Errorf("%w: artifact requires an ID", domain.ErrInvalidInput)
	}

	artifact.Seal()
	if artifact.Info.CreatedAt.IsZero() {
		artifact.Info.CreatedAt = time.Now().UTC()
	}
	info := artifact.Info

	infoJSON, err := json.Marshal(info)
	if err != nil {
		return domain.ArtifactInfo{}, fmt.Errorf("marshalling artifact info: %w", err)
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.ArtifactInfo{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	_, err = tx.ExecContext(ctx, `
		INSERT INTO artifacts (id, run_id, model_name, kind, accuracy, info, model, vocabulary,
			model_checksum, vocabulary_checksum, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			run_id = excluded.run_id,
			model_name = excluded.model_name,
			kind = excluded.kind,
			accuracy = excluded.accuracy,
			info = excluded.info,
			model = excluded.model,
			vocabulary = excluded.vocabulary,
			model_checksum = excluded.model_checksum,
			vocabulary_checksum = excluded.vocabulary_checksum
	`, info.ID, nullString(info.RunID), info.ModelName, info.Kind.String(), info.Accuracy,
		string(infoJSON), artifact.Model, artifact.Vocabulary,
		info.ModelChecksum, info.VocabularyChecksum, info.CreatedAt.UTC())
	if err != nil {
		return domain.ArtifactInfo{}, fmt.Errorf("saving artifact: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return domain.ArtifactInfo{}, fmt.Errorf("committing artifact: %w", err)
	}
	return info, nil
}

// Load retrieves an artifact by ID and verifies its checksums.
func (s *artifactStore) Load(ctx context.Context, id string) (*domain.Artifact, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT info, model, vocabulary FROM artifacts WHERE id = ?
	`, id)
	return scanArtifact(row)
}

// Latest retrieves the most recently saved artifact.
func (s *artifactStore) Latest(ctx context.Context) (*domain.Artifact, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT info, model, vocabulary FROM artifacts
		ORDER BY created_at DESC, rowid DESC LIMIT 1
	`)
	return scanArtifact(row)
}

// List returns artifact metadata, newest first.
func (s *artifactStore) List(ctx context.Context) ([]domain.ArtifactInfo, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT info FROM artifacts ORDER BY created_at DESC, rowid DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("querying artifacts: %w", err)
	}
	defer rows.Close()

	var infos []domain.ArtifactInfo //nolint:prealloc // size unknown from query
	for rows.Next() {
		var infoJSON string
		if err := rows.Scan(&infoJSON); err != nil {
			return nil, fmt.Errorf("scanning artifact: %w", err)
		}
		var info domain.ArtifactInfo
		if err := json.Unmarshal([]byte(infoJSON), &info); err != nil {
			return nil, fmt.Errorf("unmarshalling artifact info: %w", err)
		}
		infos = append(infos, info)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating artifacts: %w", err)
	}
	return infos, nil
}

// Delete removes an artifact.
func (s *artifactStore) Delete(ctx context.Context, id string) error {
	res, err := s.store.db.ExecContext(ctx, "DELETE FROM artifacts WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting artifact: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting artifact: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanArtifact(row *sql.Row) (*domain.Artifact, error) {
	var infoJSON string
	var artifact domain.Artifact
	if err := row.Scan(&infoJSON, &artifact.Model, &artifact.Vocabulary); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning artifact: %w", err)
	}

	if err := json.Unmarshal([]byte(infoJSON), &artifact.Info); err != nil {
		return nil, fmt.Errorf("%w: unreadable artifact info: %w", domain.ErrArtifactCorrupt, err)
	}
	if err := artifact.Verify(); err != nil {
		return nil, err
	}
	return &artifact, nil
}

// ==================== Run Store ====================

// runStore implements driven.RunStore.
type runStore struct {
	store *Store
}

var _ driven.RunStore = (*runStore)(nil)

// Save stores or updates a run.
func (s *runStore) Save(ctx context.Context, run domain.RunRecord) error {
	if run.ID == "" {
		return fmt.Errorf("%w: run requires an ID", domain.ErrInvalidInput)
	}

	record, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("marshalling run: %w", err)
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO runs (id, artifact_id, started_at, record)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			artifact_id = excluded.artifact_id,
			started_at = excluded.started_at,
			record = excluded.record
	`, run.ID, nullString(run.ArtifactID), run.StartedAt.UTC(), string(record))
	if err != nil {
		return fmt.Errorf("saving run: %w", err)
	}
	return nil
}

// Get retrieves a run by ID.
func (s *runStore) Get(ctx context.Context, id string) (*domain.RunRecord, error) {
	var record string
	err := s.store.db.QueryRowContext(ctx, "SELECT record FROM runs WHERE id = ?", id).Scan(&record)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning run: %w", err)
	}

	var run domain.RunRecord
	if err := json.Unmarshal([]byte(record), &run); err != nil {
		return nil, fmt.Errorf("unmarshalling run: %w", err)
	}
	return &run, nil
}

// List returns all runs, newest first.
func (s *runStore) List(ctx context.Context) ([]domain.RunRecord, error) {
	rows, err := s.store.db.QueryContext(ctx, "SELECT record FROM runs ORDER BY started_at DESC, rowid DESC")
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.RunRecord //nolint:prealloc // size unknown from query
	for rows.Next() {
		var record string
		if err := rows.Scan(&record); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		var run domain.RunRecord
		if err := json.Unmarshal([]byte(record), &run); err != nil {
			return nil, fmt.Errorf("unmarshalling run: %w", err)
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}
	return runs, nil
}

// nullString converts an empty string to a NULL column value.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

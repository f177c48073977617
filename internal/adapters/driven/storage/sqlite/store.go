package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/buddy/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/buddy/internal/adapters/driven/storage/vector"
	"github.com/custodia-labs/buddy/internal/core/domain"
	"github.com/custodia-labs/buddy/internal/core/ports/driven"
)

// DatabaseFile is the file name of the store inside its data directory.
const DatabaseFile = "buddy.db"

// busyTimeoutMS bounds how long a connection waits on a locked database.
const busyTimeoutMS = 5000

// Store is a SQLite-backed collection store.
type Store struct {
	db       *sql.DB
	path     string
	readOnly bool
}

var _ driven.CollectionStore = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithReadOnly opens an existing database without running migrations.
// Writes through a read-only store fail with ErrStorageUnavailable.
func WithReadOnly() Option {
	return func(s *Store) {
		s.readOnly = true
	}
}

// NewStore opens the store in dataDir, creating it for writers.
// If dataDir is empty, defaults to domain.DefaultStoragePath.
func NewStore(dataDir string, opts ...Option) (*Store, error) {
	if dataDir == "" {
		dataDir = domain.DefaultStoragePath
	}

	s := &Store{path: filepath.Join(dataDir, DatabaseFile)}
	for _, opt := range opts {
		opt(s)
	}

	dsn := s.path + fmt.Sprintf("?_pragma=busy_timeout(%d)&_pragma=foreign_keys(1)", busyTimeoutMS)
	if s.readOnly {
		if _, err := os.Stat(s.path); errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: no store at %s", domain.ErrCollectionNotFound, dataDir)
		}
		dsn += "&_pragma=query_only(1)"
	} else {
		if err := os.MkdirAll(dataDir, 0700); err != nil {
			return nil, fmt.Errorf("%w: creating data directory: %v", domain.ErrStorageUnavailable, err)
		}
		dsn += "&_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: opening database: %v", domain.ErrStorageUnavailable, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: opening database: %v", domain.ErrStorageUnavailable, err)
	}
	s.db = db

	if s.readOnly {
		if err := s.checkSchema(); err != nil {
			db.Close()
			return nil, err
		}
		return s, nil
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: running migrations: %v", domain.ErrStorageUnavailable, err)
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

// ReadOnly reports whether the store was opened with WithReadOnly.
func (s *Store) ReadOnly() bool {
	return s.readOnly
}

// checkSchema verifies a read-only database was initialised by a writer.
func (s *Store) checkSchema() error {
	var n int
	err := s.db.QueryRow(
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='collections'",
	).Scan(&n)
	if err != nil {
		return fmt.Errorf("%w: reading schema: %v", domain.ErrStorageUnavailable, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: store at %s was never indexed", domain.ErrCollectionNotFound, s.path)
	}
	return nil
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
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
		if name := entry.Name(); strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_collections.up.sql" -> 1
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
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Collections ====================

const collectionColumns = "id, name, description, embedding_model, dimensions, created_at"

// GetCollection attaches to an existing collection.
func (s *Store) GetCollection(ctx context.Context, name string) (driven.Collection, error) {
	info, err := s.getInfo(ctx, name)
	if err != nil {
		return nil, err
	}
	return &collection{store: s, info: *info}, nil
}

// GetOrCreateCollection attaches to a collection, creating it from spec if missing.
func (s *Store) GetOrCreateCollection(ctx context.Context, spec domain.CollectionSpec) (driven.Collection, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if s.readOnly {
		return nil, fmt.Errorf("%w: store is read-only", domain.ErrStorageUnavailable)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO collections (`+collectionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO NOTHING
	`, uuid.New().String(), spec.Name, spec.Description, spec.EmbeddingModel, spec.Dimensions,
		time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return nil, fmt.Errorf("%w: creating collection: %v", domain.ErrStorageUnavailable, err)
	}

	return s.GetCollection(ctx, spec.Name)
}

// DeleteCollection removes a collection and its records.
// Deleting a missing collection is not an error.
func (s *Store) DeleteCollection(ctx context.Context, name string) error {
	if s.readOnly {
		return fmt.Errorf("%w: store is read-only", domain.ErrStorageUnavailable)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: beginning transaction: %v", domain.ErrStorageUnavailable, err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM records WHERE collection_id IN (SELECT id FROM collections WHERE name = ?)", name); err != nil {
		return fmt.Errorf("%w: deleting records: %v", domain.ErrStorageUnavailable, err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM collections WHERE name = ?", name); err != nil {
		return fmt.Errorf("%w: deleting collection: %v", domain.ErrStorageUnavailable, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: committing transaction: %v", domain.ErrStorageUnavailable, err)
	}
	return nil
}

// ListCollections returns all collections ordered by name.
func (s *Store) ListCollections(ctx context.Context) ([]domain.CollectionInfo, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+collectionColumns+" FROM collections ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("%w: listing collections: %v", domain.ErrStorageUnavailable, err)
	}
	defer rows.Close()

	var infos []domain.CollectionInfo
	for rows.Next() {
		info, err := scanCollection(rows)
		if err != nil {
			return nil, err
		}
		infos = append(infos, *info)
	}
	return infos, rows.Err()
}

func (s *Store) getInfo(ctx context.Context, name string) (*domain.CollectionInfo, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+collectionColumns+" FROM collections WHERE name = ?", name)
	info, err := scanCollection(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", domain.ErrCollectionNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: reading collection: %v", domain.ErrStorageUnavailable, err)
	}
	return info, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanCollection(row rowScanner) (*domain.CollectionInfo, error) {
	var info domain.CollectionInfo
	var createdAt string
	if err := row.Scan(&info.ID, &info.Name, &info.Description, &info.EmbeddingModel,
		&info.Dimensions, &createdAt); err != nil {
		return nil, err
	}
	if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		info.CreatedAt = t
	}
	return &info, nil
}

// ==================== Records ====================

// collection implements driven.Collection on top of the store.
type collection struct {
	store *Store
	info  domain.CollectionInfo
}

var _ driven.Collection = (*collection)(nil)

func (c *collection) Info() domain.CollectionInfo {
	return c.info
}

// Add stores records in one transaction. Existing IDs keep their insertion
// position and have their content replaced.
func (c *collection) Add(ctx context.Context, records []domain.Record) error {
	if c.store.readOnly {
		return fmt.Errorf("%w: store is read-only", domain.ErrStorageUnavailable)
	}
	for _, r := range records {
		if len(r.Embedding) != c.info.Dimensions {
			return fmt.Errorf("%w: record %s has %d dimensions, collection expects %d",
				domain.ErrInvalidInput, r.ID, len(r.Embedding), c.info.Dimensions)
		}
	}

	tx, err := c.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: beginning transaction: %v", domain.ErrStorageUnavailable, err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO records (collection_id, id, document, metadata, embedding)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(collection_id, id) DO UPDATE SET
			document = excluded.document,
			metadata = excluded.metadata,
			embedding = excluded.embedding
	`)
	if err != nil {
		return fmt.Errorf("%w: preparing statement: %v", domain.ErrStorageUnavailable, err)
	}
	defer stmt.Close()

	for _, r := range records {
		metadataJSON, err := json.Marshal(r.Metadata)
		if err != nil {
			return fmt.Errorf("marshalling record metadata: %w", err)
		}
		if _, err := stmt.ExecContext(ctx, c.info.ID, r.ID, r.Document,
			string(metadataJSON), float32SliceToBytes(r.Embedding)); err != nil {
			return fmt.Errorf("%w: saving record %s: %v", domain.ErrStorageUnavailable, r.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: committing transaction: %v", domain.ErrStorageUnavailable, err)
	}
	return nil
}

// Query scans the collection and ranks every record by cosine distance.
func (c *collection) Query(ctx context.Context, embedding []float32, k int) (*domain.QueryResult, error) {
	rows, err := c.store.db.QueryContext(ctx, `
		SELECT seq, id, document, metadata, embedding
		FROM records
		WHERE collection_id = ?
		ORDER BY seq
	`, c.info.ID)
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	defer rows.Close()

	var candidates []vector.Candidate
	for rows.Next() {
		var cand vector.Candidate
		var metadataJSON string
		var blob []byte
		if err := rows.Scan(&cand.Seq, &cand.Record.ID, &cand.Record.Document, &metadataJSON, &blob); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		if err := json.Unmarshal([]byte(metadataJSON), &cand.Record.Metadata); err != nil {
			return nil, fmt.Errorf("%w: record %s metadata: %v", domain.ErrMalformedResult, cand.Record.ID, err)
		}
		cand.Record.Embedding = bytesToFloat32Slice(blob)
		candidates = append(candidates, cand)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating records: %w", err)
	}

	return vector.Rank(embedding, candidates, k), nil
}

// Count returns the number of records in the collection.
func (c *collection) Count(ctx context.Context) (int, error) {
	var n int
	err := c.store.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM records WHERE collection_id = ?", c.info.ID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting records: %w", err)
	}
	return n, nil
}

// ==================== Helpers ====================

// float32SliceToBytes converts []float32 to a little-endian byte slice.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}

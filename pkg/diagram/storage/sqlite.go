package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"mercator-hq/flowmaker/pkg/config"
	"mercator-hq/flowmaker/pkg/diagram"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3" // driver "sqlite3" (cgo)
	_ "modernc.org/sqlite"          // driver "sqlite" (pure Go)
)

// Driver names accepted in storage.sqlite.driver.
const (
	DriverMattn   = "sqlite3"
	DriverModernc = "sqlite"
)

// SQLiteStorage implements diagram.Storage on SQLite through either the cgo
// or the pure Go driver.
type SQLiteStorage struct {
	db     *sql.DB
	config config.SQLiteConfig
	opts   options
	logger *slog.Logger
}

// NewSQLiteStorage opens the database at cfg.Path, creating the file and
// schema when missing.
func NewSQLiteStorage(cfg config.SQLiteConfig, opts ...Option) (*SQLiteStorage, error) {
	if cfg.Path == "" {
		return nil, diagram.NewStorageError(BackendSQLite, "open", errors.New("database path is empty"))
	}
	if cfg.Driver == "" {
		cfg.Driver = DriverMattn
	}

	logger := slog.Default().With("component", "diagram.storage.sqlite")

	if cfg.Path != ":memory:" {
		if dir := filepath.Dir(cfg.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, diagram.NewStorageError(BackendSQLite, "open", err)
			}
		}
	}

	dsn, err := buildDSN(cfg)
	if err != nil {
		return nil, diagram.NewStorageError(BackendSQLite, "open", err)
	}
	db, err := sql.Open(cfg.Driver, dsn)
	if err != nil {
		return nil, diagram.NewStorageError(BackendSQLite, "open", err)
	}

	// Every connection to ":memory:" is a separate database.
	if cfg.Path == ":memory:" {
		cfg.MaxOpenConns = 1
		cfg.MaxIdleConns = 1
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}

	s := &SQLiteStorage{
		db:     db,
		config: cfg,
		opts:   newOptions(opts),
		logger: logger,
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("SQLite storage initialized",
		"path", cfg.Path,
		"driver", cfg.Driver,
		"wal_mode", cfg.WALMode,
		"max_open_conns", cfg.MaxOpenConns,
	)

	return s, nil
}

// buildDSN encodes busy timeout, journal mode and immediate write
// transactions in the form each driver understands, so every pooled
// connection gets them.
func buildDSN(cfg config.SQLiteConfig) (string, error) {
	busy := cfg.BusyTimeout.Milliseconds()
	var params []string

	switch cfg.Driver {
	case DriverMattn:
		params = append(params, fmt.Sprintf("_busy_timeout=%d", busy), "_txlock=immediate")
		if cfg.WALMode {
			params = append(params, "_journal_mode=WAL")
		}
	case DriverModernc:
		params = append(params, fmt.Sprintf("_pragma=busy_timeout(%d)", busy), "_txlock=immediate")
		if cfg.WALMode {
			params = append(params, "_pragma=journal_mode(WAL)")
		}
	default:
		return "", fmt.Errorf("unsupported sqlite driver: %s", cfg.Driver)
	}

	return cfg.Path + "?" + strings.Join(params, "&"), nil
}

func (s *SQLiteStorage) initialize() error {
	if _, err := s.db.Exec(Schema); err != nil {
		return diagram.NewStorageError(BackendSQLite, "create_schema", err)
	}
	s.logger.Debug("database schema created")

	if _, err := s.db.Exec(InsertSchemaVersion, SchemaVersion); err != nil {
		return diagram.NewStorageError(BackendSQLite, "insert_schema_version", err)
	}

	var version int
	err := s.db.QueryRow(GetSchemaVersion).Scan(&version)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return diagram.NewStorageError(BackendSQLite, "get_schema_version", err)
	}
	if version != SchemaVersion {
		return diagram.NewStorageError(BackendSQLite, "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}

	s.logger.Debug("schema version verified", "version", version)
	return nil
}

// Backend implements diagram.Storage.
func (s *SQLiteStorage) Backend() string { return BackendSQLite }

// Driver returns the database/sql driver in use.
func (s *SQLiteStorage) Driver() string { return s.config.Driver }

// Save implements diagram.Storage.
func (s *SQLiteStorage) Save(ctx context.Context, d *diagram.Diagram) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return diagram.NewStorageError(BackendSQLite, "save", err)
	}
	defer tx.Rollback()

	var (
		existingID string
		createdAt  int64
		found      bool
	)
	if d.ActivityID != "" {
		err = tx.QueryRowContext(ctx, `SELECT id, created_at FROM diagrams WHERE activity_id = ?`, d.ActivityID).
			Scan(&existingID, &createdAt)
		found, err = scanFound(err)
		if err != nil {
			return diagram.NewStorageError(BackendSQLite, "save", err)
		}
	}
	if !found && d.ID != "" {
		err = tx.QueryRowContext(ctx, `SELECT id, created_at FROM diagrams WHERE id = ?`, d.ID).
			Scan(&existingID, &createdAt)
		found, err = scanFound(err)
		if err != nil {
			return diagram.NewStorageError(BackendSQLite, "save", err)
		}
	}

	now := s.opts.timestamp()
	if found {
		d.ID = existingID
		d.CreatedAt = time.Unix(0, createdAt).UTC()
	} else {
		if d.ID == "" {
			d.ID = uuid.NewString()
		}
		d.CreatedAt = now
	}
	d.UpdatedAt = now

	_, err = tx.ExecContext(ctx, upsertDiagram,
		d.ID, nullString(d.ActivityID), d.Mode, d.Source, d.Graph,
		d.CreatedAt.UnixNano(), d.UpdatedAt.UnixNano(),
	)
	if err != nil {
		return diagram.NewStorageError(BackendSQLite, "save", err)
	}

	if err := tx.Commit(); err != nil {
		return diagram.NewStorageError(BackendSQLite, "save", err)
	}
	return nil
}

// Get implements diagram.Storage.
func (s *SQLiteStorage) Get(ctx context.Context, id string) (*diagram.Diagram, error) {
	return s.getOne(ctx, "get", selectColumns+` WHERE id = ?`, id)
}

// GetByActivity implements diagram.Storage.
func (s *SQLiteStorage) GetByActivity(ctx context.Context, activityID string) (*diagram.Diagram, error) {
	if activityID == "" {
		return nil, diagram.ErrNotFound
	}
	return s.getOne(ctx, "get_by_activity", selectColumns+` WHERE activity_id = ?`, activityID)
}

func (s *SQLiteStorage) getOne(ctx context.Context, op, query string, arg any) (*diagram.Diagram, error) {
	rows, err := s.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, diagram.NewStorageError(BackendSQLite, op, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, diagram.NewStorageError(BackendSQLite, op, err)
		}
		return nil, diagram.ErrNotFound
	}
	d, err := scanRow(rows)
	if err != nil {
		return nil, diagram.NewStorageError(BackendSQLite, op, err)
	}
	return d, nil
}

// List implements diagram.Storage.
func (s *SQLiteStorage) List(ctx context.Context, q *diagram.Query) ([]*diagram.Diagram, error) {
	if q == nil {
		q = &diagram.Query{}
	}

	where, args := buildWhereClause(q)
	query := selectColumns + where + orderClause(q)
	if q.Limit > 0 || q.Offset > 0 {
		limit := q.Limit
		if limit <= 0 {
			limit = -1
		}
		query += ` LIMIT ? OFFSET ?`
		args = append(args, limit, q.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, diagram.NewStorageError(BackendSQLite, "list", err)
	}
	defer rows.Close()

	results := []*diagram.Diagram{}
	for rows.Next() {
		d, err := scanRow(rows)
		if err != nil {
			return nil, diagram.NewStorageError(BackendSQLite, "list", err)
		}
		results = append(results, d)
	}
	if err := rows.Err(); err != nil {
		return nil, diagram.NewStorageError(BackendSQLite, "list", err)
	}
	return results, nil
}

// Count implements diagram.Storage.
func (s *SQLiteStorage) Count(ctx context.Context, q *diagram.Query) (int64, error) {
	if q == nil {
		q = &diagram.Query{}
	}
	where, args := buildWhereClause(q)

	var count int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM diagrams`+where, args...).Scan(&count); err != nil {
		return 0, diagram.NewStorageError(BackendSQLite, "count", err)
	}
	return count, nil
}

// Delete implements diagram.Storage.
func (s *SQLiteStorage) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM diagrams WHERE id = ?`, id)
	if err != nil {
		return diagram.NewStorageError(BackendSQLite, "delete", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return diagram.NewStorageError(BackendSQLite, "delete", err)
	}
	if n == 0 {
		return diagram.ErrNotFound
	}
	return nil
}

// DeleteOlderThan implements diagram.Storage.
func (s *SQLiteStorage) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return s.execCount(ctx, "delete_older_than", `DELETE FROM diagrams WHERE updated_at < ?`, cutoff.UnixNano())
}

// DeleteOldest implements diagram.Storage.
func (s *SQLiteStorage) DeleteOldest(ctx context.Context, keep int64) (int64, error) {
	if keep < 0 {
		keep = 0
	}
	return s.execCount(ctx, "delete_oldest", deleteOldest, keep)
}

func (s *SQLiteStorage) execCount(ctx context.Context, op, query string, args ...any) (int64, error) {
	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, diagram.NewStorageError(BackendSQLite, op, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, diagram.NewStorageError(BackendSQLite, op, err)
	}
	return n, nil
}

// Ping implements diagram.Storage.
func (s *SQLiteStorage) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return diagram.NewStorageError(BackendSQLite, "ping", err)
	}
	return nil
}

// Close implements diagram.Storage.
func (s *SQLiteStorage) Close() error {
	if err := s.db.Close(); err != nil {
		return diagram.NewStorageError(BackendSQLite, "close", err)
	}
	s.logger.Info("SQLite storage closed", "path", s.config.Path)
	return nil
}

func buildWhereClause(q *diagram.Query) (string, []any) {
	var (
		conds []string
		args  []any
	)

	if q.ActivityID != "" {
		conds = append(conds, "activity_id = ?")
		args = append(args, q.ActivityID)
	}
	if q.Mode != "" {
		conds = append(conds, "mode = ?")
		args = append(args, q.Mode)
	}
	if !q.UpdatedAfter.IsZero() {
		conds = append(conds, "updated_at > ?")
		args = append(args, q.UpdatedAfter.UnixNano())
	}
	if !q.UpdatedBefore.IsZero() {
		conds = append(conds, "updated_at < ?")
		args = append(args, q.UpdatedBefore.UnixNano())
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func orderClause(q *diagram.Query) string {
	if q.SortOrder == diagram.SortOldest {
		return " ORDER BY updated_at ASC, id ASC"
	}
	return " ORDER BY updated_at DESC, id DESC"
}

func scanRow(rows *sql.Rows) (*diagram.Diagram, error) {
	var (
		d          diagram.Diagram
		activityID sql.NullString
		created    int64
		updated    int64
	)
	if err := rows.Scan(&d.ID, &activityID, &d.Mode, &d.Source, &d.Graph, &created, &updated); err != nil {
		return nil, err
	}
	d.ActivityID = activityID.String
	d.CreatedAt = time.Unix(0, created).UTC()
	d.UpdatedAt = time.Unix(0, updated).UTC()
	return &d, nil
}

func scanFound(err error) (bool, error) {
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, sql.ErrNoRows):
		return false, nil
	default:
		return false, err
	}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

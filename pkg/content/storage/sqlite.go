package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"mercator-hq/llmstxt/pkg/content"
	"mercator-hq/llmstxt/pkg/export"
)

// SQLiteConfig contains configuration for the SQLite content backend.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// MaxOpenConns is the maximum number of open connections to the database.
	// Default: 10
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5
	MaxIdleConns int

	// WALMode enables Write-Ahead Logging mode for better concurrency.
	// Default: true
	WALMode bool

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:         "data/content.db",
		MaxOpenConns: 10,
		MaxIdleConns: 5,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	}
}

// SQLiteStorage implements content.Store using SQLite.
type SQLiteStorage struct {
	db     *sql.DB
	config *SQLiteConfig
	logger *slog.Logger
}

// NewSQLiteStorage opens the database, enables WAL mode if configured and
// creates the schema.
func NewSQLiteStorage(config *SQLiteConfig) (*SQLiteStorage, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}

	db, err := sql.Open("sqlite3", dsn(config))
	if err != nil {
		return nil, content.NewStorageError("sqlite", "open", err)
	}

	if config.MaxOpenConns > 0 {
		db.SetMaxOpenConns(config.MaxOpenConns)
	}
	if config.MaxIdleConns > 0 {
		db.SetMaxIdleConns(config.MaxIdleConns)
	}

	s := NewSQLiteStorageFromDB(db)
	s.config = config

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	s.logger.Info("SQLite content storage initialized",
		"path", config.Path,
		"wal_mode", config.WALMode,
		"max_open_conns", config.MaxOpenConns,
	)

	return s, nil
}

// dsn builds the mattn/go-sqlite3 connection string. Pragmas in the DSN
// apply to every pooled connection.
func dsn(config *SQLiteConfig) string {
	params := url.Values{}
	params.Set("_busy_timeout", strconv.FormatInt(config.BusyTimeout.Milliseconds(), 10))
	if config.WALMode {
		params.Set("_journal_mode", "WAL")
	}

	sep := "?"
	if strings.Contains(config.Path, "?") {
		sep = "&"
	}
	return "file:" + strings.TrimPrefix(config.Path, "file:") + sep + params.Encode()
}

// NewSQLiteStorageFromDB wraps an already opened database whose schema is
// managed by the caller.
func NewSQLiteStorageFromDB(db *sql.DB) *SQLiteStorage {
	return &SQLiteStorage{
		db:     db,
		config: &SQLiteConfig{},
		logger: slog.Default().With("component", "content.storage.sqlite"),
	}
}

// initialize creates the schema and verifies its version.
func (s *SQLiteStorage) initialize() error {
	if _, err := s.db.Exec(Schema); err != nil {
		return content.NewStorageError("sqlite", "create_schema", err)
	}

	if _, err := s.db.Exec(InsertSchemaVersion, SchemaVersion); err != nil {
		return content.NewStorageError("sqlite", "insert_schema_version", err)
	}

	var version int
	err := s.db.QueryRow(GetSchemaVersion).Scan(&version)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return content.NewStorageError("sqlite", "get_schema_version", err)
	}
	if version != SchemaVersion {
		return content.NewStorageError("sqlite", "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}

	s.logger.Debug("schema version verified", "version", version)
	return nil
}

// RegisterType creates or replaces a content type.
func (s *SQLiteStorage) RegisterType(ctx context.Context, t content.ContentType) error {
	if err := t.Validate(); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, upsertTypeSQL, t.Name, t.Label, t.Public); err != nil {
		return content.NewStorageError("sqlite", "register_type", err)
	}
	return nil
}

// Types returns all registered types ordered by name.
func (s *SQLiteStorage) Types(ctx context.Context) ([]content.ContentType, error) {
	return s.queryTypes(ctx, selectTypesSQL)
}

// PublicTypes returns the public types ordered by name.
func (s *SQLiteStorage) PublicTypes(ctx context.Context) ([]content.ContentType, error) {
	return s.queryTypes(ctx, selectPublicTypesSQL)
}

func (s *SQLiteStorage) queryTypes(ctx context.Context, query string) ([]content.ContentType, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, content.NewStorageError("sqlite", "list_types", err)
	}
	defer rows.Close()

	types := []content.ContentType{}
	for rows.Next() {
		var t content.ContentType
		if err := rows.Scan(&t.Name, &t.Label, &t.Public); err != nil {
			return nil, content.NewStorageError("sqlite", "scan_type", err)
		}
		types = append(types, t)
	}
	if err := rows.Err(); err != nil {
		return nil, content.NewStorageError("sqlite", "list_types", err)
	}
	return types, nil
}

// PutItem creates or replaces an item.
func (s *SQLiteStorage) PutItem(ctx context.Context, item *content.Item) error {
	if err := item.Validate(); err != nil {
		return err
	}

	var count int
	if err := s.db.QueryRowContext(ctx, typeExistsSQL, item.Type).Scan(&count); err != nil {
		return content.NewStorageError("sqlite", "put_item", err)
	}
	if count == 0 {
		return fmt.Errorf("item %s: %w: %s", item.ID, content.ErrTypeNotFound, item.Type)
	}

	_, err := s.db.ExecContext(ctx, upsertItemSQL,
		item.ID, item.Type, item.Title, item.Permalink, string(item.Status),
		item.PublishedAt.UTC().UnixNano(),
	)
	if err != nil {
		return content.NewStorageError("sqlite", "put_item", err)
	}
	return nil
}

// DeleteItem removes an item.
func (s *SQLiteStorage) DeleteItem(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, deleteItemSQL, id)
	if err != nil {
		return content.NewStorageError("sqlite", "delete_item", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return content.NewStorageError("sqlite", "delete_item", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", content.ErrItemNotFound, id)
	}
	return nil
}

// TypeLabel returns the label of a public type.
func (s *SQLiteStorage) TypeLabel(ctx context.Context, contentType string) (string, bool, error) {
	var label string
	err := s.db.QueryRowContext(ctx, selectTypeLabelSQL, contentType).Scan(&label)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, content.NewStorageError("sqlite", "type_label", err)
	}
	if label == "" {
		label = contentType
	}
	return label, true, nil
}

// FetchPublished returns the published items of a type, newest first.
// Items sharing a publish time come back in insertion (rowid) order.
func (s *SQLiteStorage) FetchPublished(ctx context.Context, contentType string) ([]export.ContentItem, error) {
	rows, err := s.db.QueryContext(ctx, selectPublishedSQL, contentType, string(content.StatusPublish))
	if err != nil {
		return nil, content.NewStorageError("sqlite", "fetch_published", err)
	}
	defer rows.Close()

	items := []export.ContentItem{}
	for rows.Next() {
		var (
			item      export.ContentItem
			published int64
		)
		if err := rows.Scan(&item.ID, &item.Title, &item.Permalink, &published); err != nil {
			return nil, content.NewStorageError("sqlite", "scan_item", err)
		}
		item.PublishedAt = time.Unix(0, published).UTC()
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, content.NewStorageError("sqlite", "fetch_published", err)
	}
	return items, nil
}

// Ping checks that the database is reachable.
func (s *SQLiteStorage) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return content.NewStorageError("sqlite", "ping", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

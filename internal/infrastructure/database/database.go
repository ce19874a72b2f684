package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver ("pgx")
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3" // SQLite driver ("sqlite3")
)

// Supported database/sql driver names.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "pgx"
)

const (
	dirPermissions      = 0750
	filePermissions     = 0600
	pingTimeout         = 5 * time.Second
	connMaxLifetime     = time.Hour
	connMaxIdleTime     = 30 * time.Minute
	defaultMaxOpenConns = 10
)

// DB is an sqlx pool bound to one driver.
//
// Queries are written with ? placeholders; ExecContext and QueryRowContext
// rebind them so the same SQL runs on SQLite and PostgreSQL.
type DB struct {
	*sqlx.DB
	path   string
	driver string
}

// Config selects and tunes the database. It mirrors config.DatabaseConfig.
type Config struct {
	// Driver is DriverSQLite (default when empty) or DriverPostgres.
	Driver string

	// SQLite only.
	Path        string
	WALMode     bool
	BusyTimeout int // seconds

	// PostgreSQL only.
	DSN          string
	MaxOpenConns int
}

// Open connects using cfg and verifies the connection with a ping.
//
// SQLite gets a single-connection pool (one writer), the busy timeout and,
// when enabled, WAL journaling. The database file is restricted to 0600.
func Open(cfg Config) (*DB, error) {
	if cfg.Driver == "" {
		cfg.Driver = DriverSQLite
	}

	var (
		conn *sqlx.DB
		err  error
	)
	switch cfg.Driver {
	case DriverSQLite:
		conn, err = openSQLite(cfg)
	case DriverPostgres:
		conn, err = openPostgres(cfg)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	conn.SetConnMaxLifetime(connMaxLifetime)
	conn.SetConnMaxIdleTime(connMaxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := conn.PingContext(ctx); err != nil {
		conn.Close() //nolint:errcheck // Best effort cleanup on error path
		return nil, fmt.Errorf("verifying database connection: %w", err)
	}

	if cfg.Driver == DriverSQLite {
		_ = os.Chmod(cfg.Path, filePermissions) //nolint:errcheck // File may not exist until the first write
	}

	return &DB{DB: conn, path: cfg.Path, driver: cfg.Driver}, nil
}

func openSQLite(cfg Config) (*sqlx.DB, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("sqlite path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), dirPermissions); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	// See: https://github.com/mattn/go-sqlite3#connection-string
	dsn := fmt.Sprintf("file:%s?_busy_timeout=%d&_foreign_keys=on",
		cfg.Path, int(time.Duration(cfg.BusyTimeout)*time.Second/time.Millisecond))
	if cfg.WALMode {
		dsn += "&_journal_mode=WAL&_synchronous=NORMAL"
	}

	conn, err := sqlx.Open(DriverSQLite, dsn)
	if err != nil {
		return nil, err
	}
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	return conn, nil
}

func openPostgres(cfg Config) (*sqlx.DB, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("postgres dsn is empty")
	}

	conn, err := sqlx.Open(DriverPostgres, cfg.DSN)
	if err != nil {
		return nil, err
	}
	n := cfg.MaxOpenConns
	if n <= 0 {
		n = defaultMaxOpenConns
	}
	conn.SetMaxOpenConns(n)
	conn.SetMaxIdleConns(n)
	return conn, nil
}

// Close closes the pool. Safe on a DB that was never opened.
func (db *DB) Close() error {
	if db.DB == nil {
		return nil
	}
	if err := db.DB.Close(); err != nil {
		return fmt.Errorf("closing database: %w", err)
	}
	return nil
}

// Path returns the SQLite file path, empty for PostgreSQL.
func (db *DB) Path() string { return db.path }

// Driver returns the driver name in use.
func (db *DB) Driver() string { return db.driver }

// HealthCheck runs a trivial query to prove the database answers.
func (db *DB) HealthCheck(ctx context.Context) error {
	var one int
	if err := db.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}
	return nil
}

// ExecContext executes a statement written with ? placeholders.
func (db *DB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	result, err := db.DB.ExecContext(ctx, db.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("executing query: %w", err)
	}
	return result, nil
}

// QueryRowContext runs a single-row query written with ? placeholders.
func (db *DB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return db.DB.QueryRowContext(ctx, db.Rebind(query), args...)
}

// BeginTx starts a transaction. Statements run on the returned *sql.Tx are
// not rebound; use db.Rebind for placeholders.
func (db *DB) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	tx, err := db.DB.BeginTx(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("starting transaction: %w", err)
	}
	return tx, nil
}

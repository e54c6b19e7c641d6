package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"book-my-session/core/constants"
	"book-my-session/core/logger"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

func init() {
	// modernc registers itself as "sqlite", which sqlx does not know about.
	sqlx.BindDriver(constants.DatabaseDriverSQLite, sqlx.QUESTION)
}

// IDatabase is the query surface shared by repositories. Queries are written with
// "?" placeholders and rebound for the active driver.
type IDatabase interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
	NamedExecContext(ctx context.Context, query string, arg any) (sql.Result, error)
	BeginTx(ctx context.Context) (*Tx, error)
	PingContext(ctx context.Context) error
	SQLx() *sqlx.DB
}

// Queryer is satisfied by both Database and Tx, so repository methods can run
// inside or outside a transaction.
type Queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
}

type Database struct {
	sqlx *sqlx.DB
}

type DatabaseConfig struct {
	Driver          string
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	Path            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
}

func (c DatabaseConfig) DSN() string {
	if c.Driver == constants.DatabaseDriverSQLite {
		return fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", c.Path)
	}
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = constants.DatabaseSSLMode
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, sslMode)
}

// New wraps an existing connection. The driver name decides the placeholder style.
func New(db *sqlx.DB) *Database {
	return &Database{sqlx: db}
}

func InitDB(config DatabaseConfig) (*Database, error) {
	logger.Info("Database:InitDB:Start", "driver", config.Driver)

	sqlxDB, err := sqlx.Connect(config.Driver, config.DSN())
	if err != nil {
		logger.Error("Database:InitDB:Connect:Error", "error", err)
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	maxOpen := config.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = constants.DatabaseMaxOpenConns
	}
	maxIdle := config.MaxIdleConns
	if maxIdle <= 0 {
		maxIdle = constants.DatabaseMaxIdleConns
	}
	lifetime := config.ConnMaxLifetime
	if lifetime <= 0 {
		lifetime = constants.DatabaseConnMaxLifetime
	}
	if config.Driver == constants.DatabaseDriverSQLite {
		// single writer
		maxOpen, maxIdle = 1, 1
	}

	sqlxDB.SetMaxOpenConns(maxOpen)
	sqlxDB.SetMaxIdleConns(maxIdle)
	sqlxDB.SetConnMaxLifetime(time.Duration(lifetime) * time.Minute)

	if err = sqlxDB.Ping(); err != nil {
		logger.Error("Database:InitDB:Ping:Error", "error", err)
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("Database:InitDB:Success",
		"driver", config.Driver,
		"host", config.Host,
		"port", config.Port,
		"database", config.DBName,
		"maxOpenConns", maxOpen,
		"maxIdleConns", maxIdle,
		"connMaxLifetime", lifetime,
	)

	return New(sqlxDB), nil
}

func (d *Database) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return d.sqlx.ExecContext(ctx, d.sqlx.Rebind(query), args...)
}

func (d *Database) GetContext(ctx context.Context, dest any, query string, args ...any) error {
	return d.sqlx.GetContext(ctx, dest, d.sqlx.Rebind(query), args...)
}

func (d *Database) SelectContext(ctx context.Context, dest any, query string, args ...any) error {
	return d.sqlx.SelectContext(ctx, dest, d.sqlx.Rebind(query), args...)
}

func (d *Database) NamedExecContext(ctx context.Context, query string, arg any) (sql.Result, error) {
	return d.sqlx.NamedExecContext(ctx, query, arg)
}

func (d *Database) BeginTx(ctx context.Context) (*Tx, error) {
	tx, err := d.sqlx.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &Tx{tx: tx}, nil
}

func (d *Database) PingContext(ctx context.Context) error {
	return d.sqlx.PingContext(ctx)
}

func (d *Database) SQLx() *sqlx.DB {
	return d.sqlx
}

func (d *Database) Close() error {
	return d.sqlx.Close()
}

// Tx is a transaction with the same placeholder handling as Database.
type Tx struct {
	tx *sqlx.Tx
}

func (t *Tx) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return t.tx.ExecContext(ctx, t.tx.Rebind(query), args...)
}

func (t *Tx) GetContext(ctx context.Context, dest any, query string, args ...any) error {
	return t.tx.GetContext(ctx, dest, t.tx.Rebind(query), args...)
}

func (t *Tx) SelectContext(ctx context.Context, dest any, query string, args ...any) error {
	return t.tx.SelectContext(ctx, dest, t.tx.Rebind(query), args...)
}

func (t *Tx) Commit() error {
	return t.tx.Commit()
}

// Rollback is safe to defer after Commit.
func (t *Tx) Rollback() error {
	err := t.tx.Rollback()
	if err == sql.ErrTxDone {
		return nil
	}
	return err
}

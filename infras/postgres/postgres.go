// Package postgres opens the read and write sqlx pools and runs write transactions.
package postgres

//nolint:revive
import (
	"context"
	"fmt"
	"net"
	"net/url"
	"time"

	"lodge/config"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

const (
	maxIdleConns    = 10
	maxOpenConns    = 10
	connMaxLifetime = 30 * time.Minute
)

// Connection splits queries between a read replica and the primary.
type Connection struct {
	Read  *sqlx.DB
	Write *sqlx.DB
}

type endpoint struct {
	role     string
	host     string
	port     string
	user     string
	password string
	database string
	sslMode  string
	timezone string
}

func (e endpoint) dsn() string {
	query := url.Values{}
	if e.sslMode != "" {
		query.Set("sslmode", e.sslMode)
	}

	if e.timezone != "" {
		query.Set("timezone", e.timezone)
	}

	return (&url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(e.user, e.password),
		Host:     net.JoinHostPort(e.host, e.port),
		Path:     "/" + e.database,
		RawQuery: query.Encode(),
	}).String()
}

func New(cfg *config.Config) *Connection {
	pg := cfg.DB.Postgres

	read := endpoint{
		role: "read", host: pg.Read.Host, port: pg.Read.Port, user: pg.Read.Username, password: pg.Read.Password,
		database: pg.Prefix + pg.Read.Name, sslMode: pg.Read.SSLMode, timezone: pg.Read.Timezone,
	}
	write := endpoint{
		role: "write", host: pg.Write.Host, port: pg.Write.Port, user: pg.Write.Username, password: pg.Write.Password,
		database: pg.Prefix + pg.Write.Name, sslMode: pg.Write.SSLMode, timezone: pg.Write.Timezone,
	}

	return &Connection{
		Read:  connect(read, pg.MaxRetry, time.Duration(pg.RetryWaitTime)*time.Second),
		Write: connect(write, pg.MaxRetry, time.Duration(pg.RetryWaitTime)*time.Second),
	}
}

// connect retries until the database answers and exits the process once attempts run out.
func connect(target endpoint, attempts int, wait time.Duration) *sqlx.DB {
	attempts = max(attempts, 1)

	logger := log.With().
		Str("role", target.role).
		Str("addr", net.JoinHostPort(target.host, target.port)).
		Str("database", target.database).
		Logger()

	var err error

	for attempt := 1; attempt <= attempts; attempt++ {
		var db *sqlx.DB

		if db, err = sqlx.Connect("postgres", target.dsn()); err == nil {
			db.SetMaxIdleConns(maxIdleConns)
			db.SetMaxOpenConns(maxOpenConns)
			db.SetConnMaxLifetime(connMaxLifetime)

			logger.Info().Msg("Connected to database")

			return db
		}

		logger.Warn().Err(err).Int("attempt", attempt).Int("of", attempts).Msg("Database not reachable")

		if attempt < attempts {
			time.Sleep(wait)
		}
	}

	logger.Fatal().Err(err).Msg("Giving up connecting to database")

	return nil
}

// Transactor runs a unit of work inside a single write transaction.
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(tx *sqlx.Tx) error) error
}

// WithTransaction commits when fn returns nil and rolls back on an error or a panic.
func (c *Connection) WithTransaction(ctx context.Context, fn func(tx *sqlx.Tx) error) (err error) {
	tx, err := c.Write.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()

			panic(p)
		}
	}()

	if err = fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Error().Err(rbErr).AnErr("cause", err).Msg("Failed to roll back transaction")
		}

		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

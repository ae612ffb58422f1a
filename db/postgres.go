// Package db holds the raw connection setup for the two optional stores
// (critique log, narrative cache); everything else (repositories, stores)
// is built on top of the *sql.DB / *redis.Client these return.
package db

import (
	"database/sql"
	"log/slog"
	"time"

	_ "github.com/lib/pq"
)

// ConnectCritiqueLog opens the Critique Log Store's Postgres connection. An
// empty dsn means the critique log is disabled; absence is not fatal per §6
// ("absence disables silently").
func ConnectCritiqueLog(dsn string) (*sql.DB, error) {
	if dsn == "" {
		slog.Info("CRITIQUE_LOG_URL not set, critique log disabled")
		return nil, nil
	}

	conn, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	conn.SetMaxOpenConns(25)
	conn.SetMaxIdleConns(25)
	conn.SetConnMaxLifetime(5 * time.Minute)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}

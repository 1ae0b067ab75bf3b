// Package turso provides the libsql-backed event store, used when a durable
// database is configured. It is interchangeable with the in-memory store
// behind ports.EventStore.
package turso

import (
	"database/sql"
	"fmt"

	_ "github.com/tursodatabase/go-libsql"
)

// NewDB opens and pings a libsql database. authToken may be empty for local
// or file-backed databases.
func NewDB(url, authToken string) (*sql.DB, error) {
	connStr := url
	if authToken != "" {
		connStr = fmt.Sprintf("%s?authToken=%s", url, authToken)
	}

	db, err := sql.Open("libsql", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

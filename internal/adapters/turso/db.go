package turso

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tursodatabase/go-libsql"
)

// Config selects between a local libsql file and an embedded replica of a
// remote Turso database.
type Config struct {
	// LocalPath is the on-disk database file. Required.
	LocalPath string
	// PrimaryURL enables embedded-replica mode when set.
	PrimaryURL string
	AuthToken  string
}

// DB wraps the sql.DB together with the replica connector, if any.
type DB struct {
	*sql.DB
	connector *libsql.Connector
}

// NewDB opens the database described by cfg and pings it.
func NewDB(cfg Config) (*DB, error) {
	if cfg.LocalPath == "" {
		return nil, fmt.Errorf("database path is required")
	}
	if err := os.MkdirAll(filepath.Dir(cfg.LocalPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	if cfg.PrimaryURL == "" {
		db, err := sql.Open("libsql", "file:"+cfg.LocalPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		if err := db.Ping(); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to ping database: %w", err)
		}
		return &DB{DB: db}, nil
	}

	connector, err := libsql.NewEmbeddedReplicaConnector(cfg.LocalPath, cfg.PrimaryURL,
		libsql.WithAuthToken(cfg.AuthToken),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create replica connector: %w", err)
	}

	db := sql.OpenDB(connector)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		_ = connector.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{DB: db, connector: connector}, nil
}

// Sync pulls and pushes replica frames. It is a no-op for local databases.
func (d *DB) Sync() error {
	if d.connector == nil {
		return nil
	}
	if _, err := d.connector.Sync(); err != nil {
		return fmt.Errorf("failed to sync replica: %w", err)
	}
	return nil
}

// Close closes the database and the replica connector.
func (d *DB) Close() error {
	err := d.DB.Close()
	if d.connector != nil {
		if cerr := d.connector.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

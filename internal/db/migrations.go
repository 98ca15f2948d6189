package db

import (
	"database/sql"
	"fmt"
)

// migrations is an ordered list of SQL statements to run.
// Reference tables carry natural-key unique indexes so find-or-create
// can rely on insert-on-conflict semantics instead of read-then-write.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS agents (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		name       TEXT    NOT NULL,
		email      TEXT    NOT NULL UNIQUE COLLATE NOCASE,
		slug       TEXT    NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS communities (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		name       TEXT    NOT NULL UNIQUE COLLATE NOCASE,
		slug       TEXT    NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS property_types (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		name       TEXT    NOT NULL UNIQUE,
		slug       TEXT    NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS offering_types (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		name       TEXT    NOT NULL UNIQUE,
		slug       TEXT    NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS cities (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		name       TEXT    NOT NULL UNIQUE,
		slug       TEXT    NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS properties (
		id               INTEGER PRIMARY KEY AUTOINCREMENT,
		reference        TEXT    NOT NULL UNIQUE,
		slug             TEXT    NOT NULL UNIQUE,
		title            TEXT    NOT NULL,
		description      TEXT    NOT NULL,
		price            INTEGER NOT NULL,
		bedrooms         INTEGER NOT NULL,
		bathrooms        INTEGER NOT NULL,
		size             INTEGER NOT NULL DEFAULT 0,
		permit_number    TEXT    NOT NULL DEFAULT '',
		agent_id         INTEGER NOT NULL REFERENCES agents(id),
		community_id     INTEGER NOT NULL REFERENCES communities(id),
		type_id          INTEGER NOT NULL REFERENCES property_types(id),
		offering_type_id INTEGER NOT NULL REFERENCES offering_types(id),
		city_id          INTEGER NOT NULL REFERENCES cities(id),
		luxury           INTEGER NOT NULL DEFAULT 0,
		imported         INTEGER NOT NULL DEFAULT 1,
		status           TEXT    NOT NULL DEFAULT 'published',
		created_at       DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at       DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS property_images (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		property_id INTEGER NOT NULL REFERENCES properties(id) ON DELETE CASCADE,
		source_url  TEXT    NOT NULL,
		stored_url  TEXT    NOT NULL,
		position    INTEGER NOT NULL,
		created_at  DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(property_id, source_url)
	)`,
	`CREATE TABLE IF NOT EXISTS import_jobs (
		id          TEXT     PRIMARY KEY,
		status      TEXT     NOT NULL DEFAULT 'running',
		started_at  DATETIME NOT NULL,
		finished_at DATETIME,
		error       TEXT     NOT NULL DEFAULT '',
		stats_json  TEXT     NOT NULL DEFAULT '{}'
	)`,
	`CREATE INDEX IF NOT EXISTS idx_properties_community ON properties(community_id)`,
	`CREATE INDEX IF NOT EXISTS idx_properties_agent     ON properties(agent_id)`,
	`CREATE INDEX IF NOT EXISTS idx_property_images_prop ON property_images(property_id)`,
}

// migrate runs all migrations in order.
func migrate(db *sql.DB) error {
	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

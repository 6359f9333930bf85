package store

import (
	"context"
	"fmt"

	migrate "github.com/rubenv/sql-migrate"
)

// migrationTable keeps sql-migrate's bookkeeping apart from the data tables.
const migrationTable = "schema_migrations"

// migrations returns the schema history for the store's dialect. Only the
// key column type differs between Postgres and SQLite.
func (s *Store) migrations() *migrate.MemoryMigrationSource {
	serial, money := "INTEGER PRIMARY KEY AUTOINCREMENT", "REAL"
	if s.driver == DriverPostgres {
		serial, money = "SERIAL PRIMARY KEY", "NUMERIC(10,2)"
	}
	return &migrate.MemoryMigrationSource{
		Migrations: []*migrate.Migration{
			{
				Id: "0001_inventory",
				Up: []string{
					fmt.Sprintf(`CREATE TABLE categories (
	id %s,
	name TEXT NOT NULL UNIQUE,
	description TEXT
)`, serial),
					fmt.Sprintf(`CREATE TABLE items (
	id %s,
	artist TEXT NOT NULL,
	title TEXT NOT NULL,
	label TEXT,
	year INTEGER NOT NULL,
	quantity INTEGER NOT NULL DEFAULT 0 CHECK (quantity >= 0),
	price %s NOT NULL DEFAULT 0 CHECK (price >= 0),
	category_id INTEGER NOT NULL REFERENCES categories(id),
	img_url TEXT
)`, serial, money),
					`CREATE INDEX items_category_id_idx ON items (category_id)`,
				},
				Down: []string{
					`DROP TABLE items`,
					`DROP TABLE categories`,
				},
			},
		},
	}
}

// dialect maps the store driver to sql-migrate's dialect name.
func (s *Store) dialect() string {
	if s.driver == DriverSQLite {
		return "sqlite3"
	}
	return s.driver
}

// Migrate applies pending migrations and returns how many ran.
func (s *Store) Migrate(ctx context.Context) (int, error) {
	set := migrate.MigrationSet{TableName: migrationTable}
	n, err := set.ExecContext(ctx, s.db.DB, s.dialect(), s.migrations(), migrate.Up)
	if err != nil {
		return n, fmt.Errorf("migrate up: %w", err)
	}
	s.log.Info().Int("applied", n).Str("driver", s.driver).Msg("migrations complete")
	return n, nil
}

// Rollback reverts every applied migration.
func (s *Store) Rollback(ctx context.Context) (int, error) {
	set := migrate.MigrationSet{TableName: migrationTable}
	n, err := set.ExecContext(ctx, s.db.DB, s.dialect(), s.migrations(), migrate.Down)
	if err != nil {
		return n, fmt.Errorf("migrate down: %w", err)
	}
	return n, nil
}

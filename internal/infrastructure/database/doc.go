// Package database opens the SQL store behind the ble lookups.
//
// SQLite serves local installs and tests; PostgreSQL (through pgx's
// database/sql driver) serves the plant database. DB embeds *sqlx.DB, so
// repositories use SelectContext, GetContext and sqlx.In directly. SQL is
// written with ? placeholders and rebound for the active driver.
//
//	db, err := database.Open(database.Config{Driver: "pgx", DSN: dsn})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
// Migrate applies the embedded *.up.sql files and records them in
// schema_migrations. It only moves forward; the matching .down.sql files
// are for operators to run by hand. Every file must run unchanged on both
// drivers. Never log the PostgreSQL DSN: it carries credentials.
package database

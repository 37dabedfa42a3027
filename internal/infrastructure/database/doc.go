// Package database provides the SQLite connection used by the sqlite
// storage backend.
//
// It manages:
//   - Opening the database with WAL mode and a busy timeout
//   - Applying embedded schema migrations in version order
//   - Health checks for the API
//
// Usage:
//
//	db, err := database.Open(cfg.Database)
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    return err
//	}
//
// Migration files are named YYYYMMDD_HHMMSS_description.up.sql with an
// optional matching .down.sql, and are registered by the migrations package.
package database

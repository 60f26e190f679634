// Package database provides SQLite connectivity for the sensor registry.
//
// It opens the database file with WAL mode, a busy timeout and foreign
// keys enabled, and applies versioned schema migrations from an fs.FS
// (normally the embedded files of the migrations package).
//
// All queries built on top of this package use parameterised statements.
// The database file is created with 0600 permissions.
//
// Usage:
//
//	db, err := database.Open(ctx, cfg.Database)
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
// optional matching .down.sql.
package database

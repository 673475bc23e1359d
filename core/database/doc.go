// Package database handles the optional run journal database connection.
//
// It wraps GORM to configure a MySQL connection from the application's
// configuration. The journal is optional: Connect returns ErrDisabled when
// database.enabled is false, and callers fall back to a no-op recorder on
// any error.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    logg.Warn("Optional database connection failed", zap.Error(err))
//	}
package database

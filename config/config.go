// Package config holds filesql's engine-wide settings, following the
// teacher's field-struct-with-defaults style (logger.Config, db.Config).
package config

import (
	"github.com/mstgnz/filesql/logger"
	"github.com/mstgnz/filesql/monitoring"
	"github.com/mstgnz/filesql/serde"
	"github.com/mstgnz/filesql/table"
)

// Config holds every setting a running filesql engine needs.
type Config struct {
	// DataDir is the directory holding one subdirectory per database.
	DataDir string

	// DatabaseNameMaxSize bounds a database name (the name of its
	// directory under DataDir).
	DatabaseNameMaxSize int

	// TableNameMaxLength bounds a table name, mirroring the index file's
	// fixed-width slot.
	TableNameMaxLength int

	// ColumnNameMaxLength bounds a column name.
	ColumnNameMaxLength int

	// ColumnMax bounds how many columns a table may have.
	ColumnMax int

	// Log configures the ambient logger.
	Log logger.Config

	// AlertThreshold configures when the AlertManager notifies.
	AlertThreshold monitoring.AlertThreshold
}

// Default returns the settings a standalone filesql instance runs with
// absent any overrides.
func Default() Config {
	return Config{
		DataDir:             "./data",
		DatabaseNameMaxSize: serde.DatabaseNameMaxSize,
		TableNameMaxLength:  serde.TableNameMaxLength,
		ColumnNameMaxLength: serde.ColumnNameMaxLength,
		ColumnMax:           table.ColumnMax,
		Log: logger.Config{
			Level: logger.INFO,
		},
		AlertThreshold: monitoring.DefaultAlertThreshold(),
	}
}

package logger

import (
	"go.uber.org/zap"
)

// Standard field names for consistent structured logging.
// Use these constants instead of raw strings to ensure consistency.
const (
	FieldRunID     = "run_id"
	FieldComponent = "component"
	FieldModule    = "module"
	FieldVersion   = "version"

	// Entities
	FieldClass    = "class"
	FieldFunction = "function"
	FieldMember   = "member"
	FieldEntity   = "entity"
	FieldLine     = "line"

	// Documentation
	FieldURL       = "url"
	FieldPage      = "page"
	FieldOverloads = "overloads"
	FieldRecords   = "records"
	FieldReason    = "reason"

	// Timing, counts and files
	FieldDurationMS = "duration_ms"
	FieldCount      = "count"
	FieldSize       = "size"
	FieldFile       = "file"
	FieldPath       = "path"
	FieldError      = "error"
	FieldStatus     = "status"
	FieldAttempt    = "attempt"
)

// ComponentLogger returns a named logger for a specific component.
// This is the preferred way to get a logger for dependency injection.
//
// Example:
//
//	index := docs.NewIndex(fetcher, opts, logger.ComponentLogger("docs"))
func ComponentLogger(name string) *zap.SugaredLogger {
	return Logger.Named(name)
}

// ChildLogger creates a child logger with additional context.
//
// Example:
//
//	classLogger := logger.ChildLogger(base, logger.FieldClass, cls.Name)
func ChildLogger(parent *zap.SugaredLogger, keysAndValues ...interface{}) *zap.SugaredLogger {
	return parent.With(keysAndValues...)
}

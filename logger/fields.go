package logger

import (
	"go.uber.org/zap"
)

// Standard field names for consistent structured logging across folio.
const (
	// Identity
	FieldInstanceID = "instance_id"
	FieldClientID   = "client_id"
	FieldNodeID     = "node_id"

	// Components
	FieldComponent = "component"
	FieldViz       = "viz"

	// Engine state
	FieldGeneration = "generation"
	FieldAxis       = "axis"
	FieldActive     = "active"
	FieldMode       = "mode"
	FieldScale      = "scale"

	// Counts and sizes
	FieldCount      = "count"
	FieldVisible    = "visible"
	FieldIterations = "iterations"

	// Timing
	FieldDurationMS = "duration_ms"

	// Errors
	FieldError = "error"

	// Files and network
	FieldFile    = "file"
	FieldAddress = "address"
)

// ComponentLogger returns a named logger for a specific component.
// This is the preferred way to get a logger for dependency injection.
//
//	cam := camera.New(t, loop, surface, camera.WithLogger(logger.ComponentLogger("camera")))
func ComponentLogger(name string) *zap.SugaredLogger {
	return Logger.Named(name)
}

// ChildLogger creates a child logger with additional context.
//
//	instLogger := logger.ChildLogger(base, logger.FieldInstanceID, id)
func ChildLogger(parent *zap.SugaredLogger, keysAndValues ...interface{}) *zap.SugaredLogger {
	if parent == nil {
		parent = Logger
	}
	return parent.With(keysAndValues...)
}

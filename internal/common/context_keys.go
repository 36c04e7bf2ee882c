// File: internal/common/context_keys.go
package common

// Gin context keys shared by middleware and handlers.
const (
	// WorkspaceKey holds the caller's *workspace.Workspace.
	WorkspaceKey = "workspace"
	// LoggerKey holds a request-scoped *zap.Logger.
	LoggerKey = "logger"
)

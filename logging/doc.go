// Package logging provides a tiny abstraction over slog so the orchestration
// packages can depend on a minimal Logger interface while hosts plug in any
// structured logger.
package logging

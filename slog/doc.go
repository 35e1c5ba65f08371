// Package slog provides log/slog decorators for the adamsdoc service
// interfaces. Each decorator logs the operation, its key attributes, its
// duration and any error, then returns the wrapped result unchanged.
package slog

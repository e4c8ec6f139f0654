// Package logger builds slog loggers from environment configuration and
// provides typed attribute helpers so log keys stay consistent across the
// billing core.
package logger

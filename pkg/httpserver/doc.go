// Package httpserver wraps http.Server with graceful shutdown on SIGINT and
// SIGTERM, option-based configuration, and a combined liveness/readiness
// handler for the /health endpoint.
package httpserver

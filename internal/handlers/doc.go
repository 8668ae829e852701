// Package handlers implements the HTTP API: source file management,
// on-demand thumbnail generation, authentication, and service health.
// Handlers translate the service error taxonomy into HTTP status codes
// and write JSON responses.
package handlers

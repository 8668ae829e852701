// Package logging provides leveled logging for the asset store.
// The level is read once from the DEBUG and LOG_LEVEL environment
// variables; the default level is info.
package logging

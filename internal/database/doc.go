// Package database manages the SQLite store behind the asset store:
// source file records, the thumbnail cache record table (uniquely keyed
// by file, dimensions, format and quality), and the auth tables.
package database

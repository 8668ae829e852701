// Package storage provides the object store clients used for source
// files and derived thumbnails: an S3 client for production and a
// local-filesystem store for development and tests. URLs returned by a
// store are reconstructible into object keys by stripping the store's
// base URL prefix.
package storage

// Package thumbnail implements the get-or-create orchestration for
// cached thumbnail renditions: exact-key cache lookup, source
// validation, fetch, transform, upload, and race-safe record creation.
package thumbnail

package thumbnail

import "errors"

var (
	// ErrSourceNotFound means the requested source file id does not exist.
	ErrSourceNotFound = errors.New("source file not found")

	// ErrNotAnImage means the source file's content type is not in the
	// image media-type family.
	ErrNotAnImage = errors.New("source file is not an image")

	// ErrUpstream covers object store failures on fetch or upload. The
	// caller sees these as server-side failures; nothing is retried.
	ErrUpstream = errors.New("object store failure")

	// ErrTransform means the source bytes could not be decoded or the
	// result could not be encoded.
	ErrTransform = errors.New("image transform failed")
)

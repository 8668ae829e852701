// Package media implements the image transform engine: decoding source
// images, bounding-box resizing with aspect ratio preserved, and
// encoding to the supported thumbnail formats. WebP encoding is
// delegated to libvips and requires InitVips to have been called.
package media

// Package memory configures the Go runtime's soft memory limit for
// containerized deployments. Image decoding allocates large transient
// buffers, so the heap limit is derived from the container memory limit
// (Kubernetes Downward API) with headroom left for libvips.
package memory

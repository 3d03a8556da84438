// Package notify presents transient user notices: error banners and the
// manual-download fallback.
//
// A notice is a scoped resource: showing one acquires the single notice
// slot (superseding whatever was active), and release is guaranteed by
// auto-dismiss after a fixed TTL, an explicit dismiss, or the next Show.
package notify

// Package download saves backend result artifacts to local files.
//
// Each download streams to a hidden temp file first and is renamed into
// place only when complete, so an interrupted transfer never leaves a
// half-written artifact under the final name. When the local save fails,
// the caller gets a manual fallback carrying the direct URL so the user
// can fetch the file by hand.
package download

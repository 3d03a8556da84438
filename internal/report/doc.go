// Package report renders analysis results for terminal display and files.
//
// Three writers are provided:
//   - TextWriter: plain text for terminal display
//   - MarkdownWriter: Markdown for documentation and sharing
//   - JSONWriter: machine-readable output for scripting
//
// All writers implement the Writer interface and can be combined with
// MultiWriter to write to several destinations at once.
package report

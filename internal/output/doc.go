// Package output writes converted documents for display or machine consumption.
//
// Four formats are supported:
//   - html     standalone HTML page (default)
//   - fragment the rendered body only, for embedding in a site template
//   - json     per-diagram report with type, format, target and error
//   - text     human-readable diagram summary for the terminal
//
// Use [GetWriter] to obtain a [Writer] for a given format string, then call
// [Writer.Write] with an [io.Writer] and a [*markdown.Document]. [WriteDocument]
// handles destination selection.
package output

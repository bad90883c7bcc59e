// Package diag defines the diagnostic model shared by the decoder, the
// lowering core and the driver.
//
// A Diagnostic carries a Severity, a numeric Code with a stable string
// form, a short message, the primary source.Span and optional notes.
// Producers hand diagnostics to a Reporter; BagReporter collects them in a
// Bag which the driver sorts and deduplicates before rendering.
//
// Package diag performs no formatting or IO. Rendering lives in
// internal/diagfmt.
package diag

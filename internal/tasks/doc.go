// Package tasks runs long library operations with non-blocking progress reporting.
//
// # Export
//
// [Exporter.Run] writes each requested collection (uploaded songs, generated
// songs, liked songs) to its own file in the chosen format, using a small
// worker pool, then records the outcome in export_manifest.json.
//
// A failing collection does not stop the others; it is reported in the
// [ExportResult] and the manifest.
//
// # Progress Reporting
//
// Operations accept an optional chan<- [ProgressUpdate]. Updates are sent with
// select/default so a slow or absent reader never blocks the export.
package tasks

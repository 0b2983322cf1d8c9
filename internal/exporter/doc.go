// Package exporter provides CSV export functionality for the Ads Pulse
// toolkit.
//
// This package contains three main components:
//
// CSVWriter: Core CSV writing functionality with support for headers,
// streaming, and an optional UTF-8 BOM for spreadsheet compatibility.
//
// DailyExporter: Writes the harvested daily metrics table, either in
// one buffered pass or row by row through a stream writer.
//
// PreviewExporter: Writes the best-effort preview rows collected during
// capture as a quick-look CSV.
//
// Example usage:
//
//	daily := exporter.NewDailyExporter(paths)
//	err := daily.ExportDailyTable(table, paths.DailyMetricsCSV)
//
//	preview := exporter.NewPreviewExporter(paths)
//	err = preview.ExportPreview(rows, paths.PreviewCSV)
package exporter

package exporter

import (
	"fmt"

	"adspulse/internal/capture"
	"adspulse/internal/config"
	"adspulse/internal/harvest"
)

// PreviewExporter writes the quick-look rows collected during capture.
type PreviewExporter struct {
	csvWriter *CSVWriter
}

// NewPreviewExporter creates a new preview exporter
func NewPreviewExporter(paths *config.Paths) *PreviewExporter {
	return &PreviewExporter{
		csvWriter: NewCSVWriter(paths),
	}
}

// ExportPreview renders rows to outputPath. Rows are written in the
// order given (the extractor already sorts by date); a metric missing
// from a row renders as an empty cell.
func (p *PreviewExporter) ExportPreview(rows []capture.PreviewRow, outputPath string) error {
	header := capture.PreviewColumns()

	records := make([][]string, 0, len(rows))
	for _, row := range rows {
		cells := make([]string, 0, len(header))
		cells = append(cells, row.Date)
		for _, col := range header[1:] {
			v, ok := row.Metrics[col]
			if !ok {
				cells = append(cells, "")
				continue
			}
			cells = append(cells, harvest.FormatMetric(v))
		}
		records = append(records, cells)
	}

	if err := p.csvWriter.WriteSimpleCSV(outputPath, header, records); err != nil {
		return fmt.Errorf("failed to write preview: %w", err)
	}
	return nil
}

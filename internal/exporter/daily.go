package exporter

import (
	"fmt"

	"adspulse/internal/config"
	"adspulse/internal/harvest"
)

// DailyExporter writes the harvested daily metrics table.
type DailyExporter struct {
	csvWriter *CSVWriter
}

// NewDailyExporter creates a new daily metrics exporter
func NewDailyExporter(paths *config.Paths) *DailyExporter {
	return &DailyExporter{
		csvWriter: NewCSVWriter(paths),
	}
}

// ExportDailyTable writes the assembled table to outputPath in one
// buffered pass. The table arrives fully formatted; this only lays it
// on disk.
func (d *DailyExporter) ExportDailyTable(table *harvest.Table, outputPath string) error {
	if table == nil {
		return fmt.Errorf("nil table")
	}
	if err := d.csvWriter.WriteSimpleCSV(outputPath, table.Header, table.Rows); err != nil {
		return fmt.Errorf("failed to write daily metrics table: %w", err)
	}
	return nil
}

// ExportDailyTableStreaming writes the table row by row. Long capture
// histories produce one row per day, so the buffered path normally
// suffices; this exists for runs that span years of spool files.
func (d *DailyExporter) ExportDailyTableStreaming(table *harvest.Table, outputPath string) error {
	if table == nil {
		return fmt.Errorf("nil table")
	}

	stream, err := d.csvWriter.CreateStreamWriter(outputPath, table.Header)
	if err != nil {
		return fmt.Errorf("failed to create stream writer: %w", err)
	}

	for _, row := range table.Rows {
		if err := stream.WriteRecord(row); err != nil {
			stream.Close()
			return fmt.Errorf("failed to write row %s: %w", row[0], err)
		}
	}

	if err := stream.Close(); err != nil {
		return fmt.Errorf("failed to close stream: %w", err)
	}
	return nil
}

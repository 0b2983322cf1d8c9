// Package harvest reduces captured advertising metric payloads to one
// canonical value per day and metric.
//
// The pipeline walks every JSON object in a document, discards range
// aggregates, resolves each record's date, canonicalizes field names
// and units, and accumulates every surviving observation. A reduction
// policy then collapses each (date, metric) cell and the assembler
// lays the result out as a stable daily table.
package harvest

// Package capture filters browser-captured network responses down to
// advertising metric payloads and persists them into the spool the
// harvester reads.
//
// The importer replays HAR archives through the same URL and payload
// heuristics a live capture would use, so a dashboard session recorded
// in the browser's network panel becomes a spool directory offline.
package capture

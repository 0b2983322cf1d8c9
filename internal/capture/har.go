package capture

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"os"
	"strings"

	apperrors "adspulse/internal/errors"
)

// Minimal slice of the HAR 1.2 schema, only the fields the importer
// reads.
type harArchive struct {
	Log harLog `json:"log"`
}

type harLog struct {
	Entries []harEntry `json:"entries"`
}

type harEntry struct {
	Request  harRequest  `json:"request"`
	Response harResponse `json:"response"`
}

type harRequest struct {
	URL string `json:"url"`
}

type harResponse struct {
	Content harContent `json:"content"`
}

type harContent struct {
	MimeType string `json:"mimeType"`
	Text     string `json:"text"`
	Encoding string `json:"encoding"`
}

// ImportStats counts what one archive import did.
type ImportStats struct {
	Entries       int
	URLRejected   int
	TypeRejected  int
	BodySkipped   int
	SniffRejected int
	Spooled       int
}

// Importer replays a browser HAR archive through the capture
// heuristics and spools the surviving JSON bodies.
type Importer struct {
	heur    *Heuristics
	store   *Store
	preview *PreviewExtractor
	saveAll bool
	logger  *slog.Logger
}

// NewImporter wires an Importer. preview may be nil when no preview
// extraction is wanted; saveAll spools every JSON body on a relevant
// URL without sniffing its shape.
func NewImporter(heur *Heuristics, store *Store, preview *PreviewExtractor, saveAll bool, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{heur: heur, store: store, preview: preview, saveAll: saveAll, logger: logger}
}

// Import reads one archive and runs every entry through the URL,
// content-type and payload heuristics. Per-entry problems are counted
// and skipped; only an unreadable archive or an unwritable spool is an
// error.
func (im *Importer) Import(ctx context.Context, harPath string) (*ImportStats, error) {
	raw, err := os.ReadFile(harPath)
	if err != nil {
		return nil, apperrors.NewStorageError("reading har archive", err)
	}
	var archive harArchive
	if err := json.Unmarshal(raw, &archive); err != nil {
		return nil, apperrors.NewParsingError("decoding har archive", err)
	}

	stats := &ImportStats{}
	for _, entry := range archive.Log.Entries {
		stats.Entries++
		if err := im.importEntry(ctx, entry, stats); err != nil {
			return nil, err
		}
	}

	im.logger.InfoContext(ctx, "har import complete",
		slog.Int("entries", stats.Entries),
		slog.Int("url_rejected", stats.URLRejected),
		slog.Int("type_rejected", stats.TypeRejected),
		slog.Int("body_skipped", stats.BodySkipped),
		slog.Int("sniff_rejected", stats.SniffRejected),
		slog.Int("spooled", stats.Spooled))
	return stats, nil
}

func (im *Importer) importEntry(ctx context.Context, entry harEntry, stats *ImportStats) error {
	url := entry.Request.URL
	if !im.heur.RelevantURL(url) {
		stats.URLRejected++
		return nil
	}
	if !im.heur.JSONContentType(entry.Response.Content.MimeType) {
		stats.TypeRejected++
		return nil
	}
	body, ok := decodeBody(entry.Response.Content)
	if !ok {
		stats.BodySkipped++
		im.logger.DebugContext(ctx, "skipping entry without usable body", slog.String("url", url))
		return nil
	}
	var payload interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		stats.BodySkipped++
		im.logger.DebugContext(ctx, "skipping undecodable body",
			slog.String("url", url),
			slog.String("error", err.Error()))
		return nil
	}
	if !im.saveAll && !im.heur.LooksLikeMetrics(payload) {
		stats.SniffRejected++
		return nil
	}
	if _, err := im.store.Save(ctx, url, payload); err != nil {
		return err
	}
	stats.Spooled++
	if im.preview != nil {
		im.preview.Collect(payload)
	}
	return nil
}

// decodeBody returns the response text as bytes, base64-decoded when
// the archive says so. False when the body is empty or undecodable.
func decodeBody(content harContent) ([]byte, bool) {
	if strings.TrimSpace(content.Text) == "" {
		return nil, false
	}
	if strings.EqualFold(content.Encoding, "base64") {
		decoded, err := base64.StdEncoding.DecodeString(content.Text)
		if err != nil {
			return nil, false
		}
		return decoded, true
	}
	return []byte(content.Text), true
}

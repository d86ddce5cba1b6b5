package cache

import (
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"sort"
	"time"
)

// ExportVersion is the version written to every export.
const ExportVersion = "1.0"

// ExportFormat is the JSON document used to share learned patterns between
// installations.
type ExportFormat struct {
	Version    string            `json:"version"`
	ExportedAt string            `json:"exported_at"`
	Entries    []ExportEntry     `json:"entries"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// ExportEntry is one learned pattern: a pattern key and the converted code.
type ExportEntry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// patternKey matches "{from}->{to}:{signature}".
var patternKey = regexp.MustCompile(`^[a-z0-9+#]+->[a-z0-9+#]+:.`)

// ValidKey reports whether key has the shape of a pattern key.
func ValidKey(key string) bool {
	return patternKey.MatchString(key)
}

// Exporter writes a cache as an ExportFormat document.
type Exporter struct {
	cache PatternCache
	now   func() time.Time
}

// NewExporter creates an Exporter over cache.
func NewExporter(cache PatternCache) *Exporter {
	return &Exporter{cache: cache, now: time.Now}
}

// Export writes every pattern to w, sorted by key so two exports of the
// same cache are byte-identical apart from the timestamp.
func (e *Exporter) Export(w io.Writer, metadata map[string]string) error {
	patterns, err := e.cache.Entries()
	if err != nil {
		return fmt.Errorf("reading patterns: %w", err)
	}

	doc := ExportFormat{
		Version:    ExportVersion,
		ExportedAt: e.now().UTC().Format(time.RFC3339),
		Entries:    make([]ExportEntry, 0, len(patterns)),
		Metadata:   metadata,
	}
	for k, v := range patterns {
		doc.Entries = append(doc.Entries, ExportEntry{Key: k, Value: v})
	}
	sort.Slice(doc.Entries, func(i, j int) bool { return doc.Entries[i].Key < doc.Entries[j].Key })

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding patterns: %w", err)
	}
	return nil
}

// Importer merges an ExportFormat document into a cache.
type Importer struct {
	cache PatternCache
}

// NewImporter creates an Importer over cache.
func NewImporter(cache PatternCache) *Importer {
	return &Importer{cache: cache}
}

// Import merges the entries read from r. Existing keys are overwritten.
// Entries with a malformed key or empty code, and entries the cache
// rejects, are counted as failed; the rest of the document still loads.
func (i *Importer) Import(r io.Reader) (*ImportResult, error) {
	var doc ExportFormat
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding patterns: %w", err)
	}
	if doc.Version != "" && doc.Version != ExportVersion {
		return nil, fmt.Errorf("unsupported export version %q", doc.Version)
	}

	res := &ImportResult{Version: doc.Version, Metadata: doc.Metadata}
	for _, entry := range doc.Entries {
		if !ValidKey(entry.Key) || entry.Value == "" {
			res.Failed++
			continue
		}
		if err := i.cache.Set(entry.Key, entry.Value); err != nil {
			res.Failed++
			continue
		}
		res.Imported++
	}
	return res, nil
}

// ImportResult summarizes an import.
type ImportResult struct {
	Version  string            `json:"version"`
	Metadata map[string]string `json:"metadata,omitempty"`
	Imported int               `json:"imported"`
	Failed   int               `json:"failed"`
}

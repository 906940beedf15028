package model

import (
	"encoding/json"
	"strings"
)

// Category names one of the top-level segment maps in the configuration document.
type Category string

const (
	CategoryRepositories Category = "repositories"
	CategoryExporters    Category = "exporters"
)

// Categories lists every known segment category.
func Categories() []Category {
	return []Category{CategoryRepositories, CategoryExporters}
}

// Singular returns the category name without its trailing "s" (e.g. "exporter").
func (c Category) Singular() string {
	return strings.TrimSuffix(string(c), "s")
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	return c == CategoryRepositories || c == CategoryExporters
}

// SegmentConfig is the opaque per-type configuration of a segment.
// Only the concrete segment type interprets its keys.
type SegmentConfig map[string]any

// Clone returns a shallow copy of the config. A nil config stays nil.
func (c SegmentConfig) Clone() SegmentConfig {
	if c == nil {
		return nil
	}
	out := make(SegmentConfig, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// SegmentRecord is the persisted form of one repository or exporter.
type SegmentRecord struct {
	Type   string        `json:"type"`
	Config SegmentConfig `json:"config"`
}

// ConfigDocument is the whole configuration file.
// A name missing from Repositories/Exporters means "not configured".
type ConfigDocument struct {
	RepositoriesDirectory string                   `json:"repositories_directory,omitempty"`
	PackageManager        string                   `json:"package_manager,omitempty"`
	Repositories          map[string]SegmentRecord `json:"repositories,omitempty"`
	Exporters             map[string]SegmentRecord `json:"exporters,omitempty"`

	// Extra keeps top-level keys docscribe does not manage so they survive a rewrite.
	Extra map[string]json.RawMessage `json:"-"`
}

type configFields ConfigDocument

var configKeys = []string{"repositories_directory", "package_manager", "repositories", "exporters"}

// UnmarshalJSON implements json.Unmarshaler.
func (d *ConfigDocument) UnmarshalJSON(data []byte) error {
	var fields configFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for _, key := range configKeys {
		delete(raw, key)
	}
	*d = ConfigDocument(fields)
	d.Extra = nil
	if len(raw) > 0 {
		d.Extra = raw
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (d ConfigDocument) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(configFields(d))
	if err != nil || len(d.Extra) == 0 {
		return data, err
	}
	merged := make(map[string]json.RawMessage, len(d.Extra)+len(configKeys))
	if err := json.Unmarshal(data, &merged); err != nil {
		return nil, err
	}
	for key, value := range d.Extra {
		if _, ok := merged[key]; !ok {
			merged[key] = value
		}
	}
	return json.Marshal(merged)
}

// Segments returns the record map for a category. The map may be nil.
func (d *ConfigDocument) Segments(category Category) map[string]SegmentRecord {
	switch category {
	case CategoryRepositories:
		return d.Repositories
	case CategoryExporters:
		return d.Exporters
	}
	return nil
}

// Segment looks up a single record by category and name.
func (d *ConfigDocument) Segment(category Category, name string) (SegmentRecord, bool) {
	rec, ok := d.Segments(category)[name]
	return rec, ok
}

// SetSegment upserts a record, allocating the category map on first use.
func (d *ConfigDocument) SetSegment(category Category, name string, rec SegmentRecord) {
	switch category {
	case CategoryRepositories:
		if d.Repositories == nil {
			d.Repositories = make(map[string]SegmentRecord)
		}
		d.Repositories[name] = rec
	case CategoryExporters:
		if d.Exporters == nil {
			d.Exporters = make(map[string]SegmentRecord)
		}
		d.Exporters[name] = rec
	}
}

// RemoveSegment deletes a record and reports whether it was present.
func (d *ConfigDocument) RemoveSegment(category Category, name string) bool {
	segments := d.Segments(category)
	if _, ok := segments[name]; !ok {
		return false
	}
	delete(segments, name)
	return true
}

package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"docscribe/internal/model"
	"docscribe/pkg/fsutils"

	"github.com/spf13/afero"
)

// JSONStore implements the ConfigStore interface on a single JSON file.
// Every mutation re-reads the file and rewrites it completely, so concurrent
// invocations resolve as last-writer-wins.
type JSONStore struct {
	fs     afero.Fs
	path   string
	logger *slog.Logger
}

// NewJSONStore creates a new JSONStore for the file at path.
// The file itself is only created on the first write.
func NewJSONStore(fs afero.Fs, path string, logger *slog.Logger) *JSONStore {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &JSONStore{fs: fs, path: path, logger: logger}
}

// Path returns the configuration file location.
func (js *JSONStore) Path() string {
	return js.path
}

// Exists reports whether the configuration file is present.
func (js *JSONStore) Exists() (bool, error) {
	ok, err := afero.Exists(js.fs, js.path)
	if err != nil {
		return false, fmt.Errorf("failed to stat config file %s: %w", js.path, err)
	}
	return ok, nil
}

// Load reads and parses the configuration file.
func (js *JSONStore) Load() (*model.ConfigDocument, error) {
	data, err := afero.ReadFile(js.fs, js.path)
	if err != nil {
		if os.IsNotExist(err) {
			js.logger.Debug("Config file not found, using empty document", "path", js.path)
			return &model.ConfigDocument{}, nil
		}
		return nil, fmt.Errorf("failed to read config file %s: %w", js.path, err)
	}

	var doc model.ConfigDocument
	if len(bytes.TrimSpace(data)) == 0 {
		return &doc, nil
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config file %s: %v", model.ErrInvalidConfiguration, js.path, err)
	}
	js.logger.Debug("Loaded config file", "path", js.path,
		"repositories", len(doc.Repositories), "exporters", len(doc.Exporters))
	return &doc, nil
}

// Save persists the document, replacing the file atomically.
func (js *JSONStore) Save(doc *model.ConfigDocument) error {
	data, err := json.MarshalIndent(doc, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal config document: %w", err)
	}
	if err := fsutils.WriteFileAtomic(js.fs, js.path, data); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", js.path, err)
	}
	js.logger.Debug("Saved config file", "path", js.path)
	return nil
}

// WriteSegment upserts a segment record and persists the whole document.
func (js *JSONStore) WriteSegment(category model.Category, name, segmentType string, config model.SegmentConfig) error {
	if name == "" {
		return fmt.Errorf("%w: %s name cannot be empty", model.ErrValidation, category.Singular())
	}
	if !category.Valid() {
		return fmt.Errorf("%w: unknown segment category %q", model.ErrValidation, category)
	}

	doc, err := js.Load()
	if err != nil {
		return err
	}
	if config == nil {
		config = model.SegmentConfig{}
	}
	doc.SetSegment(category, name, model.SegmentRecord{Type: segmentType, Config: config})

	if err := js.Save(doc); err != nil {
		return err
	}
	js.logger.Info("Saved segment", "category", category, "name", name, "type", segmentType)
	return nil
}

// DeleteSegment removes a segment record. The file is left untouched when
// the name is not configured.
func (js *JSONStore) DeleteSegment(category model.Category, name string) error {
	doc, err := js.Load()
	if err != nil {
		return err
	}
	if !doc.RemoveSegment(category, name) {
		js.logger.Debug("Segment not configured, nothing to delete", "category", category, "name", name)
		return nil
	}

	if err := js.Save(doc); err != nil {
		return err
	}
	js.logger.Info("Deleted segment", "category", category, "name", name)
	return nil
}

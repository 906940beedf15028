package storage

import "docscribe/internal/model"

// ConfigStore defines the operations needed for persisting the configuration document.
// This allows swapping implementations (e.g., JSON file vs. in-memory) in tests.
type ConfigStore interface {
	// Load reads the whole document. A missing file yields an empty document.
	Load() (*model.ConfigDocument, error)

	// Save rewrites the whole document.
	Save(doc *model.ConfigDocument) error

	// WriteSegment upserts one segment record and persists the document.
	WriteSegment(category model.Category, name, segmentType string, config model.SegmentConfig) error

	// DeleteSegment removes one segment record. Absent names are a no-op.
	DeleteSegment(category model.Category, name string) error

	// Exists reports whether the configuration file has been created.
	Exists() (bool, error)

	// Path returns the location of the configuration file.
	Path() string
}

// Package segment defines the contract shared by repositories and exporters,
// the registry that maps a persisted type name to its implementation, and the
// create/remove lifecycle that ties a segment to the configuration store.
package segment

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"

	"docscribe/internal/config"
	"docscribe/internal/model"
	"docscribe/internal/s3client"
	"docscribe/internal/ui"

	"github.com/spf13/afero"
)

// Segment is a named, typed, configured repository or exporter.
type Segment interface {
	Name() string
	Type() string
	Category() model.Category
	Config() model.SegmentConfig

	// Authenticate establishes any backend session the segment needs.
	// Failures are wrapped in model.ErrBackendAuth.
	Authenticate(ctx context.Context) error
}

// Exporter ships a generated file to its destination.
type Exporter interface {
	Segment

	// Export sends sourceFile to the destination, removes sourceFile and
	// returns the URI of the stored copy.
	Export(ctx context.Context, sourceFile string, mode model.ReadMode) (string, error)

	// OutputURI returns where a file with the given name ends up.
	OutputURI(fileName string) string
}

// Repository is a source of document definitions.
type Repository interface {
	Segment

	ListReports(ctx context.Context) ([]string, error)

	// Download fetches a report into the managed repositories directory
	// and returns the local path.
	Download(ctx context.Context, report string) (string, error)
}

// Deps carries the collaborators a concrete segment may need.
type Deps struct {
	Fs          afero.Fs
	Settings    *config.Settings
	Printer     *ui.Printer
	Logger      *slog.Logger
	NewS3Client s3client.Factory
}

// WithDefaults fills unset collaborators with working defaults.
func (d Deps) WithDefaults() Deps {
	if d.Fs == nil {
		d.Fs = afero.NewOsFs()
	}
	if d.Settings == nil {
		d.Settings = &config.Settings{
			ConfigFile:      config.DefaultConfigFile,
			RootDir:         config.DefaultRootDir,
			RepositoriesDir: filepath.Join(config.DefaultRootDir, "repositories"),
			OutputsDir:      filepath.Join(config.DefaultRootDir, "outputs"),
			TmpDir:          filepath.Join(config.DefaultRootDir, ".tmp"),
			Python:          config.DefaultPython,
		}
	}
	if d.Printer == nil {
		d.Printer = ui.NewPlainPrinter(io.Discard)
	}
	if d.Logger == nil {
		d.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if d.NewS3Client == nil {
		d.NewS3Client = s3client.NewClient
	}
	return d
}

// Base holds the identity fields common to every segment.
type Base struct {
	name     string
	typ      string
	category model.Category
	config   model.SegmentConfig
}

// NewBase returns the identity part of a segment. A nil config becomes empty.
func NewBase(name, typ string, category model.Category, cfg model.SegmentConfig) Base {
	if cfg == nil {
		cfg = model.SegmentConfig{}
	}
	return Base{name: name, typ: typ, category: category, config: cfg}
}

func (b Base) Name() string                { return b.name }
func (b Base) Type() string                { return b.typ }
func (b Base) Category() model.Category    { return b.category }
func (b Base) Config() model.SegmentConfig { return b.config.Clone() }

// Record returns the persisted form of seg.
func Record(seg Segment) model.SegmentRecord {
	return model.SegmentRecord{Type: seg.Type(), Config: seg.Config()}
}

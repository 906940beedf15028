// Package exporter implements the exporter segment types.
package exporter

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"unicode/utf8"

	"docscribe/internal/model"
	"docscribe/internal/prompt"
	"docscribe/internal/segment"
	"docscribe/internal/ui"
	"docscribe/pkg/fsutils"

	"github.com/spf13/afero"
)

// TypeLocal and TypeS3 are the registered exporter type names.
const (
	TypeLocal = "local"
	TypeS3    = "s3"
)

// Local writes exported files to <outputs_dir>/<exporter name>/.
type Local struct {
	segment.Base
	fs      afero.Fs
	dir     string
	printer *ui.Printer
	logger  *slog.Logger
}

var _ segment.Exporter = (*Local)(nil)

// NewLocal hydrates a local exporter.
func NewLocal(name string, cfg model.SegmentConfig, deps segment.Deps) (segment.Segment, error) {
	return &Local{
		Base:    segment.NewBase(name, TypeLocal, model.CategoryExporters, cfg),
		fs:      deps.Fs,
		dir:     filepath.Join(deps.Settings.OutputsDir, name),
		printer: deps.Printer,
		logger:  deps.Logger,
	}, nil
}

// BuildLocalConfig returns the empty configuration of a local exporter.
func BuildLocalConfig(p prompt.Prompter, printer *ui.Printer) (model.SegmentConfig, error) {
	printer.Info("[INFO] Local exporter does not require any configuration.")
	return model.SegmentConfig{}, nil
}

// Authenticate is a no-op for the local filesystem.
func (l *Local) Authenticate(ctx context.Context) error { return nil }

// Dir is the directory exported files are written to.
func (l *Local) Dir() string { return l.dir }

// OutputURI implements segment.Exporter.
func (l *Local) OutputURI(fileName string) string {
	return filepath.Join(l.dir, fileName)
}

// Export implements segment.Exporter.
func (l *Local) Export(ctx context.Context, sourceFile string, mode model.ReadMode) (string, error) {
	content, err := afero.ReadFile(l.fs, sourceFile)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", sourceFile, err)
	}
	if mode == model.ModeText && !utf8.Valid(content) {
		return "", fmt.Errorf("%w: %s is not valid UTF-8 text", model.ErrValidation, sourceFile)
	}

	uri := l.OutputURI(filepath.Base(sourceFile))
	if samePath(sourceFile, uri) {
		l.logger.Debug("File already in exporter directory", "exporter", l.Name(), "uri", uri)
		l.printer.Success("Report saved at %s", uri)
		return uri, nil
	}
	if err := fsutils.CreateDir(l.fs, filepath.Dir(uri)); err != nil {
		return "", fmt.Errorf("failed to create output directory %s: %w", filepath.Dir(uri), err)
	}
	if err := fsutils.WriteToFile(l.fs, uri, content); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", uri, err)
	}
	if err := l.fs.Remove(sourceFile); err != nil {
		return "", fmt.Errorf("failed to remove %s after export: %w", sourceFile, err)
	}

	l.logger.Debug("Exported file", "exporter", l.Name(), "source", sourceFile, "uri", uri)
	l.printer.Success("Report saved at %s", uri)
	return uri, nil
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}

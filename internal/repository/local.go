// Package repository implements the repository segment types.
package repository

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"

	"docscribe/internal/model"
	"docscribe/internal/prompt"
	"docscribe/internal/segment"
	"docscribe/internal/ui"
	"docscribe/pkg/fsutils"

	"github.com/spf13/afero"
	"github.com/spf13/cast"
)

// TypeLocal and TypeS3 are the registered repository type names.
const (
	TypeLocal = "local"
	TypeS3    = "s3"
)

// Local is a repository on the local filesystem. Documents live under
// <repositories_dir>/<name>/. An optional "path" config points at a second
// directory that reports can be copied from.
type Local struct {
	segment.Base
	fs     afero.Fs
	dir    string
	source string
	logger *slog.Logger
}

var _ segment.Repository = (*Local)(nil)

// NewLocal hydrates a local repository.
func NewLocal(name string, cfg model.SegmentConfig, deps segment.Deps) (segment.Segment, error) {
	source, err := cast.ToStringE(cfg["path"])
	if err != nil {
		return nil, fmt.Errorf("%w: local repository path: %v", model.ErrValidation, err)
	}
	return &Local{
		Base:   segment.NewBase(name, TypeLocal, model.CategoryRepositories, cfg),
		fs:     deps.Fs,
		dir:    filepath.Join(deps.Settings.RepositoriesDir, name),
		source: source,
		logger: deps.Logger,
	}, nil
}

// BuildLocalConfig returns the empty configuration of a local repository.
func BuildLocalConfig(p prompt.Prompter, printer *ui.Printer) (model.SegmentConfig, error) {
	printer.Info("[INFO] Local repository does not require any configuration.")
	return model.SegmentConfig{}, nil
}

// Authenticate is a no-op for the local filesystem.
func (l *Local) Authenticate(ctx context.Context) error { return nil }

// Dir is the managed directory holding this repository's documents.
func (l *Local) Dir() string { return l.dir }

// ListReports implements segment.Repository.
func (l *Local) ListReports(ctx context.Context) ([]string, error) {
	root := l.dir
	if l.source != "" {
		root = l.source
	}
	reports, err := fsutils.ListDirs(l.fs, root)
	if err != nil {
		return nil, err
	}
	sort.Strings(reports)
	return reports, nil
}

// Download implements segment.Repository. Without a source path the report
// already lives in the managed directory and only its presence is checked.
func (l *Local) Download(ctx context.Context, report string) (string, error) {
	dest := filepath.Join(l.dir, report)
	if l.source == "" {
		if !fsutils.DirExists(l.fs, dest) {
			return "", fmt.Errorf("%w: report %s in repository %s", model.ErrNotFound, report, l.Name())
		}
		return dest, nil
	}

	src := filepath.Join(l.source, report)
	if !fsutils.DirExists(l.fs, src) {
		return "", fmt.Errorf("%w: report %s in %s", model.ErrNotFound, report, l.source)
	}
	if err := fsutils.CopyDir(l.fs, src, dest); err != nil {
		return "", fmt.Errorf("failed to copy report %s: %w", report, err)
	}
	l.logger.Debug("Copied report", "repository", l.Name(), "from", src, "to", dest)
	return dest, nil
}

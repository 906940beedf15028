// Package service is the functional surface consumed by the CLI. It wires the
// configuration store, segment managers, document scaffolding and the
// generation pipeline together for one command invocation.
package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sort"

	"docscribe/internal/config"
	"docscribe/internal/exporter"
	"docscribe/internal/generator"
	"docscribe/internal/model"
	"docscribe/internal/pipeline"
	"docscribe/internal/prompt"
	"docscribe/internal/registry"
	"docscribe/internal/repository"
	"docscribe/internal/s3client"
	"docscribe/internal/segment"
	"docscribe/internal/segmentmanager"
	"docscribe/internal/storage"
	"docscribe/internal/ui"
	"docscribe/pkg/fsutils"

	"github.com/spf13/afero"
)

// DefaultSegmentName is the segment seeded in each category by Init.
const DefaultSegmentName = "local"

// Options configures a Service. Zero values get working defaults.
type Options struct {
	Fs          afero.Fs
	Settings    *config.Settings
	Store       storage.ConfigStore
	Registry    *segment.Registry
	Prompter    prompt.Prompter
	Printer     *ui.Printer
	Logger      *slog.Logger
	Runner      pipeline.Runner
	NewS3Client s3client.Factory
}

// Service executes docscribe operations.
type Service struct {
	fs          afero.Fs
	settings    *config.Settings
	store       storage.ConfigStore
	registry    *segment.Registry
	prompter    prompt.Prompter
	printer     *ui.Printer
	logger      *slog.Logger
	runner      pipeline.Runner
	newS3Client s3client.Factory
}

// SegmentInfo is one row of a segment listing.
type SegmentInfo struct {
	Name string
	Type string
}

// New creates a Service.
func New(opts Options) *Service {
	deps := segment.Deps{
		Fs:          opts.Fs,
		Settings:    opts.Settings,
		Printer:     opts.Printer,
		Logger:      opts.Logger,
		NewS3Client: opts.NewS3Client,
	}.WithDefaults()

	s := &Service{
		fs:          deps.Fs,
		settings:    deps.Settings,
		store:       opts.Store,
		registry:    opts.Registry,
		prompter:    opts.Prompter,
		printer:     deps.Printer,
		logger:      deps.Logger,
		runner:      opts.Runner,
		newS3Client: deps.NewS3Client,
	}
	if s.store == nil {
		s.store = storage.NewJSONStore(s.fs, s.settings.ConfigFile, s.logger)
	}
	if s.registry == nil {
		s.registry = registry.Default()
	}
	if s.prompter == nil {
		s.prompter = prompt.NewTerminal(eofReader{}, io.Discard)
	}
	if s.runner == nil {
		s.runner = pipeline.ExecRunner{}
	}
	return s
}

// eofReader makes every prompt fail with model.ErrAborted.
type eofReader struct{}

func (eofReader) Read([]byte) (int, error) { return 0, io.EOF }

// Settings returns the resolved settings, including the repositories
// directory recorded in the configuration document.
func (s *Service) Settings() *config.Settings {
	return s.settings
}

func (s *Service) managerDeps() segmentmanager.Dependencies {
	return segmentmanager.Dependencies{
		Store:    s.store,
		Registry: s.registry,
		Prompter: s.prompter,
		Segment: segment.Deps{
			Fs:          s.fs,
			Settings:    s.settings,
			Printer:     s.printer,
			Logger:      s.logger,
			NewS3Client: s.newS3Client,
		},
	}
}

// loadConfig fails with model.ErrConfigurationMissing until Init has run.
func (s *Service) loadConfig() (*model.ConfigDocument, error) {
	exists, err := s.store.Exists()
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s does not exist, run \"docscribe init\" first", model.ErrConfigurationMissing, s.store.Path())
	}
	doc, err := s.store.Load()
	if err != nil {
		return nil, err
	}
	s.settings.ApplyDocument(doc)
	return doc, nil
}

// Init creates or updates the configuration document. Existing segments are
// kept; a "local" repository and exporter are added when missing.
func (s *Service) Init(packageManager string) error {
	if !config.ValidPackageManager(packageManager) {
		return fmt.Errorf("%w: unsupported package manager %q (want one of %v)", model.ErrValidation, packageManager, config.PackageManagers)
	}

	doc, err := s.store.Load()
	if err != nil {
		return err
	}
	doc.PackageManager = packageManager
	if doc.RepositoriesDirectory == "" {
		doc.RepositoriesDirectory = s.settings.RepositoriesDir
	}
	s.settings.ApplyDocument(doc)

	localTypes := map[model.Category]string{
		model.CategoryRepositories: repository.TypeLocal,
		model.CategoryExporters:    exporter.TypeLocal,
	}
	for _, category := range model.Categories() {
		if _, ok := doc.Segment(category, DefaultSegmentName); !ok {
			doc.SetSegment(category, DefaultSegmentName, model.SegmentRecord{Type: localTypes[category], Config: model.SegmentConfig{}})
		}
	}

	for _, dir := range []string{filepath.Join(s.settings.RepositoriesDir, DefaultSegmentName), s.settings.OutputsDir} {
		if err := fsutils.CreateDir(s.fs, dir); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	if err := s.store.Save(doc); err != nil {
		return err
	}
	s.logger.Info("Initialized configuration", "path", s.store.Path(), "package_manager", packageManager)
	s.printer.Success("Configuration file created at %s", s.store.Path())
	return nil
}

// CreateSegment interactively creates a segment in category. An empty name
// is prompted for.
func (s *Service) CreateSegment(ctx context.Context, category model.Category, name string) (segment.Segment, error) {
	if _, err := s.loadConfig(); err != nil {
		return nil, err
	}
	m, err := segmentmanager.New(s.managerDeps(), category, name)
	if err != nil {
		return nil, err
	}
	return m.CreateSegment(ctx)
}

// DeleteSegment removes a segment. Unknown names only print a warning.
func (s *Service) DeleteSegment(ctx context.Context, category model.Category, name string) error {
	if _, err := s.loadConfig(); err != nil {
		return err
	}
	m, err := segmentmanager.New(s.managerDeps(), category, name)
	if err != nil {
		return err
	}
	return m.DeleteSegment(ctx)
}

// ListSegments returns the configured segments of category sorted by name.
func (s *Service) ListSegments(category model.Category) ([]SegmentInfo, error) {
	if !category.Valid() {
		return nil, fmt.Errorf("%w: unknown segment category %q", model.ErrValidation, category)
	}
	doc, err := s.loadConfig()
	if err != nil {
		return nil, err
	}
	segments := doc.Segments(category)
	out := make([]SegmentInfo, 0, len(segments))
	for name, rec := range segments {
		out = append(out, SegmentInfo{Name: name, Type: rec.Type})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// SegmentNames returns the names configured in category.
func (s *Service) SegmentNames(category model.Category) ([]string, error) {
	infos, err := s.ListSegments(category)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(infos))
	for i, info := range infos {
		names[i] = info.Name
	}
	return names, nil
}

// ExportFile sends path through the named exporter.
func (s *Service) ExportFile(ctx context.Context, exporterName, path string, mode model.ReadMode) (string, error) {
	if _, err := s.loadConfig(); err != nil {
		return "", err
	}
	m, err := segmentmanager.NewExporterManager(s.managerDeps(), exporterName)
	if err != nil {
		return "", err
	}
	return m.Export(ctx, path, mode)
}

// ExporterDir returns the output directory of a local exporter.
func (s *Service) ExporterDir(exporterName string) (string, error) {
	if _, err := s.loadConfig(); err != nil {
		return "", err
	}
	m, err := segmentmanager.NewExporterManager(s.managerDeps(), exporterName)
	if err != nil {
		return "", err
	}
	if err := m.ValidateSegment(); err != nil {
		return "", err
	}
	local, ok := m.Segment().(*exporter.Local)
	if !ok {
		return "", fmt.Errorf("%w: exporter %s is of type %s, only local exporters can be previewed", model.ErrValidation, exporterName, m.Segment().Type())
	}
	return local.Dir(), nil
}

// ListReports lists the reports of the named repository.
func (s *Service) ListReports(ctx context.Context, repository string) ([]string, error) {
	if _, err := s.loadConfig(); err != nil {
		return nil, err
	}
	m, err := segmentmanager.NewRepositoryManager(s.managerDeps(), repository)
	if err != nil {
		return nil, err
	}
	return m.ListReports(ctx)
}

// DownloadReport fetches report from the named repository.
func (s *Service) DownloadReport(ctx context.Context, repository, report string) (string, error) {
	if _, err := s.loadConfig(); err != nil {
		return "", err
	}
	m, err := segmentmanager.NewRepositoryManager(s.managerDeps(), repository)
	if err != nil {
		return "", err
	}
	dest, err := m.Download(ctx, report)
	if err != nil {
		return "", err
	}
	s.printer.Success("%s downloaded.", report)
	return dest, nil
}

// RunGeneration generates a document and exports it.
func (s *Service) RunGeneration(ctx context.Context, req pipeline.Request) (*pipeline.Generation, error) {
	doc, err := s.loadConfig()
	if err != nil {
		return nil, err
	}
	if err := requireRepository(doc, req.Repository); err != nil {
		return nil, err
	}
	p := pipeline.New(pipeline.Dependencies{
		Managers:       s.managerDeps(),
		Runner:         s.runner,
		PackageManager: doc.PackageManager,
	})
	return p.Run(ctx, req)
}

func (s *Service) generator() *generator.Generator {
	return generator.New(s.fs, generator.DefaultGeneratorConfig(s.settings.RepositoriesDir), s.printer, s.logger)
}

// CreateDocument scaffolds a new document in repository.
func (s *Service) CreateDocument(name, repository string, templateType model.TemplateType) (string, error) {
	doc, err := s.loadConfig()
	if err != nil {
		return "", err
	}
	if err := requireRepository(doc, repository); err != nil {
		return "", err
	}
	return s.generator().CreateDocument(name, repository, templateType)
}

// DeleteDocument removes a document from repository.
func (s *Service) DeleteDocument(name, repository string) error {
	doc, err := s.loadConfig()
	if err != nil {
		return err
	}
	if err := requireRepository(doc, repository); err != nil {
		return err
	}
	return s.generator().DeleteDocument(name, repository)
}

// requireRepository accepts configured repositories, and "local" while no
// repository has been configured at all.
func requireRepository(doc *model.ConfigDocument, name string) error {
	if _, ok := doc.Segment(model.CategoryRepositories, name); ok {
		return nil
	}
	if len(doc.Repositories) == 0 && name == DefaultSegmentName {
		return nil
	}
	return fmt.Errorf("%w: repository %s does not exist in config", model.ErrNotFound, name)
}

// Package pipeline generates a document: it installs the document's Python
// requirements, collects kwargs, runs the data script, validates its result,
// renders the template and hands the file to an exporter.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"docscribe/internal/generator"
	"docscribe/internal/model"
	"docscribe/internal/segmentmanager"
	"docscribe/internal/templating"

	"github.com/google/uuid"
	"go.uber.org/multierr"
)

// Request selects the document to generate and where the output goes.
type Request struct {
	Document         string
	Repository       string
	Exporter         string
	UseDefaultKwargs bool
}

// Generation describes a finished generation.
type Generation struct {
	Document    string
	OutputURI   string
	Kwargs      map[string]any
	KwargsSaved bool
}

// Dependencies are the collaborators of a Pipeline. Managers also supplies
// the filesystem, settings, printer, logger and prompter.
type Dependencies struct {
	Managers       segmentmanager.Dependencies
	Runner         Runner
	PackageManager string
}

// Pipeline runs document generations.
type Pipeline struct {
	deps      Dependencies
	installer *Installer
	scripts   *ScriptExecutor
	engine    *templating.Engine
	logger    *slog.Logger
}

// New creates a Pipeline.
func New(d Dependencies) *Pipeline {
	d.Managers.Segment = d.Managers.Segment.WithDefaults()
	if d.Runner == nil {
		d.Runner = ExecRunner{}
	}
	seg := d.Managers.Segment
	return &Pipeline{
		deps:      d,
		installer: NewInstaller(d.Runner, d.PackageManager, d.Managers.Prompter, seg.Printer, seg.Logger),
		scripts:   NewScriptExecutor(d.Runner, seg.Settings.Python, seg.Logger),
		engine:    templating.NewEngine(seg.Fs, seg.Logger),
		logger:    seg.Logger,
	}
}

// Run generates req.Document from req.Repository and exports it through
// req.Exporter. The scratch run directory is removed whatever the outcome.
func (p *Pipeline) Run(ctx context.Context, req Request) (res *Generation, err error) {
	seg := p.deps.Managers.Segment
	if req.Document == "" || req.Repository == "" || req.Exporter == "" {
		return nil, fmt.Errorf("%w: document, repository and exporter are required", model.ErrValidation)
	}

	exporter, err := segmentmanager.NewExporterManager(p.deps.Managers, req.Exporter)
	if err != nil {
		return nil, err
	}
	if err := exporter.ValidateSegment(); err != nil {
		return nil, err
	}

	docDir := filepath.Join(seg.Settings.RepositoriesDir, req.Repository, req.Document)
	cfg, err := generator.ReadConfig(seg.Fs, docDir)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, fmt.Errorf("%w: document %s in repository %s", model.ErrNotFound, req.Document, req.Repository)
		}
		return nil, err
	}
	log := p.logger.With("document", req.Document, "repository", req.Repository)

	if err := p.installer.Install(ctx, cfg.Requirements()); err != nil {
		return nil, err
	}

	kwargs, changed, err := CollectKwargs(p.deps.Managers.Prompter, seg.Printer, cfg.Kwargs, req.UseDefaultKwargs)
	if err != nil {
		return nil, err
	}
	res = &Generation{Document: req.Document, Kwargs: kwargs}
	if changed {
		save, err := p.deps.Managers.Prompter.Confirm("Do you want to save the new kwargs as default?", false)
		if err != nil {
			return nil, err
		}
		if save {
			cfg.Kwargs = kwargs
			if err := generator.WriteConfig(seg.Fs, docDir, cfg); err != nil {
				return nil, err
			}
			res.KwargsSaved = true
			log.Info("Saved kwargs")
		}
	}

	script, err := generator.FindScript(seg.Fs, docDir)
	if err != nil {
		return nil, err
	}
	data, err := p.scripts.Execute(ctx, script, kwargs)
	if err != nil {
		return nil, err
	}
	if err := ValidateResult(cfg.TemplateSchema, data); err != nil {
		return nil, err
	}

	if _, err := model.ParseTemplateType(string(cfg.TemplateType)); err != nil {
		return nil, err
	}
	runDir := filepath.Join(seg.Settings.TmpDir, uuid.NewString())
	defer func() {
		if rmErr := seg.Fs.RemoveAll(runDir); rmErr != nil {
			log.Warn("Failed to remove run directory", "path", runDir, "error", rmErr)
			err = multierr.Append(err, fmt.Errorf("failed to remove %s: %w", runDir, rmErr))
			res = nil
		}
	}()

	templatePath := filepath.Join(docDir, generator.TemplateBase+"."+string(cfg.TemplateType))
	outPath := filepath.Join(runDir, cfg.ExportFileName(req.Document))
	if err := p.engine.RenderFile(templatePath, cfg.TemplateType, data, outPath); err != nil {
		return nil, err
	}
	seg.Printer.Success("Document %s generated successfully!", req.Document)

	uri, err := exporter.Export(ctx, outPath, cfg.TemplateType.ReadMode())
	if err != nil {
		return nil, err
	}
	res.OutputURI = uri
	log.Info("Generated document", "exporter", req.Exporter, "uri", uri)
	return res, nil
}

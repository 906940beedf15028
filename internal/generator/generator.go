// Package generator owns the on-disk layout of a document bundle: it
// scaffolds new documents, deletes them, and reads or rewrites their
// config.json.
package generator

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"docscribe/internal/model"
	"docscribe/internal/ui"
	"docscribe/pkg/fsutils"

	"github.com/spf13/afero"
)

// File names inside a document directory.
const (
	ConfigFileName = "config.json"
	ScriptBaseName = "script"
	TemplateBase   = "template"
)

// Config holds the configuration for document scaffolding.
type Config struct {
	BaseDir      string            // Repositories directory holding one folder per repository
	DefaultFiles map[string]string // Extra files written into every new document, by name
}

const defaultScript = `def run(**kwargs):
    """Fetch the data rendered into the template.

    Receives the document kwargs and returns a JSON-serialisable mapping
    that must satisfy template_schema in config.json.
    """
    return {}
`

// DefaultGeneratorConfig provides the standard scaffolding configuration.
func DefaultGeneratorConfig(baseDir string) Config {
	return Config{
		BaseDir: baseDir,
		DefaultFiles: map[string]string{
			ScriptBaseName + ".py": defaultScript,
		},
	}
}

var validName = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidateName rejects names that cannot be used as a single directory.
func ValidateName(kind, name string) error {
	if !validName.MatchString(name) {
		return fmt.Errorf("%w: invalid %s name %q (use letters, digits, '.', '_' or '-')", model.ErrValidation, kind, name)
	}
	return nil
}

// Generator creates and deletes document bundles.
type Generator struct {
	fs      afero.Fs
	cfg     Config
	printer *ui.Printer
	logger  *slog.Logger
}

// New creates a Generator.
func New(fs afero.Fs, cfg Config, printer *ui.Printer, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if printer == nil {
		printer = ui.NewPlainPrinter(io.Discard)
	}
	return &Generator{fs: fs, cfg: cfg, printer: printer, logger: logger}
}

// DocumentDir returns the directory of a document in a repository.
func (g *Generator) DocumentDir(repository, name string) string {
	return filepath.Join(g.cfg.BaseDir, repository, name)
}

// CreateDocument scaffolds template.<type>, the script and config.json for a
// new document and returns its directory.
func (g *Generator) CreateDocument(name, repository string, templateType model.TemplateType) (string, error) {
	if err := ValidateName("document", name); err != nil {
		return "", err
	}
	if err := ValidateName("repository", repository); err != nil {
		return "", err
	}
	if _, err := model.ParseTemplateType(string(templateType)); err != nil {
		return "", err
	}

	repoDir := filepath.Join(g.cfg.BaseDir, repository)
	if err := fsutils.CreateDir(g.fs, repoDir); err != nil {
		return "", fmt.Errorf("failed to create repository directory %s: %w", repoDir, err)
	}
	docDir := filepath.Join(repoDir, name)
	if exists, _ := afero.Exists(g.fs, docDir); exists {
		return "", fmt.Errorf("%w: document %s already exists in %s", model.ErrValidation, name, repository)
	}

	g.printer.Info("Creating %s document for %s of type %s", name, repository, templateType)
	if err := fsutils.CreateDir(g.fs, docDir); err != nil {
		return "", fmt.Errorf("failed to create document directory %s: %w", docDir, err)
	}

	templatePath := filepath.Join(docDir, TemplateBase+"."+string(templateType))
	if err := fsutils.CreateFile(g.fs, templatePath); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", templatePath, err)
	}

	names := make([]string, 0, len(g.cfg.DefaultFiles))
	for fileName := range g.cfg.DefaultFiles {
		names = append(names, fileName)
	}
	sort.Strings(names)
	for _, fileName := range names {
		path := filepath.Join(docDir, fileName)
		if err := fsutils.WriteToFile(g.fs, path, []byte(g.cfg.DefaultFiles[fileName])); err != nil {
			return "", fmt.Errorf("failed to create default file %s: %w", path, err)
		}
	}

	if err := WriteConfig(g.fs, docDir, model.NewDocumentConfig(name, templateType)); err != nil {
		return "", err
	}

	g.logger.Info("Created document", "name", name, "repository", repository, "type", templateType, "directory", docDir)
	g.printer.Success("Document %s created successfully", name)
	return docDir, nil
}

// DeleteDocument removes a document directory and everything in it.
func (g *Generator) DeleteDocument(name, repository string) error {
	if err := ValidateName("document", name); err != nil {
		return err
	}
	if err := ValidateName("repository", repository); err != nil {
		return err
	}
	repoDir := filepath.Join(g.cfg.BaseDir, repository)
	if !fsutils.DirExists(g.fs, repoDir) {
		return fmt.Errorf("%w: repository %s does not exist", model.ErrNotFound, repository)
	}
	docDir := filepath.Join(repoDir, name)
	if !fsutils.DirExists(g.fs, docDir) {
		return fmt.Errorf("%w: document %s does not exist in %s", model.ErrNotFound, name, repository)
	}

	g.printer.Info("Deleting %s document from %s", name, repository)
	if err := g.fs.RemoveAll(docDir); err != nil {
		g.logger.Error("Failed to delete document directory", "path", docDir, "error", err)
		return fmt.Errorf("failed to delete %s: %w", docDir, err)
	}

	g.logger.Info("Deleted document", "name", name, "repository", repository)
	g.printer.Success("Document %s deleted successfully", name)
	return nil
}

// ReadConfig loads the config.json of the document in docDir.
func ReadConfig(fs afero.Fs, docDir string) (*model.DocumentConfig, error) {
	path := filepath.Join(docDir, ConfigFileName)
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: document configuration %s", model.ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var cfg model.DocumentConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", model.ErrInvalidConfiguration, path, err)
	}
	if cfg.TemplateType == "" {
		cfg.TemplateType = model.DefaultTemplateType
	}
	if cfg.Kwargs == nil {
		cfg.Kwargs = map[string]any{}
	}
	return &cfg, nil
}

// WriteConfig rewrites the config.json of the document in docDir.
func WriteConfig(fs afero.Fs, docDir string, cfg *model.DocumentConfig) error {
	path := filepath.Join(docDir, ConfigFileName)
	data, err := json.MarshalIndent(cfg, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if err := fsutils.WriteFileAtomic(fs, path, append(data, '\n')); err != nil {
		return err
	}
	return nil
}

// FindScript returns the path of the document's script.<ext> file.
func FindScript(fs afero.Fs, docDir string) (string, error) {
	matches, err := afero.Glob(fs, filepath.Join(docDir, ScriptBaseName+".*"))
	if err != nil {
		return "", fmt.Errorf("failed to look up script in %s: %w", docDir, err)
	}
	sort.Strings(matches)
	for _, m := range matches {
		if fsutils.FileExists(fs, m) {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: script %s", model.ErrNotFound, filepath.Join(docDir, ScriptBaseName+".py"))
}

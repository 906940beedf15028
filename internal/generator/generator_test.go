package generator

import (
	"bytes"
	"encoding/json"
	"errors"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"docscribe/internal/model"
	"docscribe/internal/ui"

	"github.com/spf13/afero"
)

func newTestGenerator(t *testing.T) (*Generator, afero.Fs, *bytes.Buffer) {
	t.Helper()
	fs := afero.NewMemMapFs()
	var out bytes.Buffer
	return New(fs, DefaultGeneratorConfig("repos"), ui.NewPlainPrinter(&out), nil), fs, &out
}

func TestCreateDocument(t *testing.T) {
	g, fs, out := newTestGenerator(t)

	dir, err := g.CreateDocument("invoice", "local", model.TemplateMD)
	if err != nil {
		t.Fatalf("CreateDocument() failed: %v", err)
	}
	if want := filepath.Join("repos", "local", "invoice"); dir != want {
		t.Errorf("CreateDocument() dir = %q, want %q", dir, want)
	}

	for _, name := range []string{"template.md", "script.py", "config.json"} {
		if exists, _ := afero.Exists(fs, filepath.Join(dir, name)); !exists {
			t.Errorf("expected file %s was not created", name)
		}
	}

	script, _ := afero.ReadFile(fs, filepath.Join(dir, "script.py"))
	if !strings.Contains(string(script), "def run(**kwargs):") {
		t.Errorf("script stub missing run(): %q", script)
	}

	raw, _ := afero.ReadFile(fs, filepath.Join(dir, "config.json"))
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("config.json is not valid JSON: %v", err)
	}
	want := map[string]any{
		"default_export_name": "invoice",
		"kwargs":              map[string]any{},
		"template_schema":     map[string]any{},
		"required_modules":    []any{},
		"template_type":       "md",
	}
	if !reflect.DeepEqual(doc, want) {
		t.Errorf("config.json = %v, want %v", doc, want)
	}
	if !strings.Contains(out.String(), "Document invoice created successfully") {
		t.Errorf("missing success message in %q", out.String())
	}
}

func TestCreateDocumentExisting(t *testing.T) {
	g, _, _ := newTestGenerator(t)
	if _, err := g.CreateDocument("invoice", "local", model.TemplateTXT); err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	if _, err := g.CreateDocument("invoice", "local", model.TemplateTXT); !errors.Is(err, model.ErrValidation) {
		t.Errorf("CreateDocument() error = %v, want ErrValidation", err)
	}
}

func TestCreateDocumentRejectsBadInput(t *testing.T) {
	g, fs, _ := newTestGenerator(t)

	if _, err := g.CreateDocument("invoice", "local", model.TemplateType("pdf")); !errors.Is(err, model.ErrValidation) {
		t.Errorf("unknown type error = %v, want ErrValidation", err)
	}
	if _, err := g.CreateDocument("../escape", "local", model.TemplateMD); !errors.Is(err, model.ErrValidation) {
		t.Errorf("path name error = %v, want ErrValidation", err)
	}
	if exists, _ := afero.Exists(fs, filepath.Join("repos", "local", "invoice")); exists {
		t.Error("document created despite invalid type")
	}
}

func TestDeleteDocument(t *testing.T) {
	g, fs, _ := newTestGenerator(t)
	dir, err := g.CreateDocument("invoice", "local", model.TemplateHTML)
	if err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	if err := g.DeleteDocument("invoice", "local"); err != nil {
		t.Fatalf("DeleteDocument() failed: %v", err)
	}
	if exists, _ := afero.Exists(fs, dir); exists {
		t.Error("document directory still exists")
	}
}

func TestDeleteDocumentMissing(t *testing.T) {
	g, fs, _ := newTestGenerator(t)

	if err := g.DeleteDocument("invoice", "nowhere"); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("missing repository error = %v, want ErrNotFound", err)
	}
	if err := fs.MkdirAll(filepath.Join("repos", "local"), 0755); err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	if err := g.DeleteDocument("invoice", "local"); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("missing document error = %v, want ErrNotFound", err)
	}
}

func TestDeleteDocumentRejectsPathNames(t *testing.T) {
	g, fs, _ := newTestGenerator(t)
	dir, err := g.CreateDocument("invoice", "local", model.TemplateMD)
	if err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	for _, tc := range []struct{ name, repository string }{
		{"..", "local"},
		{".", "local"},
		{"", "local"},
		{"invoice", ".."},
		{"local/invoice", "."},
	} {
		if err := g.DeleteDocument(tc.name, tc.repository); !errors.Is(err, model.ErrValidation) {
			t.Errorf("DeleteDocument(%q, %q) error = %v, want ErrValidation", tc.name, tc.repository, err)
		}
	}
	if exists, _ := afero.Exists(fs, filepath.Join(dir, "config.json")); !exists {
		t.Error("document was removed through a path-like name")
	}
}

func TestReadWriteConfig(t *testing.T) {
	fs := afero.NewMemMapFs()
	if _, err := ReadConfig(fs, "docs/missing"); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("ReadConfig() on missing file error = %v, want ErrNotFound", err)
	}

	cfg := model.NewDocumentConfig("report", model.TemplateTXT)
	cfg.Kwargs["title"] = "default"
	if err := WriteConfig(fs, "docs/report", cfg); err != nil {
		t.Fatalf("WriteConfig() failed: %v", err)
	}
	got, err := ReadConfig(fs, "docs/report")
	if err != nil {
		t.Fatalf("ReadConfig() failed: %v", err)
	}
	if got.Kwargs["title"] != "default" || got.TemplateType != model.TemplateTXT {
		t.Errorf("ReadConfig() = %+v", got)
	}
}

func TestReadConfigLegacyKeys(t *testing.T) {
	fs := afero.NewMemMapFs()
	raw := `{"default_export_name": "old", "kwargs": {}, "template_schema": {}, "require_modules": ["requests==2.31.0"]}`
	if err := afero.WriteFile(fs, "doc/config.json", []byte(raw), 0644); err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	cfg, err := ReadConfig(fs, "doc")
	if err != nil {
		t.Fatalf("ReadConfig() failed: %v", err)
	}
	if got := cfg.Requirements(); !reflect.DeepEqual(got, []string{"requests==2.31.0"}) {
		t.Errorf("Requirements() = %v", got)
	}
	if cfg.TemplateType != model.DefaultTemplateType {
		t.Errorf("TemplateType = %q, want default %q", cfg.TemplateType, model.DefaultTemplateType)
	}
}

func TestReadConfigMalformed(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "doc/config.json", []byte("{"), 0644); err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	if _, err := ReadConfig(fs, "doc"); !errors.Is(err, model.ErrInvalidConfiguration) {
		t.Errorf("ReadConfig() error = %v, want ErrInvalidConfiguration", err)
	}
}

func TestFindScript(t *testing.T) {
	fs := afero.NewMemMapFs()
	if _, err := FindScript(fs, "doc"); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("FindScript() error = %v, want ErrNotFound", err)
	}
	if err := afero.WriteFile(fs, "doc/script.sh", []byte("echo {}"), 0755); err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	got, err := FindScript(fs, "doc")
	if err != nil {
		t.Fatalf("FindScript() failed: %v", err)
	}
	if got != filepath.Join("doc", "script.sh") {
		t.Errorf("FindScript() = %q", got)
	}
}

package main

import (
	"bytes"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"docscribe/internal/config"
	"docscribe/internal/model"
	"docscribe/internal/pipeline"
	"docscribe/internal/prompt"
	"docscribe/internal/ui"

	"github.com/spf13/afero"
)

func newTestApp(input string) (*application, *bytes.Buffer) {
	out := &bytes.Buffer{}
	return &application{
		v:        config.NewViper(),
		fs:       afero.NewMemMapFs(),
		stderr:   io.Discard,
		printer:  ui.NewPlainPrinter(out),
		prompter: prompt.NewTerminal(strings.NewReader(input), out),
		runner:   pipeline.ExecRunner{},
	}, out
}

func execute(app *application, args ...string) error {
	cmd := newRootCmd(app)
	cmd.SetArgs(args)
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	return cmd.Execute()
}

func TestCommandsRequireInit(t *testing.T) {
	app, _ := newTestApp("")

	err := execute(app, "repository", "list")
	if !errors.Is(err, model.ErrConfigurationMissing) {
		t.Fatalf("repository list before init returned %v, want ErrConfigurationMissing", err)
	}
}

func TestInitAndListRepositories(t *testing.T) {
	app, out := newTestApp("")

	if err := execute(app, "init", "-p", "pip"); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	if !strings.Contains(out.String(), "Configuration file created at .docscribe_config.json") {
		t.Errorf("init output missing confirmation:\n%s", out.String())
	}

	out.Reset()
	if err := execute(app, "repository", "list"); err != nil {
		t.Fatalf("repository list failed: %v", err)
	}
	if !strings.Contains(out.String(), "local") {
		t.Errorf("repository list does not show local:\n%s", out.String())
	}
}

func TestInitRequiresPackageManager(t *testing.T) {
	app, _ := newTestApp("")

	if err := execute(app, "init"); err == nil {
		t.Fatal("init without --package-manager should fail")
	}
	if err := execute(app, "init", "-p", "conda"); !errors.Is(err, model.ErrValidation) {
		t.Errorf("init with conda returned %v, want ErrValidation", err)
	}
}

func TestDocCreateAndDelete(t *testing.T) {
	app, _ := newTestApp("invoice\ny\n")
	if err := execute(app, "init", "-p", "pip"); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	if err := execute(app, "doc", "create", "-t", "md"); err != nil {
		t.Fatalf("doc create failed: %v", err)
	}
	docDir := filepath.Join("docscribe", "repositories", "local", "invoice")
	if exists, _ := afero.Exists(app.fs, filepath.Join(docDir, "template.md")); !exists {
		t.Fatalf("template.md was not created in %s", docDir)
	}

	if err := execute(app, "doc", "delete", "-n", "invoice"); err != nil {
		t.Fatalf("doc delete failed: %v", err)
	}
	if exists, _ := afero.Exists(app.fs, docDir); exists {
		t.Errorf("%s still exists after delete", docDir)
	}
}

func TestDocDeleteDeclined(t *testing.T) {
	app, _ := newTestApp("n\n")
	if err := execute(app, "init", "-p", "pip"); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	if err := execute(app, "doc", "create", "-n", "invoice", "-t", "txt"); err != nil {
		t.Fatalf("doc create failed: %v", err)
	}

	err := execute(app, "doc", "delete", "-n", "invoice")
	if !errors.Is(err, model.ErrAborted) {
		t.Fatalf("declined delete returned %v, want ErrAborted", err)
	}
	if exists, _ := afero.Exists(app.fs, filepath.Join("docscribe", "repositories", "local", "invoice")); !exists {
		t.Error("document was deleted although the prompt was declined")
	}
}

func TestDocCreateInvalidType(t *testing.T) {
	app, _ := newTestApp("")
	if err := execute(app, "init", "-p", "pip"); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	err := execute(app, "doc", "create", "-n", "invoice", "-t", "pdf")
	if !errors.Is(err, model.ErrValidation) {
		t.Fatalf("doc create with pdf returned %v, want ErrValidation", err)
	}
}

func TestExporterDeletePrompts(t *testing.T) {
	app, out := newTestApp("local\n")
	if err := execute(app, "init", "-p", "pip"); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	out.Reset()
	if err := execute(app, "exporter", "delete"); err != nil {
		t.Fatalf("exporter delete failed: %v", err)
	}
	if !strings.Contains(out.String(), "Exporter deleted.") {
		t.Errorf("exporter delete output:\n%s", out.String())
	}

	out.Reset()
	if err := execute(app, "exporter", "list"); err != nil {
		t.Fatalf("exporter list failed: %v", err)
	}
	if !strings.Contains(out.String(), "No exporters found") {
		t.Errorf("exporter list after delete:\n%s", out.String())
	}
}

func TestDisplayAddr(t *testing.T) {
	tests := map[string]string{
		":8080":          "http://localhost:8080",
		"127.0.0.1:9000": "http://127.0.0.1:9000",
	}
	for addr, want := range tests {
		if got := displayAddr(addr); got != want {
			t.Errorf("displayAddr(%q) = %q, want %q", addr, got, want)
		}
	}
}

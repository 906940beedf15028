// Package templating renders document templates: Jinja-style text for
// md/html/txt and placeholder replacement for docx.
package templating

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	"docscribe/internal/model"
	"docscribe/pkg/fsutils"

	"github.com/flosch/pongo2/v6"
	"github.com/lukasjarosch/go-docx"
	"github.com/spf13/afero"
	"github.com/spf13/cast"
)

func init() {
	// Templates produce plain documents, not HTML pages.
	pongo2.SetAutoescape(false)
}

// pongo2 rejects context keys that are not plain identifiers.
var identifier = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// Engine renders document templates.
type Engine struct {
	fs     afero.Fs
	logger *slog.Logger
}

// NewEngine creates a new template engine reading templates from fs.
func NewEngine(fs afero.Fs, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Engine{fs: fs, logger: logger}
}

// RenderFile renders the template at templatePath with data and writes the
// result to outPath. docx templates get placeholder replacement, every other
// type is rendered as Jinja-style text.
func (e *Engine) RenderFile(templatePath string, templateType model.TemplateType, data map[string]any, outPath string) error {
	src, err := afero.ReadFile(e.fs, templatePath)
	if err != nil {
		if exists, _ := afero.Exists(e.fs, templatePath); !exists {
			return fmt.Errorf("%w: template %s", model.ErrNotFound, templatePath)
		}
		return fmt.Errorf("failed to read template %s: %w", templatePath, err)
	}

	var buf bytes.Buffer
	switch templateType {
	case model.TemplateDOCX:
		err = RenderDocx(src, data, &buf)
	case model.TemplateMD, model.TemplateHTML, model.TemplateTXT:
		var out string
		out, err = renderText(e.templateSet(filepath.Dir(templatePath)), string(src), data)
		buf.WriteString(out)
	default:
		_, err = model.ParseTemplateType(string(templateType))
	}
	if err != nil {
		return fmt.Errorf("failed to render %s: %w", templatePath, err)
	}

	if err := fsutils.CreateDir(e.fs, filepath.Dir(outPath)); err != nil {
		return fmt.Errorf("failed to create output directory for %s: %w", outPath, err)
	}
	if err := fsutils.WriteToFile(e.fs, outPath, buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write rendered document %s: %w", outPath, err)
	}
	e.logger.Debug("Rendered template", "template", templatePath, "type", templateType, "output", outPath, "bytes", buf.Len())
	return nil
}

// templateSet resolves include and extends tags against dir on the engine's
// filesystem.
func (e *Engine) templateSet(dir string) *pongo2.TemplateSet {
	root := afero.NewIOFS(afero.NewBasePathFs(e.fs, dir))
	return pongo2.NewSet("document", pongo2.NewFSLoader(root))
}

// RenderText renders a Jinja-style text template that does not include
// other files.
func RenderText(src string, data map[string]any) (string, error) {
	return renderText(pongo2.DefaultSet, src, data)
}

func renderText(set *pongo2.TemplateSet, src string, data map[string]any) (string, error) {
	tpl, err := set.FromString(src)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}
	out, err := tpl.Execute(textContext(data))
	if err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return out, nil
}

func textContext(data map[string]any) pongo2.Context {
	ctx := make(pongo2.Context, len(data))
	for key, value := range data {
		if identifier.MatchString(key) {
			ctx[key] = value
		}
	}
	return ctx
}

// RenderDocx replaces {placeholder} tags in a docx template and writes the
// resulting document to w. Nested values are addressed with dotted keys,
// e.g. {customer.name} or {items.0}.
func RenderDocx(src []byte, data map[string]any, w io.Writer) error {
	doc, err := docx.OpenBytes(src)
	if err != nil {
		return fmt.Errorf("failed to open docx template: %w", err)
	}
	defer doc.Close()

	if err := doc.ReplaceAll(Placeholders(data)); err != nil {
		return fmt.Errorf("failed to replace placeholders: %w", err)
	}
	if err := doc.Write(w); err != nil {
		return fmt.Errorf("failed to write docx: %w", err)
	}
	return nil
}

// Placeholders flattens data into docx placeholder values.
func Placeholders(data map[string]any) docx.PlaceholderMap {
	out := make(docx.PlaceholderMap)
	flatten("", data, out)
	return out
}

func flatten(prefix string, value any, out docx.PlaceholderMap) {
	join := func(key string) string {
		if prefix == "" {
			return key
		}
		return prefix + "." + key
	}

	switch v := value.(type) {
	case map[string]any:
		keys := make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			flatten(join(key), v[key], out)
		}
	case []any:
		for i, item := range v {
			flatten(join(strconv.Itoa(i)), item, out)
		}
	case nil:
		if prefix != "" {
			out[prefix] = ""
		}
	default:
		if prefix != "" {
			out[prefix] = cast.ToString(v)
		}
	}
}

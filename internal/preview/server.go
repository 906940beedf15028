// Package preview serves the files written by a local exporter over HTTP so
// generated documents can be opened in a browser.
package preview

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/afero"
)

const indexTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <title>docscribe - {{.Exporter}}</title>
</head>
<body>
  <h1>Exporter {{.Exporter}}</h1>
  <p>{{.Dir}}</p>
  {{if .Error}}<p class="error">{{.Error}}</p>{{end}}
  {{if .Files}}
  <table>
    <tr><th>Name</th><th>Size</th><th>Modified</th></tr>
    {{range .Files}}
    <tr><td><a href="/files/{{.Name}}">{{.Name}}</a></td><td>{{.Size}}</td><td>{{.Modified.Format "2006-01-02 15:04"}}</td></tr>
    {{end}}
  </table>
  {{else}}
  <p>No documents exported yet.</p>
  {{end}}
</body>
</html>
`

// FileEntry is one exported document.
type FileEntry struct {
	Name     string    `json:"name"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
}

// IndexPageData holds the data rendered by the index page.
type IndexPageData struct {
	Exporter string
	Dir      string
	Files    []FileEntry
	Error    string
}

// Server serves one exporter's output directory.
type Server struct {
	fs       afero.Fs
	exporter string
	dir      string
	logger   *slog.Logger
	index    *template.Template
}

// New creates a Server for the output directory dir of exporter.
func New(fs afero.Fs, exporter, dir string, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	index, err := template.New("index").Parse(indexTemplate)
	if err != nil {
		return nil, fmt.Errorf("error parsing index template: %w", err)
	}
	return &Server{fs: fs, exporter: exporter, dir: dir, logger: logger, index: index}, nil
}

// Routes sets up the HTTP router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{
		Logger:  slog.NewLogLogger(s.logger.Handler(), slog.LevelInfo),
		NoColor: true,
	}))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/", s.indexHandler)
	r.Get("/api/files", s.listFilesHandler)

	files := http.FileServer(afero.NewHttpFs(s.fs).Dir(s.dir))
	r.Handle("/files/*", http.StripPrefix("/files/", files))

	return r
}

// Files lists the regular files in the output directory sorted by name.
// A directory that does not exist yet has no files.
func (s *Server) Files() ([]FileEntry, error) {
	infos, err := afero.ReadDir(s.fs, s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []FileEntry{}, nil
		}
		return nil, fmt.Errorf("failed to list %s: %w", s.dir, err)
	}
	files := make([]FileEntry, 0, len(infos))
	for _, info := range infos {
		if info.IsDir() {
			continue
		}
		files = append(files, FileEntry{Name: info.Name(), Size: info.Size(), Modified: info.ModTime()})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

func (s *Server) indexHandler(w http.ResponseWriter, r *http.Request) {
	data := IndexPageData{Exporter: s.exporter, Dir: s.dir}
	files, err := s.Files()
	if err != nil {
		s.logger.Error("Failed to list exported files", "dir", s.dir, "error", err)
		data.Error = "Failed to list exported documents."
	}
	data.Files = files

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.index.Execute(w, data); err != nil {
		s.logger.Error("Error executing index template", "error", err)
	}
}

func (s *Server) listFilesHandler(w http.ResponseWriter, r *http.Request) {
	files, err := s.Files()
	if err != nil {
		s.logger.Error("Failed to list exported files", "dir", s.dir, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(files); err != nil {
		s.logger.Error("Error writing file list response", "error", err)
	}
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting preview server", "address", addr, "dir", s.dir)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("preview server shutdown: %w", err)
		}
		return nil
	}
}

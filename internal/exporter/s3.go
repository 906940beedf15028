package exporter

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"mime"
	"path/filepath"
	"strings"

	"docscribe/internal/model"
	"docscribe/internal/s3client"
	"docscribe/internal/segment"
	"docscribe/internal/ui"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/spf13/afero"
)

// S3 uploads exported files to <bucket>/<prefix>/.
type S3 struct {
	segment.Base
	cfg       s3client.Config
	newClient s3client.Factory
	client    s3client.API
	fs        afero.Fs
	printer   *ui.Printer
	logger    *slog.Logger
}

var _ segment.Exporter = (*S3)(nil)

// NewS3 hydrates an s3 exporter. The client is created on Authenticate.
func NewS3(name string, cfg model.SegmentConfig, deps segment.Deps) (segment.Segment, error) {
	typed, err := s3client.DecodeConfig(cfg)
	if err != nil {
		return nil, err
	}
	return &S3{
		Base:      segment.NewBase(name, TypeS3, model.CategoryExporters, cfg),
		cfg:       typed,
		newClient: deps.NewS3Client,
		fs:        deps.Fs,
		printer:   deps.Printer,
		logger:    deps.Logger,
	}, nil
}

// Authenticate implements segment.Segment.
func (e *S3) Authenticate(ctx context.Context) error {
	if e.client != nil {
		return nil
	}
	client, err := e.newClient(ctx, e.cfg)
	if err != nil {
		return err
	}
	e.client = client
	return nil
}

// OutputURI implements segment.Exporter.
func (e *S3) OutputURI(fileName string) string {
	return e.cfg.URI(fileName)
}

// Export implements segment.Exporter.
func (e *S3) Export(ctx context.Context, sourceFile string, mode model.ReadMode) (string, error) {
	if err := e.Authenticate(ctx); err != nil {
		return "", err
	}
	content, err := afero.ReadFile(e.fs, sourceFile)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", sourceFile, err)
	}

	name := filepath.Base(sourceFile)
	input := &s3.PutObjectInput{
		Bucket:      aws.String(e.cfg.Bucket),
		Key:         aws.String(e.cfg.Key(name)),
		Body:        bytes.NewReader(content),
		ContentType: aws.String(contentType(name, mode)),
	}
	if _, err := e.client.PutObject(ctx, input); err != nil {
		return "", s3client.ClassifyError("failed to upload "+name, err)
	}
	if err := e.fs.Remove(sourceFile); err != nil {
		return "", fmt.Errorf("failed to remove %s after export: %w", sourceFile, err)
	}

	uri := e.OutputURI(name)
	e.logger.Debug("Uploaded file", "exporter", e.Name(), "bucket", e.cfg.Bucket, "key", e.cfg.Key(name))
	e.printer.Success("Report saved at %s", uri)
	return uri, nil
}

// Extensions the mime package does not know on every system.
var contentTypes = map[string]string{
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".md":   "text/markdown; charset=utf-8",
	".txt":  "text/plain; charset=utf-8",
}

func contentType(name string, mode model.ReadMode) string {
	ext := strings.ToLower(filepath.Ext(name))
	if t, ok := contentTypes[ext]; ok {
		return t
	}
	if t := mime.TypeByExtension(ext); t != "" {
		return t
	}
	if mode == model.ModeText {
		return "text/plain; charset=utf-8"
	}
	return "application/octet-stream"
}

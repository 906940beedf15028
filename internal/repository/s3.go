package repository

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"docscribe/internal/model"
	"docscribe/internal/s3client"
	"docscribe/internal/segment"
	"docscribe/pkg/fsutils"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sourcegraph/conc/pool"
	"github.com/spf13/afero"
	"go.uber.org/multierr"
)

// downloadWorkers bounds concurrent object fetches during Download.
const downloadWorkers = 4

// S3 is a repository whose reports are the "directories" under
// <bucket>/<prefix>/.
type S3 struct {
	segment.Base
	cfg       s3client.Config
	newClient s3client.Factory
	client    s3client.API
	fs        afero.Fs
	dir       string
	logger    *slog.Logger
}

var _ segment.Repository = (*S3)(nil)

// NewS3 hydrates an s3 repository. The client is created on Authenticate.
func NewS3(name string, cfg model.SegmentConfig, deps segment.Deps) (segment.Segment, error) {
	typed, err := s3client.DecodeConfig(cfg)
	if err != nil {
		return nil, err
	}
	return &S3{
		Base:      segment.NewBase(name, TypeS3, model.CategoryRepositories, cfg),
		cfg:       typed,
		newClient: deps.NewS3Client,
		fs:        deps.Fs,
		dir:       filepath.Join(deps.Settings.RepositoriesDir, name),
		logger:    deps.Logger,
	}, nil
}

// Authenticate implements segment.Segment.
func (r *S3) Authenticate(ctx context.Context) error {
	if r.client != nil {
		return nil
	}
	client, err := r.newClient(ctx, r.cfg)
	if err != nil {
		return err
	}
	r.client = client
	return nil
}

// ListReports implements segment.Repository.
func (r *S3) ListReports(ctx context.Context) ([]string, error) {
	if err := r.Authenticate(ctx); err != nil {
		return nil, err
	}

	paginator := s3.NewListObjectsV2Paginator(r.client, &s3.ListObjectsV2Input{
		Bucket:    aws.String(r.cfg.Bucket),
		Prefix:    aws.String(r.cfg.ListPrefix()),
		Delimiter: aws.String("/"),
	})
	var reports []string
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, s3client.ClassifyError("failed to list reports", err)
		}
		for _, cp := range page.CommonPrefixes {
			name := path.Base(strings.TrimSuffix(aws.ToString(cp.Prefix), "/"))
			if name != "" && name != "." && name != "/" {
				reports = append(reports, name)
			}
		}
	}
	sort.Strings(reports)
	return reports, nil
}

// Download implements segment.Repository. Objects are fetched by a bounded
// worker pool into <repositories_dir>/<name>/<report>/.
func (r *S3) Download(ctx context.Context, report string) (string, error) {
	if err := r.Authenticate(ctx); err != nil {
		return "", err
	}

	keys, err := r.reportKeys(ctx, report)
	if err != nil {
		return "", err
	}
	if len(keys) == 0 {
		return "", fmt.Errorf("%w: report %s in %s", model.ErrNotFound, report, r.cfg.URI(report))
	}

	dest := filepath.Join(r.dir, report)
	if err := fsutils.CreateDir(r.fs, dest); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dest, err)
	}

	p := pool.New().WithMaxGoroutines(downloadWorkers).WithContext(ctx).WithCancelOnError()
	for _, key := range keys {
		p.Go(func(ctx context.Context) error {
			return r.fetch(ctx, key, filepath.Join(dest, path.Base(key)))
		})
	}
	if err := p.Wait(); err != nil {
		return "", err
	}
	r.logger.Info("Downloaded report", "repository", r.Name(), "report", report, "objects", len(keys), "path", dest)
	return dest, nil
}

func (r *S3) reportKeys(ctx context.Context, report string) ([]string, error) {
	paginator := s3.NewListObjectsV2Paginator(r.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(r.cfg.Bucket),
		Prefix: aws.String(r.cfg.Key(report) + "/"),
	})
	var keys []string
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, s3client.ClassifyError("failed to list report "+report, err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if key == "" || strings.HasSuffix(key, "/") {
				continue
			}
			keys = append(keys, key)
		}
	}
	return keys, nil
}

func (r *S3) fetch(ctx context.Context, key, target string) (err error) {
	out, err := r.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return s3client.ClassifyError("failed to download "+key, err)
	}
	defer func() { err = multierr.Append(err, out.Body.Close()) }()

	f, err := r.fs.Create(target)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", target, err)
	}
	defer func() { err = multierr.Append(err, f.Close()) }()

	if _, err := io.Copy(f, out.Body); err != nil {
		return fmt.Errorf("failed to write %s: %w", target, err)
	}
	return nil
}

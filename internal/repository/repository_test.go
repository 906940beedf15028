package repository

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
	"sync"
	"testing"

	"docscribe/internal/config"
	"docscribe/internal/model"
	"docscribe/internal/s3client"
	"docscribe/internal/segment"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/spf13/afero"
)

// mockBucket serves a flat key space the way S3 lists it.
type mockBucket struct {
	mu      sync.Mutex
	objects map[string]string
	gets    int
	listErr error
}

func (m *mockBucket) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	return nil, errors.New("not implemented")
}

func (m *mockBucket) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	body, ok := m.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &smithy.GenericAPIError{Code: "NoSuchKey", Message: "missing"}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(body))}, nil
}

func (m *mockBucket) ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	prefix := aws.ToString(in.Prefix)
	delimiter := aws.ToString(in.Delimiter)

	keys := make([]string, 0, len(m.objects))
	for key := range m.objects {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	out := &s3.ListObjectsV2Output{}
	seen := map[string]bool{}
	for _, key := range keys {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		rest := strings.TrimPrefix(key, prefix)
		if delimiter != "" {
			if i := strings.Index(rest, delimiter); i >= 0 {
				cp := prefix + rest[:i+1]
				if !seen[cp] {
					seen[cp] = true
					out.CommonPrefixes = append(out.CommonPrefixes, types.CommonPrefix{Prefix: aws.String(cp)})
				}
				continue
			}
		}
		out.Contents = append(out.Contents, types.Object{Key: aws.String(key)})
	}
	return out, nil
}

func testDeps(fs afero.Fs, client s3client.API) segment.Deps {
	return segment.Deps{
		Fs:       fs,
		Settings: &config.Settings{RepositoriesDir: "repos", OutputsDir: "out", TmpDir: "tmp"},
		NewS3Client: func(ctx context.Context, cfg s3client.Config) (s3client.API, error) {
			if client == nil {
				return nil, model.ErrBackendAuth
			}
			return client, nil
		},
	}.WithDefaults()
}

func s3Config() model.SegmentConfig {
	return model.SegmentConfig{
		"bucket":                "docs",
		"prefix":                "templates",
		"method":                "keys",
		"aws_access_key_id":     "AKIA",
		"aws_secret_access_key": "secret",
	}
}

func newBucket() *mockBucket {
	return &mockBucket{objects: map[string]string{
		"templates/invoice/config.json":  `{"kwargs":{}}`,
		"templates/invoice/script.py":    "def run(): return {}",
		"templates/invoice/template.md":  "# {{ title }}",
		"templates/summary/template.txt": "{{ body }}",
		"templates/readme.txt":           "top-level file",
		"other/ignored/template.md":      "nope",
	}}
}

func TestS3ListReports(t *testing.T) {
	seg, err := NewS3("remote", s3Config(), testDeps(afero.NewMemMapFs(), newBucket()))
	if err != nil {
		t.Fatalf("NewS3() failed: %v", err)
	}

	reports, err := seg.(segment.Repository).ListReports(context.Background())
	if err != nil {
		t.Fatalf("ListReports() failed: %v", err)
	}
	if want := []string{"invoice", "summary"}; !reflect.DeepEqual(reports, want) {
		t.Errorf("ListReports() = %v, want %v", reports, want)
	}
}

func TestS3Download(t *testing.T) {
	fs := afero.NewMemMapFs()
	bucket := newBucket()
	seg, _ := NewS3("remote", s3Config(), testDeps(fs, bucket))

	dest, err := seg.(segment.Repository).Download(context.Background(), "invoice")
	if err != nil {
		t.Fatalf("Download() failed: %v", err)
	}
	if want := filepath.Join("repos", "remote", "invoice"); dest != want {
		t.Errorf("Download() path = %q, want %q", dest, want)
	}
	for _, name := range []string{"config.json", "script.py", "template.md"} {
		got, err := afero.ReadFile(fs, filepath.Join(dest, name))
		if err != nil {
			t.Errorf("missing %s: %v", name, err)
			continue
		}
		if want := bucket.objects["templates/invoice/"+name]; string(got) != want {
			t.Errorf("%s = %q, want %q", name, got, want)
		}
	}
	if bucket.gets != 3 {
		t.Errorf("GetObject called %d times, want 3", bucket.gets)
	}
}

func TestS3DownloadUnknownReport(t *testing.T) {
	seg, _ := NewS3("remote", s3Config(), testDeps(afero.NewMemMapFs(), newBucket()))
	_, err := seg.(segment.Repository).Download(context.Background(), "missing")
	if !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("Download() error = %v, want ErrNotFound", err)
	}
}

func TestS3ListReportsInvalidKeys(t *testing.T) {
	bucket := newBucket()
	bucket.listErr = &smithy.GenericAPIError{Code: "InvalidAccessKeyId", Message: "bad key"}
	seg, _ := NewS3("remote", s3Config(), testDeps(afero.NewMemMapFs(), bucket))

	_, err := seg.(segment.Repository).ListReports(context.Background())
	if !errors.Is(err, model.ErrBackendAuth) {
		t.Fatalf("ListReports() error = %v, want ErrBackendAuth", err)
	}
}

func TestLocalListReports(t *testing.T) {
	fs := afero.NewMemMapFs()
	for _, dir := range []string{"repos/local/b-doc", "repos/local/a-doc"} {
		if err := fs.MkdirAll(dir, 0755); err != nil {
			t.Fatalf("setup failed: %v", err)
		}
	}
	if err := afero.WriteFile(fs, "repos/local/notes.txt", []byte("x"), 0644); err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	seg, err := NewLocal("local", nil, testDeps(fs, nil))
	if err != nil {
		t.Fatalf("NewLocal() failed: %v", err)
	}

	reports, err := seg.(segment.Repository).ListReports(context.Background())
	if err != nil {
		t.Fatalf("ListReports() failed: %v", err)
	}
	if want := []string{"a-doc", "b-doc"}; !reflect.DeepEqual(reports, want) {
		t.Errorf("ListReports() = %v, want %v", reports, want)
	}
}

func TestLocalDownloadFromSourcePath(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "/shared/invoice/template.md", []byte("# {{ title }}"), 0644); err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	seg, err := NewLocal("team", model.SegmentConfig{"path": "/shared"}, testDeps(fs, nil))
	if err != nil {
		t.Fatalf("NewLocal() failed: %v", err)
	}
	repo := seg.(segment.Repository)

	reports, err := repo.ListReports(context.Background())
	if err != nil || !reflect.DeepEqual(reports, []string{"invoice"}) {
		t.Fatalf("ListReports() = %v, %v", reports, err)
	}
	dest, err := repo.Download(context.Background(), "invoice")
	if err != nil {
		t.Fatalf("Download() failed: %v", err)
	}
	got, err := afero.ReadFile(fs, filepath.Join(dest, "template.md"))
	if err != nil || !bytes.Equal(got, []byte("# {{ title }}")) {
		t.Errorf("copied template = %q, %v", got, err)
	}
}

func TestLocalDownloadMissing(t *testing.T) {
	seg, _ := NewLocal("local", nil, testDeps(afero.NewMemMapFs(), nil))
	if _, err := seg.(segment.Repository).Download(context.Background(), "nope"); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("Download() error = %v, want ErrNotFound", err)
	}
}

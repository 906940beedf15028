package segmentmanager

import (
	"context"
	"fmt"

	"docscribe/internal/model"
	"docscribe/internal/segment"
)

// ExporterManager manages an exporter segment.
type ExporterManager struct {
	*Manager
}

// NewExporterManager resolves the named exporter.
func NewExporterManager(d Dependencies, name string) (*ExporterManager, error) {
	m, err := New(d, model.CategoryExporters, name)
	if err != nil {
		return nil, err
	}
	return &ExporterManager{Manager: m}, nil
}

func (m *ExporterManager) exporter() (segment.Exporter, error) {
	if err := m.ValidateSegment(); err != nil {
		return nil, err
	}
	exp, ok := m.segment.(segment.Exporter)
	if !ok {
		return nil, fmt.Errorf("%w: segment %q of type %s is not an exporter", model.ErrValidation, m.name, m.segment.Type())
	}
	return exp, nil
}

// Export sends file through the exporter and returns the stored URI.
func (m *ExporterManager) Export(ctx context.Context, file string, mode model.ReadMode) (string, error) {
	exp, err := m.exporter()
	if err != nil {
		return "", err
	}
	return exp.Export(ctx, file, mode)
}

// OutputURI returns where the exporter would store fileName.
func (m *ExporterManager) OutputURI(fileName string) (string, error) {
	exp, err := m.exporter()
	if err != nil {
		return "", err
	}
	return exp.OutputURI(fileName), nil
}

// RepositoryManager manages a repository segment.
type RepositoryManager struct {
	*Manager
}

// NewRepositoryManager resolves the named repository.
func NewRepositoryManager(d Dependencies, name string) (*RepositoryManager, error) {
	m, err := New(d, model.CategoryRepositories, name)
	if err != nil {
		return nil, err
	}
	return &RepositoryManager{Manager: m}, nil
}

func (m *RepositoryManager) repository() (segment.Repository, error) {
	if err := m.ValidateSegment(); err != nil {
		return nil, err
	}
	repo, ok := m.segment.(segment.Repository)
	if !ok {
		return nil, fmt.Errorf("%w: segment %q of type %s is not a repository", model.ErrValidation, m.name, m.segment.Type())
	}
	return repo, nil
}

// Download fetches report from the repository and returns its local path.
func (m *RepositoryManager) Download(ctx context.Context, report string) (string, error) {
	repo, err := m.repository()
	if err != nil {
		return "", err
	}
	return repo.Download(ctx, report)
}

// ListReports lists the reports available in the repository.
func (m *RepositoryManager) ListReports(ctx context.Context) ([]string, error) {
	repo, err := m.repository()
	if err != nil {
		return nil, err
	}
	return repo.ListReports(ctx)
}

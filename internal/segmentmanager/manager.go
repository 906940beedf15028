// Package segmentmanager resolves a named segment from the configuration
// store and exposes the create/delete lifecycle plus the category-specific
// operations of exporters and repositories.
package segmentmanager

import (
	"context"
	"fmt"
	"log/slog"

	"docscribe/internal/model"
	"docscribe/internal/prompt"
	"docscribe/internal/segment"
	"docscribe/internal/storage"
	"docscribe/internal/ui"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Dependencies are the collaborators shared by every manager.
type Dependencies struct {
	Store    storage.ConfigStore
	Registry *segment.Registry
	Segment  segment.Deps
	Prompter prompt.Prompter
}

// Manager owns at most one hydrated segment for the duration of a command.
type Manager struct {
	name     string
	category model.Category
	store    storage.ConfigStore
	registry *segment.Registry
	deps     segment.Deps
	prompter prompt.Prompter
	printer  *ui.Printer
	logger   *slog.Logger
	segment  segment.Segment
}

// New creates a Manager for category. When name is set and present in the
// store the segment is hydrated; an unknown name leaves the manager empty,
// and operations that need a segment fail later with model.ErrNotFound.
func New(d Dependencies, category model.Category, name string) (*Manager, error) {
	if !category.Valid() {
		return nil, fmt.Errorf("%w: unknown segment category %q", model.ErrValidation, category)
	}
	deps := d.Segment.WithDefaults()
	m := &Manager{
		name:     name,
		category: category,
		store:    d.Store,
		registry: d.Registry,
		deps:     deps,
		prompter: d.Prompter,
		printer:  deps.Printer,
		logger:   deps.Logger,
	}
	if name == "" {
		return m, nil
	}

	doc, err := m.store.Load()
	if err != nil {
		return nil, err
	}
	rec, ok := doc.Segment(category, name)
	if !ok {
		m.logger.Debug("Segment not configured", "category", category, "name", name)
		return m, nil
	}
	seg, err := m.registry.Hydrate(category, name, rec, deps)
	if err != nil {
		return nil, err
	}
	m.segment = seg
	return m, nil
}

// Name returns the managed segment name, empty until one is chosen.
func (m *Manager) Name() string { return m.name }

// Category returns the managed category.
func (m *Manager) Category() model.Category { return m.category }

// Segment returns the hydrated segment or nil.
func (m *Manager) Segment() segment.Segment { return m.segment }

func (m *Manager) title() string {
	return cases.Title(language.English).String(m.category.Singular())
}

// ValidateSegment fails with model.ErrNotFound when no segment is hydrated.
func (m *Manager) ValidateSegment() error {
	if m.segment == nil {
		if m.name == "" {
			return fmt.Errorf("%w: no %s selected", model.ErrNotFound, m.category.Singular())
		}
		return fmt.Errorf("%w: %s '%s'", model.ErrNotFound, m.category.Singular(), m.name)
	}
	return nil
}

// CreateSegment configures and persists a new segment. An existing segment
// under the same name is left untouched and returned with a warning.
func (m *Manager) CreateSegment(ctx context.Context) (segment.Segment, error) {
	if m.segment != nil {
		m.printer.Warn("%s '%s' already exists.", m.title(), m.name)
		return m.segment, nil
	}

	name := m.name
	if name == "" {
		var err error
		name, err = m.prompter.Ask(fmt.Sprintf("Enter the name of the %s", m.category.Singular()), "")
		if err != nil {
			return nil, err
		}
	}

	doc, err := m.store.Load()
	if err != nil {
		return nil, err
	}
	if rec, ok := doc.Segment(m.category, name); ok {
		m.printer.Warn("%s '%s' already exists.", m.title(), name)
		seg, err := m.registry.Hydrate(m.category, name, rec, m.deps)
		if err != nil {
			return nil, err
		}
		m.name, m.segment = name, seg
		return seg, nil
	}

	typ, err := m.prompter.Choose(fmt.Sprintf("Enter the type of %s", m.category.Singular()), m.registry.Types(m.category))
	if err != nil {
		return nil, err
	}
	v, err := m.registry.Lookup(m.category, typ)
	if err != nil {
		return nil, err
	}

	m.logger.Info("Creating segment", "category", m.category, "name", name, "type", typ)
	seg, err := segment.Create(ctx, v, m.category, name, m.deps, m.store, m.prompter)
	if err != nil {
		m.logger.Error("Error creating segment", "category", m.category, "name", name, "error", err)
		return nil, err
	}
	m.name, m.segment = name, seg
	return seg, nil
}

// DeleteSegment removes the hydrated segment's record. Deleting an unknown
// name prints a warning and leaves the store untouched.
func (m *Manager) DeleteSegment(ctx context.Context) error {
	if m.segment == nil {
		m.printer.Warn("%s '%s' not found.", m.title(), m.name)
		return nil
	}
	if err := segment.Remove(m.store, m.segment); err != nil {
		m.logger.Error("Error deleting segment", "category", m.category, "name", m.name, "error", err)
		return err
	}
	m.logger.Info("Deleted segment", "category", m.category, "name", m.name)
	m.segment = nil
	return nil
}

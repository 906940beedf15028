package segment

import (
	"fmt"
	"sort"

	"docscribe/internal/model"
	"docscribe/internal/prompt"
	"docscribe/internal/ui"
)

// Constructor hydrates a segment from persisted configuration. It must not
// prompt or write to the configuration store.
type Constructor func(name string, cfg model.SegmentConfig, deps Deps) (Segment, error)

// ConfigBuilder interactively builds the configuration of a new segment.
type ConfigBuilder func(p prompt.Prompter, printer *ui.Printer) (model.SegmentConfig, error)

// Variant is one registered segment type.
type Variant struct {
	Type               string
	New                Constructor
	BuildDefaultConfig ConfigBuilder
}

// Registry maps category and type name to a Variant. It is filled once at
// startup and read-only afterwards.
type Registry struct {
	variants map[model.Category]map[string]Variant
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{variants: make(map[model.Category]map[string]Variant)}
}

// Register adds v under category. Registering the same type twice panics,
// since it can only happen through a programming error.
func (r *Registry) Register(category model.Category, v Variant) {
	if !category.Valid() {
		panic(fmt.Sprintf("segment: unknown category %q", category))
	}
	if v.Type == "" || v.New == nil || v.BuildDefaultConfig == nil {
		panic(fmt.Sprintf("segment: incomplete variant %q for %s", v.Type, category))
	}
	types, ok := r.variants[category]
	if !ok {
		types = make(map[string]Variant)
		r.variants[category] = types
	}
	if _, dup := types[v.Type]; dup {
		panic(fmt.Sprintf("segment: %s type %q registered twice", category.Singular(), v.Type))
	}
	types[v.Type] = v
}

// Types returns the registered type names for category, sorted.
func (r *Registry) Types(category model.Category) []string {
	names := make([]string, 0, len(r.variants[category]))
	for name := range r.variants[category] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the variant for category and type.
func (r *Registry) Lookup(category model.Category, typ string) (Variant, error) {
	v, ok := r.variants[category][typ]
	if !ok {
		return Variant{}, fmt.Errorf("%w: unknown %s type %q", model.ErrValidation, category.Singular(), typ)
	}
	return v, nil
}

// Hydrate builds the segment described by a persisted record.
func (r *Registry) Hydrate(category model.Category, name string, rec model.SegmentRecord, deps Deps) (Segment, error) {
	v, err := r.Lookup(category, rec.Type)
	if err != nil {
		return nil, err
	}
	seg, err := v.New(name, rec.Config.Clone(), deps.WithDefaults())
	if err != nil {
		return nil, fmt.Errorf("failed to load %s %q: %w", category.Singular(), name, err)
	}
	return seg, nil
}

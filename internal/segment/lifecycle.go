package segment

import (
	"context"
	"fmt"

	"docscribe/internal/model"
	"docscribe/internal/prompt"
	"docscribe/internal/storage"
)

// Create runs the effectful path for a new segment: build its configuration
// interactively, hydrate it, authenticate, then persist the record once.
func Create(ctx context.Context, v Variant, category model.Category, name string, deps Deps, store storage.ConfigStore, p prompt.Prompter) (Segment, error) {
	deps = deps.WithDefaults()
	if name == "" {
		return nil, fmt.Errorf("%w: %s name cannot be empty", model.ErrValidation, category.Singular())
	}

	cfg, err := v.BuildDefaultConfig(p, deps.Printer)
	if err != nil {
		return nil, fmt.Errorf("failed to configure %s %q: %w", category.Singular(), name, err)
	}
	if cfg == nil {
		cfg = model.SegmentConfig{}
	}

	seg, err := v.New(name, cfg.Clone(), deps)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s %q: %w", category.Singular(), name, err)
	}
	if err := seg.Authenticate(ctx); err != nil {
		return nil, err
	}

	if err := store.WriteSegment(category, name, v.Type, cfg); err != nil {
		return nil, fmt.Errorf("failed to save %s %q: %w", category.Singular(), name, err)
	}
	deps.Logger.Info("Segment created", "category", category, "name", name, "type", v.Type)
	return seg, nil
}

// Remove deletes the persisted record of seg.
func Remove(store storage.ConfigStore, seg Segment) error {
	if err := store.DeleteSegment(seg.Category(), seg.Name()); err != nil {
		return fmt.Errorf("failed to delete %s %q: %w", seg.Category().Singular(), seg.Name(), err)
	}
	return nil
}

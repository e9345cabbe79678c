package schema

import (
	"context"
	"slices"
	"time"

	"github.com/hanpama/fieldplan/internal/eventbus"
	"github.com/hanpama/fieldplan/internal/events"
	"github.com/hanpama/fieldplan/internal/field"
	"github.com/hanpama/fieldplan/internal/lookup"
	"github.com/hanpama/fieldplan/internal/model"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Build validates the declaration, merges the field map, and compiles the
// plan. Any configuration violation is returned as a *ConfigError and no
// schema is produced.
func (b *Builder) Build() (*Schema, error) {
	start := time.Now()
	violations := append([]error(nil), b.violations...)

	strategy := b.strategy
	if strategy == nil {
		if b.parent != nil {
			strategy = b.parent.strategy
		} else {
			strategy = lookup.Attr
		}
	}

	direct := orderedmap.New[string, *field.Field]()
	for pair := b.direct.Oldest(); pair != nil; pair = pair.Next() {
		direct.Set(pair.Key, pair.Value)
	}
	implicit, err := b.implicitFields()
	if err != nil {
		violations = append(violations, err)
	}
	for _, name := range implicit {
		if _, declared := direct.Get(name); declared {
			continue
		}
		direct.Set(name, field.New())
	}

	fields := orderedmap.New[string, *field.Field]()
	if b.parent != nil {
		for pair := b.parent.fields.Oldest(); pair != nil; pair = pair.Next() {
			fields.Set(pair.Key, pair.Value)
		}
	}
	for pair := direct.Oldest(); pair != nil; pair = pair.Next() {
		fields.Set(pair.Key, pair.Value)
	}

	accessors := make([]Accessor, 0, fields.Len())
	for pair := fields.Oldest(); pair != nil; pair = pair.Next() {
		a, err := resolve(pair.Key, pair.Value, strategy)
		if err != nil {
			violations = append(violations, err)
			continue
		}
		accessors = append(accessors, a)
	}

	if len(violations) > 0 {
		return nil, &ConfigError{Schema: b.name, Violations: violations}
	}

	s := &Schema{
		name:     b.name,
		parent:   b.parent,
		strategy: strategy,
		fields:   fields,
		plan:     Plan{accessors: accessors},
	}
	eventbus.Publish(context.Background(), events.SchemaCompiled{
		Schema:   s.name,
		Fields:   s.plan.Names(),
		Duration: time.Since(start),
	})
	return s, nil
}

// implicitFields resolves the names expanded from the bound model.
func (b *Builder) implicitFields() ([]string, error) {
	hasInclude := len(b.include) > 0
	hasExclude := len(b.exclude) > 0
	if b.model == nil {
		if hasInclude || hasExclude {
			return nil, ErrModelRequired
		}
		return nil, nil
	}
	if hasInclude && hasExclude {
		return nil, ErrFieldsAndExclude
	}
	if !hasInclude && !hasExclude {
		return nil, ErrFieldsOrExclude
	}

	registry := b.adapters
	if registry == nil {
		registry = model.Default
	}
	canonical, err := registry.Fields(b.model)
	if err != nil {
		return nil, err
	}

	if hasInclude {
		if slices.Contains(b.include, AllFields) {
			return canonical, nil
		}
		return b.include, nil
	}
	names := make([]string, 0, len(canonical))
	for _, name := range canonical {
		if !slices.Contains(b.exclude, name) {
			names = append(names, name)
		}
	}
	return names, nil
}

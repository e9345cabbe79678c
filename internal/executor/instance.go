package executor

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hanpama/fieldplan/internal/eventbus"
	"github.com/hanpama/fieldplan/internal/events"
	"github.com/hanpama/fieldplan/internal/field"
	"github.com/hanpama/fieldplan/internal/schema"
)

var instanceSeq atomic.Uint64

// Instance binds a schema to source data and memoizes the output.
type Instance struct {
	schema *schema.Schema
	source any
	many   bool
	ctx    context.Context

	once sync.Once
	data any
	err  error
}

var _ field.Owner = (*Instance)(nil)

type Option func(*Instance)

// WithMany switches the instance to batch mode.
func WithMany(many bool) Option { return func(i *Instance) { i.many = many } }

// WithContext sets the context handed to method getters and transforms.
func WithContext(ctx context.Context) Option { return func(i *Instance) { i.ctx = ctx } }

// New creates an instance serializing source with s. In batch mode source
// must be a slice or an array.
func New(s *schema.Schema, source any, opts ...Option) (*Instance, error) {
	if s == nil {
		return nil, ErrNilSchema
	}
	i := &Instance{schema: s, source: source}
	for _, opt := range opts {
		opt(i)
	}
	if i.ctx == nil {
		i.ctx = context.Background()
	}
	if i.many && !isCollection(source) {
		return nil, fmt.Errorf("%s: %w, got %T", s.Name(), ErrNotCollection, source)
	}
	return i, nil
}

// Execute serializes source with s without keeping the instance.
func Execute(ctx context.Context, s *schema.Schema, source any, many bool) (any, error) {
	i, err := New(s, source, WithContext(ctx), WithMany(many))
	if err != nil {
		return nil, err
	}
	return i.Data()
}

func (i *Instance) Schema() *schema.Schema   { return i.schema }
func (i *Instance) Source() any              { return i.source }
func (i *Instance) Many() bool               { return i.many }
func (i *Instance) Context() context.Context { return i.ctx }

// Data returns the output tree, computing it on first use. The result is a
// map[string]any, or a []map[string]any in batch mode. Later calls return the
// cached result and error.
func (i *Instance) Data() (any, error) {
	i.once.Do(func() { i.data, i.err = i.compute() })
	return i.data, i.err
}

type instanceKey struct{}

// parentID returns the id of the instance whose transform ctx belongs to, or
// zero outside nested serialization.
func parentID(ctx context.Context) uint64 {
	id, _ := ctx.Value(instanceKey{}).(uint64)
	return id
}

func (i *Instance) compute() (any, error) {
	id := instanceSeq.Add(1)
	name := i.schema.Name()
	start := time.Now()
	eventbus.Publish(i.ctx, events.SerializeStart{ID: id, Parent: parentID(i.ctx), Schema: name, Many: i.many})

	data, items, err := i.run(context.WithValue(i.ctx, instanceKey{}, id))

	eventbus.Publish(i.ctx, events.SerializeFinish{
		ID:       id,
		Schema:   name,
		Many:     i.many,
		Items:    items,
		Err:      err,
		Duration: time.Since(start),
	})
	return data, err
}

// run serializes the source. A panic raised while extracting or transforming
// is returned as a *PanicError.
func (i *Instance) run(ctx context.Context) (data any, items int, err error) {
	defer func() {
		if r := recover(); r != nil {
			data, items, err = nil, 0, &PanicError{Schema: i.schema.Name(), Value: r}
		}
	}()

	if i.many {
		out, batchErr := serializeMany(ctx, i, i.source)
		return out, len(out), batchErr
	}
	out, itemErr := serialize(ctx, i, i.source)
	if itemErr != nil {
		return nil, 0, itemErr
	}
	return out, 1, nil
}

func isCollection(v any) bool {
	switch reflect.ValueOf(v).Kind() {
	case reflect.Slice, reflect.Array:
		return true
	}
	return false
}

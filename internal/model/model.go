// Package model resolves the canonical field list of an external data model.
//
// A schema bound to a model (a protobuf message, a GraphQL type definition, a
// Go struct type, ...) expands its implicit fields from that list. Each model
// kind is handled by an Adapter; the Registry picks the first adapter whose
// capability check accepts the model.
package model

import (
	"errors"
	"fmt"
	"sync"
)

// ErrUnsupportedModel is returned when no registered adapter accepts a model.
var ErrUnsupportedModel = errors.New("cannot deduce fields from model")

// Adapter lists the canonical fields of one kind of model.
type Adapter interface {
	// Name identifies the adapter in error messages.
	Name() string
	// CanHandle reports whether the adapter understands model.
	CanHandle(model any) bool
	// Fields returns the model's field names in declaration order.
	Fields(model any) ([]string, error)
}

// Registry holds adapters in the order they are tried.
type Registry struct {
	mu       sync.RWMutex
	adapters []Adapter
}

// NewRegistry returns a registry probing adapters in the given order.
func NewRegistry(adapters ...Adapter) *Registry {
	return &Registry{adapters: append([]Adapter(nil), adapters...)}
}

// Register appends a to the adapters tried.
func (r *Registry) Register(a Adapter) {
	r.mu.Lock()
	r.adapters = append(r.adapters, a)
	r.mu.Unlock()
}

// Lookup returns the first adapter accepting model.
func (r *Registry) Lookup(model any) (Adapter, error) {
	if model == nil {
		return nil, fmt.Errorf("%w: nil model", ErrUnsupportedModel)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.adapters {
		if a.CanHandle(model) {
			return a, nil
		}
	}
	return nil, fmt.Errorf("%w: %T", ErrUnsupportedModel, model)
}

// Fields resolves the canonical field list of model.
func (r *Registry) Fields(model any) ([]string, error) {
	a, err := r.Lookup(model)
	if err != nil {
		return nil, err
	}
	names, err := a.Fields(model)
	if err != nil {
		return nil, fmt.Errorf("%s model %T: %w", a.Name(), model, err)
	}
	return names, nil
}

// Default is the registry used by schemas that do not configure one.
var Default = NewRegistry(ProtoAdapter{}, GraphQLAdapter{}, StructAdapter{})

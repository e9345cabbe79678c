// Package reqid tags contexts with a request ID so that events published
// while serving one request can be correlated.
package reqid

import (
	"context"
	"math/rand"
)

type key struct{}

// NewContext returns a copy of parent carrying a new random request ID, and
// the ID itself.
func NewContext(parent context.Context) (context.Context, uint64) {
	id := rand.Uint64()
	return context.WithValue(parent, key{}, id), id
}

// FromContext extracts the request ID from ctx.
func FromContext(ctx context.Context) (uint64, bool) {
	id, ok := ctx.Value(key{}).(uint64)
	return id, ok
}

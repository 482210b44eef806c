package engine

import (
	"context"
	"fmt"

	"NewsIndexer/internal/domain"
)

// Submitter notifies one indexing surface about a URL. It never fails:
// every problem is reported through the returned result.
type Submitter interface {
	Name() string
	Submit(ctx context.Context, pageURL string) domain.IndexingResult
}

// Pinger is a best-effort secondary engine whose errors are only logged.
type Pinger interface {
	Name() string
	Ping(ctx context.Context, pageURL string) error
}

// Registry keeps submitters in registration order.
type Registry struct {
	order      []string
	submitters map[string]Submitter
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{submitters: map[string]Submitter{}}
}

// Register adds or replaces a submitter implementation.
func (r *Registry) Register(s Submitter) {
	if r.submitters == nil {
		r.submitters = map[string]Submitter{}
	}
	name := s.Name()
	if _, exists := r.submitters[name]; !exists {
		r.order = append(r.order, name)
	}
	r.submitters[name] = s
}

// Resolve returns a submitter by name or an error if it is absent.
func (r *Registry) Resolve(name string) (Submitter, error) {
	if s, ok := r.submitters[name]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("submitter %s is not registered", name)
}

// All returns submitters in the order they were first registered.
func (r *Registry) All() []Submitter {
	out := make([]Submitter, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.submitters[name])
	}
	return out
}

// Package payloads holds named, categorized payload sets for the fuzz
// engine. Built-in sets cover SQL injection, path traversal, SSRF, and
// XSS; callers register additional sets at runtime or merge them in
// from an external source.
package payloads

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Category groups payload sets by attack class.
type Category string

const (
	CategoryInjection Category = "injection"
	CategoryTraversal Category = "traversal"
	CategorySSRF      Category = "ssrf"
	CategoryXSS       Category = "xss"
	CategoryCustom    Category = "custom"
)

// ErrUnknownSet is returned when no payload set has the requested ID.
var ErrUnknownSet = errors.New("payloads: unknown payload set")

// Set is a named, immutable ordered sequence of payload strings.
type Set struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Category Category `json:"category"`
	Payloads []string `json:"payloads"`
}

// clone returns a defensive copy so registry contents stay immutable.
func (s Set) clone() Set {
	out := s
	out.Payloads = append([]string(nil), s.Payloads...)
	return out
}

// Source supplies additional payload sets, e.g. from a wordlist service
// or a payload marketplace. Sets are merged into a Registry before a run.
type Source interface {
	PayloadSets(ctx context.Context) ([]Set, error)
}

// Registry stores payload sets keyed by ID, preserving registration
// order for stable listings.
type Registry struct {
	mu    sync.RWMutex
	sets  map[string]Set
	order []string
}

// NewRegistry creates a registry pre-populated with the built-in sets.
func NewRegistry() *Registry {
	r := &Registry{sets: make(map[string]Set)}
	for _, s := range builtinSets() {
		r.register(s)
	}
	return r
}

// Register adds or replaces a set. An empty ID or empty payload list is
// rejected.
func (r *Registry) Register(s Set) error {
	if s.ID == "" {
		return fmt.Errorf("payloads: set ID required")
	}
	if len(s.Payloads) == 0 {
		return fmt.Errorf("payloads: set %q has no payloads", s.ID)
	}
	if s.Category == "" {
		s.Category = CategoryCustom
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.register(s)
	return nil
}

func (r *Registry) register(s Set) {
	if _, exists := r.sets[s.ID]; !exists {
		r.order = append(r.order, s.ID)
	}
	r.sets[s.ID] = s.clone()
}

// Get returns a copy of the named set.
func (r *Registry) Get(id string) (Set, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sets[id]
	if !ok {
		return Set{}, fmt.Errorf("%w: %s", ErrUnknownSet, id)
	}
	return s.clone(), nil
}

// List returns all sets in registration order.
func (r *Registry) List() []Set {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Set, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.sets[id].clone())
	}
	return out
}

// Merge pulls sets from an external source into the registry. Invalid
// sets are skipped; the first source error aborts the merge.
func (r *Registry) Merge(ctx context.Context, src Source) error {
	sets, err := src.PayloadSets(ctx)
	if err != nil {
		return fmt.Errorf("payloads: source: %w", err)
	}
	for _, s := range sets {
		if err := r.Register(s); err != nil {
			continue
		}
	}
	return nil
}

package aggregate

import (
	"sort"
	"strings"
	"sync"

	"github.com/ajitpratap0/bears/pkg/errors"
)

// Kind names an aggregate function
type Kind string

const (
	KindCount Kind = "count"
	KindSum   Kind = "sum"
	KindMean  Kind = "mean"
	KindMin   Kind = "min"
	KindMax   Kind = "max"
	KindFirst Kind = "first"
	KindLast  Kind = "last"
)

type entry struct {
	fn Func
	// numeric functions reject text columns
	numeric bool
	// sourceTyped results take the type of the source column instead of
	// numeric
	sourceTyped bool
}

// RegisterOption adjusts a function added with Register
type RegisterOption func(*entry)

// SourceTyped gives the function's result column the type of its source
// column, for functions that pick values rather than compute numbers.
// Without it results are numeric, and text results become missing.
func SourceTyped() RegisterOption {
	return func(e *entry) { e.sourceTyped = true }
}

// Registry maps aggregate kinds to their functions
type Registry struct {
	mu      sync.RWMutex
	entries map[Kind]entry
}

// Global registry instance
var globalRegistry = NewRegistry()

// NewRegistry returns a registry pre-populated with the built-in kinds
func NewRegistry() *Registry {
	r := &Registry{entries: make(map[Kind]entry)}
	r.entries[KindCount] = entry{fn: Count}
	r.entries[KindSum] = entry{fn: Sum, numeric: true}
	r.entries[KindMean] = entry{fn: Mean, numeric: true}
	r.entries[KindMin] = entry{fn: Min, numeric: true}
	r.entries[KindMax] = entry{fn: Max, numeric: true}
	r.entries[KindFirst] = entry{fn: First, sourceTyped: true}
	r.entries[KindLast] = entry{fn: Last, sourceTyped: true}
	return r
}

// Register adds a function under a new kind. numeric marks functions that
// only accept numeric columns. Results are numeric unless SourceTyped is
// given.
func (r *Registry) Register(kind Kind, fn Func, numeric bool, opts ...RegisterOption) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	kind = normalize(kind)
	if _, exists := r.entries[kind]; exists {
		return errors.Newf(errors.ErrorTypeConfig, "aggregate %s already registered", kind)
	}
	e := entry{fn: fn, numeric: numeric}
	for _, opt := range opts {
		opt(&e)
	}
	r.entries[kind] = e
	return nil
}

// Lookup returns the function registered for kind
func (r *Registry) Lookup(kind Kind) (Func, bool, error) {
	e, err := r.lookup(kind)
	if err != nil {
		return nil, false, err
	}
	return e.fn, e.numeric, nil
}

func (r *Registry) lookup(kind Kind) (entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[normalize(kind)]
	if !ok {
		return entry{}, errors.Newf(errors.ErrorTypeValidation,
			"unknown aggregate function: %s, valid values are: [%s]",
			kind, strings.Join(r.kindsLocked(), ", ")).
			WithDetail("kind", string(kind))
	}
	return e, nil
}

// Kinds returns the registered kinds sorted by name
func (r *Registry) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.kindsLocked()
}

func (r *Registry) kindsLocked() []string {
	kinds := make([]string, 0, len(r.entries))
	for k := range r.entries {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)
	return kinds
}

// Register adds a function to the global registry
func Register(kind Kind, fn Func, numeric bool, opts ...RegisterOption) error {
	return globalRegistry.Register(kind, fn, numeric, opts...)
}

// Lookup finds a function in the global registry
func Lookup(kind Kind) (Func, bool, error) {
	return globalRegistry.Lookup(kind)
}

// Kinds lists the kinds in the global registry
func Kinds() []string {
	return globalRegistry.Kinds()
}

func normalize(kind Kind) Kind {
	k := Kind(strings.ToLower(strings.TrimSpace(string(kind))))
	// avg is an alias for mean
	if k == "avg" {
		return KindMean
	}
	return k
}

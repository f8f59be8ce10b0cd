package dynamo

import (
	"fmt"
	"sort"
)

// Factory builds one component instance for owner from its configuration.
type Factory[T any] func(owner Owner, cfg Config) (T, error)

// Family maps type names to factories for one kind of component.
// Registering an existing name replaces the previous factory.
type Family[T any] struct {
	kind      string
	factories map[string]Factory[T]
}

func NewFamily[T any](kind string) *Family[T] {
	return &Family[T]{kind: kind, factories: make(map[string]Factory[T])}
}

func (f *Family[T]) Kind() string { return f.kind }

func (f *Family[T]) Register(name string, factory Factory[T]) {
	f.factories[name] = factory
}

func (f *Family[T]) Lookup(name string) (Factory[T], bool) {
	factory, ok := f.factories[name]
	return factory, ok
}

// Construct builds a component of the named type.
func (f *Family[T]) Construct(name string, owner Owner, cfg Config) (T, error) {
	factory, ok := f.factories[name]
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: %s %q", ErrNotRegistered, f.kind, name)
	}
	if cfg == nil {
		cfg = Config{}
	}
	v, err := factory(owner, cfg)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("constructing %s %q: %w", f.kind, name, err)
	}
	return v, nil
}

// Names returns the registered type names in sorted order.
func (f *Family[T]) Names() []string {
	names := make([]string, 0, len(f.factories))
	for name := range f.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (f *Family[T]) Len() int { return len(f.factories) }

// Reset removes every registration.
func (f *Family[T]) Reset() {
	clear(f.factories)
}

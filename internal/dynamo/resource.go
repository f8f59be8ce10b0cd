package dynamo

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// External is the owner index recorded for values published from outside
// the simulation's module arena, for example by tests or drivers.
const External = -1

type entry struct {
	owner int
	value any
}

// Resources is the flat name table built once per simulation setup. Each
// entry remembers the arena index of the module that published it; the
// publisher keeps ownership of the value.
type Resources struct {
	entries map[string]entry
	order   []string
	closed  bool
}

func NewResources() *Resources {
	return &Resources{entries: make(map[string]entry)}
}

// PublisherFor returns a Publisher that records owner as the publishing index.
func (r *Resources) PublisherFor(owner int) Publisher {
	return ownerPublisher{rs: r, owner: owner}
}

// Publish adds a value on behalf of an external caller.
func (r *Resources) Publish(name string, value any) {
	r.publish(External, name, value)
}

func (r *Resources) publish(owner int, name string, value any) {
	if prev, ok := r.entries[name]; ok {
		logrus.WithField("resource", name).Debugf("owner %d replaces value published by owner %d", owner, prev.owner)
	} else {
		r.order = append(r.order, name)
	}
	r.entries[name] = entry{owner: owner, value: value}
}

func (r *Resources) Has(name string) bool {
	_, ok := r.entries[name]
	return ok
}

// Owner returns the arena index of the module that published name.
func (r *Resources) Owner(name string) (int, bool) {
	e, ok := r.entries[name]
	return e.owner, ok
}

// Names lists published names in first-publication order.
func (r *Resources) Names() []string {
	return append([]string(nil), r.order...)
}

func (r *Resources) Len() int { return len(r.entries) }

// Close invalidates every handle bound to this table.
func (r *Resources) Close()       { r.closed = true }
func (r *Resources) Closed() bool { return r.closed }

type ownerPublisher struct {
	rs    *Resources
	owner int
}

func (p ownerPublisher) Publish(name string, value any) {
	p.rs.publish(p.owner, name, value)
}

// Handle is a typed, non-owning reference to a published value. The zero
// Handle is unbound.
type Handle[T any] struct {
	rs    *Resources
	name  string
	owner int
	value T
}

// Find binds a handle to name if it was published with a value of type T.
// A missing name or a value of another type both report false.
func Find[T any](rs *Resources, name string) (Handle[T], bool) {
	e, ok := rs.entries[name]
	if !ok {
		return Handle[T]{}, false
	}
	v, ok := e.value.(T)
	if !ok {
		logrus.WithField("resource", name).Debugf("published %T does not match requested %T", e.value, v)
		return Handle[T]{}, false
	}
	return Handle[T]{rs: rs, name: name, owner: e.owner, value: v}, true
}

func (h Handle[T]) Bound() bool  { return h.rs != nil }
func (h Handle[T]) Name() string { return h.name }
func (h Handle[T]) Owner() int   { return h.owner }

// Get returns the live value behind the handle.
func (h Handle[T]) Get() (T, error) {
	var zero T
	if h.rs == nil {
		return zero, ErrUnboundResource
	}
	if h.rs.closed {
		return zero, fmt.Errorf("%w: %q", ErrStaleHandle, h.name)
	}
	return h.value, nil
}

// Package seqlen resolves the length of arbitrary sequence containers.
//
// The matching engine needs exactly one capability from the data it
// matches: a length. seqlen provides a process-wide registry mapping a
// container's runtime type to a length function, plus a fast path for any
// type implementing Lengther. Common slice and string types are registered
// at init.
//
// Registering an adapter for a custom container:
//
//	type Ring struct{ buf []float64; n int }
//
//	func init() {
//	    seqlen.Register(func(r *Ring) int { return r.n })
//	}
//
// The registry is read on every Match call and is safe for concurrent
// reads; registration normally happens at program startup.
package seqlen

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
)

// ErrUnknownContainer indicates no length adapter is registered for the
// container's type and it does not implement Lengther.
var ErrUnknownContainer = errors.New("unknown container type")

// Lengther is the duck-typed fast path: containers exposing Len are usable
// without registration.
type Lengther interface {
	Len() int
}

var (
	mu       sync.RWMutex
	registry = map[reflect.Type]func(any) int{}
)

// Register installs a length adapter for containers of type T, replacing
// any previous adapter for the same type.
func Register[T any](fn func(T) int) {
	t := reflect.TypeOf((*T)(nil)).Elem()
	mu.Lock()
	registry[t] = func(data any) int { return fn(data.(T)) }
	mu.Unlock()
}

// Of returns the length of data, consulting Lengther first and the
// registry second. An unregistered type yields ErrUnknownContainer.
func Of(data any) (int, error) {
	if l, ok := data.(Lengther); ok {
		return l.Len(), nil
	}
	if data == nil {
		return 0, fmt.Errorf("%w: <nil>", ErrUnknownContainer)
	}
	mu.RLock()
	fn, ok := registry[reflect.TypeOf(data)]
	mu.RUnlock()
	if !ok {
		return 0, fmt.Errorf("%w: %T", ErrUnknownContainer, data)
	}
	return fn(data), nil
}

func init() {
	Register(func(s string) int { return len(s) })
	Register(func(s []byte) int { return len(s) })
	Register(func(s []int) int { return len(s) })
	Register(func(s []int32) int { return len(s) })
	Register(func(s []int64) int { return len(s) })
	Register(func(s []uint64) int { return len(s) })
	Register(func(s []float32) int { return len(s) })
	Register(func(s []float64) int { return len(s) })
	Register(func(s []string) int { return len(s) })
	Register(func(s []bool) int { return len(s) })
	Register(func(s []any) int { return len(s) })
}

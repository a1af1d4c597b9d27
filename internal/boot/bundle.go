package boot

import (
	"errors"
	"fmt"
)

// Bundle holds one live instance of every backing service
type Bundle struct {
	services map[Kind]Live
}

// Get returns the live service for kind
func (b *Bundle) Get(kind Kind) (Live, bool) {
	live, ok := b.services[kind]
	return live, ok
}

// Len returns the number of services in the bundle
func (b *Bundle) Len() int {
	return len(b.services)
}

// Names returns the logical names of the bundled services in kind order
func (b *Bundle) Names() []string {
	names := make([]string, 0, len(b.services))
	for _, kind := range Kinds() {
		if _, ok := b.services[kind]; ok {
			names = append(names, kind.String())
		}
	}
	return names
}

// Close closes every service in reverse kind order
func (b *Bundle) Close() error {
	var errs []error
	kinds := Kinds()
	for idx := len(kinds) - 1; idx >= 0; idx-- {
		live, ok := b.services[kinds[idx]]
		if !ok {
			continue
		}
		if err := live.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", kinds[idx], err))
		}
	}
	return errors.Join(errs...)
}

func bundled[T Live](b *Bundle, kind Kind) T {
	var zero T
	live, ok := b.services[kind]
	if !ok {
		return zero
	}
	typed, ok := live.(T)
	if !ok {
		return zero
	}
	return typed
}

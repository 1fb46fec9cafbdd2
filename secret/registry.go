package secret

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
)

// ProviderFactory builds a Provider. Factories run once per Resolver so a
// provider may hold per-resolver state.
type ProviderFactory func() (Provider, error)

// Registry maps provider names to factories. Names are kept in
// registration order, which is the order Resolver consults them in.
type Registry struct {
	mu        sync.RWMutex
	order     []string
	factories map[string]ProviderFactory
}

// NewRegistry creates an empty provider registry.
func NewRegistry() *Registry {
	return &Registry{factories: map[string]ProviderFactory{}}
}

// Register adds a factory under name. Names are unique.
func (r *Registry) Register(name string, factory ProviderFactory) error {
	name = strings.TrimSpace(name)
	if name == "" || factory == nil {
		return errors.New("secret: provider needs a name and a factory")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.factories[name]; dup {
		return fmt.Errorf("secret: provider %q already registered", name)
	}
	r.factories[name] = factory
	r.order = append(r.order, name)
	return nil
}

// Create instantiates the provider registered under name.
func (r *Registry) Create(name string) (Provider, error) {
	r.mu.RLock()
	factory, ok := r.factories[strings.TrimSpace(name)]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, name)
	}
	return factory()
}

// List returns the registered names in registration order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.order)
}

// Resolver builds a Resolver holding one instance of every registered
// provider.
func (r *Registry) Resolver(strict bool) (*Resolver, error) {
	res := NewResolver(strict)
	for _, name := range r.List() {
		p, err := r.Create(name)
		if err != nil {
			return nil, fmt.Errorf("secret: create %s: %w", name, err)
		}
		res.Register(p)
	}
	return res, nil
}

// DefaultRegistry carries the env and file providers.
var DefaultRegistry = func() *Registry {
	r := NewRegistry()
	_ = r.Register("env", func() (Provider, error) { return NewEnvProvider(nil), nil })
	_ = r.Register("file", func() (Provider, error) { return NewFileProvider(), nil })
	return r
}()

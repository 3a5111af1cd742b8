package storage

import (
	"fmt"

	"github.com/brettbedarf/treestore"
	"github.com/brettbedarf/treestore/config"
	"github.com/puzpuzpuz/xsync/v4"
)

// Constructor builds a storage backend from the runtime config
type Constructor func(cfg *config.Config) (treestore.Storage, error)

// Registry maps backend names (the config "backend" value) to constructors
type Registry struct {
	backends *xsync.Map[string, Constructor]
}

func NewRegistry() *Registry {
	return &Registry{backends: xsync.NewMap[string, Constructor]()}
}

// Register ties a constructor to a backend name.
// The first registration for a name wins; later ones are ignored.
func (r *Registry) Register(name string, ctor Constructor) {
	r.backends.LoadOrStore(name, ctor)
}

// Open builds the backend named by cfg.Backend
func (r *Registry) Open(cfg *config.Config) (treestore.Storage, error) {
	ctor, ok := r.backends.Load(cfg.Backend)
	if !ok {
		return nil, fmt.Errorf("%w: %q", treestore.ErrUnknownBackend, cfg.Backend)
	}
	return ctor(cfg)
}

// Builtins returns a registry with the file, bolt and memory backends registered
func Builtins() *Registry {
	r := NewRegistry()
	r.Register(config.FileBackend, func(cfg *config.Config) (treestore.Storage, error) {
		return NewOsFileStorage(cfg.StoragePath()), nil
	})
	r.Register(config.BoltBackend, func(cfg *config.Config) (treestore.Storage, error) {
		return OpenBoltStorage(BoltPath(cfg), cfg.BoltBucket)
	})
	r.Register(config.MemoryBackend, func(cfg *config.Config) (treestore.Storage, error) {
		return NewMemoryStorage(), nil
	})
	return r
}

// Open builds the backend named by cfg.Backend from the built-in backends
func Open(cfg *config.Config) (treestore.Storage, error) {
	return Builtins().Open(cfg)
}

package tree

import (
	"errors"
	"fmt"
	"io/fs"
	"slices"

	"github.com/brettbedarf/treestore"
	"github.com/brettbedarf/treestore/internal/util"
	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v4"
)

// Repository owns the root folder of a tree, persists the whole tree after
// every mutation and broadcasts a [ChangeEvent] to its observers.
//
// A Repository assumes a single writer. Observers are called synchronously in
// registration order on the mutating goroutine; mutating the tree from inside
// an observer is undefined.
type Repository struct {
	root      *Folder
	store     treestore.Storage // nil keeps the tree in memory only
	codec     Codec
	observers []*Subscription
	index     *xsync.Map[uuid.UUID, Item] // ids of every attached item
	fresh     bool                        // root was created rather than loaded
	// Reserved; nothing reads or writes it yet.
	placeholder string
}

// NewRepository loads the tree from store, decoding with codec.
// A nil store keeps the tree in memory only and a nil codec means JSON.
// Any load or decode failure falls back to an empty root folder.
func NewRepository(store treestore.Storage, codec Codec) *Repository {
	logger := util.GetLogger("NewRepository")

	if codec == nil {
		codec = &JSONCodec{}
	}
	r := &Repository{
		store: store,
		codec: codec,
		index: xsync.NewMap[uuid.UUID, Item](),
	}

	root, err := r.load()
	switch {
	case err == nil:
		logger.Debug().Str("root", root.ID().String()).Msg("Loaded tree from storage")
	case errors.Is(err, errNoStorage):
		logger.Debug().Msg("No storage configured; starting with an empty tree")
	case errors.Is(err, fs.ErrNotExist):
		logger.Info().Msg("No persisted tree found; starting with an empty tree")
	default:
		logger.Warn().Err(err).Msg("Failed to load persisted tree; starting with an empty tree")
	}
	if root == nil {
		root = NewFolder("", uuid.New())
		r.fresh = true
	}
	r.root = root
	root.setRepository(r)
	return r
}

var errNoStorage = errors.New("no storage configured")

func (r *Repository) load() (*Folder, error) {
	if r.store == nil {
		return nil, errNoStorage
	}
	data, err := r.store.Load()
	if err != nil {
		return nil, err
	}
	return r.codec.Decode(data)
}

// Root returns the root folder
func (r *Repository) Root() *Folder {
	return r.root
}

// Fresh reports whether the root was created empty because nothing could be
// loaded. A fresh root's id only survives restarts once the tree is saved.
func (r *Repository) Fresh() bool {
	return r.fresh
}

// Resolve returns the item addressed by path, which must start at the root's id.
// An empty path resolves to nothing.
func (r *Repository) Resolve(path []uuid.UUID) (Item, bool) {
	it, ok := r.root.Resolve(path)
	if !ok {
		logger := util.GetLogger("Repository.Resolve")
		logger.Trace().Int("depth", len(path)).Msg("No item at id path")
	}
	return it, ok
}

// Lookup returns the attached item with the given id without walking the tree
func (r *Repository) Lookup(id uuid.UUID) (Item, bool) {
	return r.index.Load(id)
}

// Walk visits every item depth-first in sort order, starting with the root
// at depth 0. Returning false from fn skips the item's children.
func (r *Repository) Walk(fn func(it Item, depth int) bool) {
	var walk func(it Item, depth int)
	walk = func(it Item, depth int) {
		if !fn(it, depth) {
			return
		}
		if f, ok := AsFolder(it); ok {
			for _, c := range f.contents {
				walk(c, depth+1)
			}
		}
	}
	walk(r.root, 0)
}

// Subscribe registers o for change events
func (r *Repository) Subscribe(o Observer) *Subscription {
	sub := &Subscription{observer: o}
	r.observers = append(r.observers, sub)
	return sub
}

// SubscribeFunc registers fn for change events
func (r *Repository) SubscribeFunc(fn func(ev ChangeEvent)) *Subscription {
	return r.Subscribe(ObserverFunc(fn))
}

// Unsubscribe removes sub and reports whether it was registered
func (r *Repository) Unsubscribe(sub *Subscription) bool {
	i := slices.Index(r.observers, sub)
	if i < 0 {
		return false
	}
	r.observers = slices.Delete(r.observers, i, i+1)
	return true
}

// Save writes the entire tree to storage without emitting an event
func (r *Repository) Save() error {
	if r.store == nil {
		return nil
	}
	data, err := r.codec.Encode(r.root)
	if err != nil {
		return fmt.Errorf("%w: encode: %w", treestore.ErrPersist, err)
	}
	if err := r.store.Save(data); err != nil {
		return fmt.Errorf("%w: %w", treestore.ErrPersist, err)
	}
	return nil
}

// Close releases the storage backend
func (r *Repository) Close() error {
	if r.store == nil {
		return nil
	}
	return r.store.Close()
}

// persistAndNotify rewrites the whole tree and then broadcasts ev.
// The event goes out even when the write fails so observers always reflect
// the in-memory tree; the write error is returned to the mutating caller.
func (r *Repository) persistAndNotify(ev ChangeEvent) error {
	logger := util.GetLogger("Repository.persistAndNotify")

	err := r.Save()
	if err != nil {
		logger.Error().Err(err).Object("event", ev).Msg("Failed to persist tree")
	}

	// snapshot so observers may (un)subscribe while being notified
	for _, sub := range slices.Clone(r.observers) {
		sub.observer.OnChange(ev)
	}
	logger.Trace().Object("event", ev).Int("observers", len(r.observers)).Msg("Dispatched change event")
	return err
}

// claimedID returns the first id in the subtree of it that is already indexed or
// that occurs twice within the subtree
func (r *Repository) claimedID(it Item) (uuid.UUID, bool) {
	seen := make(map[uuid.UUID]struct{})
	var check func(it Item) (uuid.UUID, bool)
	check = func(it Item) (uuid.UUID, bool) {
		id := it.ID()
		if _, ok := r.index.Load(id); ok {
			return id, true
		}
		if _, ok := seen[id]; ok {
			return id, true
		}
		seen[id] = struct{}{}
		if f, ok := AsFolder(it); ok {
			for _, c := range f.contents {
				if id, dup := check(c); dup {
					return id, true
				}
			}
		}
		return uuid.Nil, false
	}
	return check(it)
}

func (r *Repository) reindex(it Item) {
	r.index.Store(it.ID(), it)
}

// unindex drops it unless its id has since been claimed by another item
func (r *Repository) unindex(it Item) {
	if cur, ok := r.index.Load(it.ID()); ok && cur == it {
		r.index.Delete(it.ID())
	}
}

package tree

import (
	"fmt"
	"slices"

	"github.com/brettbedarf/treestore/internal/util"
	"github.com/google/uuid"
)

// Folder is a container item. Its contents are always sorted by name
// (bytewise), with ties broken by id.
type Folder struct {
	node
	contents []Item
}

// NewFolder creates a detached, empty folder. id is normally uuid.New().
func NewFolder(name string, id uuid.UUID) *Folder {
	return &Folder{node: node{id: id, name: name}}
}

func (f *Folder) IsContainer() bool {
	return true
}

// Contents returns a snapshot of the children in sort order
func (f *Folder) Contents() []Item {
	return slices.Clone(f.contents)
}

// Len returns the number of direct children
func (f *Folder) Len() int {
	return len(f.contents)
}

// At returns the child at index i. Panics if i is out of range.
func (f *Folder) At(i int) Item {
	return f.contents[i]
}

// IndexOf returns the position of it among the children or -1 if absent.
// Membership is by identity, not by id or name.
func (f *Folder) IndexOf(it Item) int {
	return slices.IndexFunc(f.contents, func(c Item) bool { return c == it })
}

// Child returns the direct child with the given id
func (f *Folder) Child(id uuid.UUID) (Item, bool) {
	for _, c := range f.contents {
		if c.ID() == id {
			return c, true
		}
	}
	return nil, false
}

func (f *Folder) Rename(name string) error {
	return rename(f, name)
}

// Add inserts it in name order, makes f its parent and emits an added event.
//
// Adding an item that is already a child of f is a programming error and
// panics, as does adding an item that still has another parent, adding a
// repository root, adding a folder below itself, or attaching an id the
// repository already holds.
// The returned error is only ever a persistence error.
func (f *Folder) Add(it Item) error {
	logger := util.GetLogger("Folder.Add")

	if f.IndexOf(it) >= 0 {
		panic(fmt.Sprintf("tree: item %s already in folder %s", it.ID(), f.id))
	}
	if p := it.Parent(); p != nil {
		panic(fmt.Sprintf("tree: item %s still belongs to folder %s", it.ID(), p.ID()))
	}
	if repo := it.Repository(); repo != nil && Item(repo.root) == it {
		panic(fmt.Sprintf("tree: cannot add repository root %s", it.ID()))
	}
	if sub, ok := AsFolder(it); ok && sub.isAncestorOf(f) {
		panic(fmt.Sprintf("tree: cannot add folder %s below itself", it.ID()))
	}
	if repo := f.Repository(); repo != nil {
		if id, dup := repo.claimedID(it); dup {
			panic(fmt.Sprintf("tree: id %s is already in use in the repository", id))
		}
	}

	f.contents = append(f.contents, it)
	f.sort()
	link(it, f)
	idx := f.IndexOf(it)
	logger.Debug().Str("id", it.ID().String()).Str("name", it.Name()).Int("index", idx).Msg("Added item")

	return f.notify(ChangeEvent{
		Subject:      it,
		Reason:       Added,
		CurrentIndex: util.Pointer(idx),
		Parent:       f,
	})
}

// Remove detaches it, drops it from the contents and emits a removed event
// carrying its pre-removal index. Removing an item that is not a child of f
// is a no-op.
// The returned error is only ever a persistence error.
func (f *Folder) Remove(it Item) error {
	logger := util.GetLogger("Folder.Remove")

	idx := f.IndexOf(it)
	if idx < 0 {
		logger.Trace().Str("folder", f.id.String()).Msg("Item not in folder; nothing to remove")
		return nil
	}
	it.Detach()
	f.contents = slices.Delete(f.contents, idx, idx+1)
	logger.Debug().Str("id", it.ID().String()).Str("name", it.Name()).Int("index", idx).Msg("Removed item")

	return f.notify(ChangeEvent{
		Subject:       it,
		Reason:        Removed,
		PreviousIndex: util.Pointer(idx),
		Parent:        f,
	})
}

// Resort re-establishes the sort order after changed's name was modified and
// returns its index before and after. changed must be a child of f.
func (f *Folder) Resort(changed Item) (prev, cur int) {
	prev = f.IndexOf(changed)
	if prev < 0 {
		panic(fmt.Sprintf("tree: resort of item %s which is not in folder %s", changed.ID(), f.id))
	}
	f.sort()
	cur = f.IndexOf(changed)
	return prev, cur
}

// Resolve walks path from f. path[0] must be f's id; the remaining ids are
// matched against the children, first match wins.
func (f *Folder) Resolve(path []uuid.UUID) (Item, bool) {
	if len(path) == 0 || path[0] != f.id {
		return nil, false
	}
	rest := path[1:]
	if len(rest) == 0 {
		return f, true
	}
	for _, c := range f.contents {
		if it, ok := c.Resolve(rest); ok {
			return it, true
		}
	}
	return nil, false
}

func (f *Folder) Detach() {
	link(f, nil)
}

// setRepository cascades repo through the whole subtree
func (f *Folder) setRepository(repo *Repository) {
	f.rebind(f, repo)
	for _, c := range f.contents {
		c.setRepository(repo)
	}
}

func (f *Folder) sort() {
	slices.SortStableFunc(f.contents, compareItems)
}

// isAncestorOf reports whether f is other or one of its ancestors
func (f *Folder) isAncestorOf(other *Folder) bool {
	for p := other; p != nil; p = p.Parent() {
		if p == f {
			return true
		}
	}
	return false
}

// notify hands ev to the owning repository. Detached trees mutate silently.
func (f *Folder) notify(ev ChangeEvent) error {
	repo := f.Repository()
	if repo == nil {
		return nil
	}
	return repo.persistAndNotify(ev)
}

// relink restores the parent references of a freshly decoded subtree, top-down
func relink(f *Folder) {
	for _, c := range f.contents {
		c.base().parent = f
		if sub, ok := AsFolder(c); ok {
			relink(sub)
		}
	}
}

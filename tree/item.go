// Package tree implements the document tree: folders and files addressed by
// stable ids, kept in name order and owned by a [Repository] that persists
// the whole tree and broadcasts a [ChangeEvent] for every mutation.
//
// The tree is single-writer. Mutations run to completion, including the
// storage write and observer dispatch, before returning to the caller.
package tree

import (
	"bytes"
	"cmp"
	"strings"

	"github.com/google/uuid"
)

// Item is a node of the tree. It is implemented only by [*File] and [*Folder];
// use IsContainer (or [AsFolder]) to tell them apart.
type Item interface {
	// ID returns the immutable id assigned at creation
	ID() uuid.UUID
	Name() string
	// Parent returns the owning folder or nil when the item is detached or the root
	Parent() *Folder
	// Repository returns the repository rooting this item's tree or nil when detached
	Repository() *Repository
	// IDPath returns the ids from the tree root down to and including this item
	IDPath() []uuid.UUID
	IsContainer() bool

	// Rename sets the name and, when the item has a parent, resorts the parent
	// and emits a renamed event. The returned error is only ever a persistence
	// error; the rename itself always happens.
	Rename(name string) error

	// Resolve returns the item addressed by path, where path[0] must be this item's id
	Resolve(path []uuid.UUID) (Item, bool)

	// Detach clears the parent reference and with it the repository reference.
	// It does not remove the item from its former parent's contents.
	Detach()

	base() *node
	setRepository(repo *Repository)
}

// node holds the state common to files and folders.
// parent and repo are back references only: folders own their children and
// the repository owns the root. Nothing is ever released through them.
type node struct {
	id     uuid.UUID
	name   string
	parent *Folder
	repo   *Repository
}

func (n *node) ID() uuid.UUID {
	return n.id
}

func (n *node) Name() string {
	return n.name
}

func (n *node) Parent() *Folder {
	return n.parent
}

func (n *node) Repository() *Repository {
	return n.repo
}

func (n *node) IDPath() []uuid.UUID {
	var path []uuid.UUID
	if p := n.Parent(); p != nil {
		path = p.IDPath()
	}
	return append(path, n.id)
}

func (n *node) base() *node {
	return n
}

// rebind points the node at repo and keeps both repositories' id indexes in sync
func (n *node) rebind(self Item, repo *Repository) {
	if old := n.repo; old != nil && old != repo {
		old.unindex(self)
	}
	n.repo = repo
	if repo != nil {
		repo.reindex(self)
	}
}

// link sets the parent of it and re-derives its repository from that parent.
// A nil parent detaches the item.
func link(it Item, parent *Folder) {
	it.base().parent = parent
	var repo *Repository
	if parent != nil {
		repo = parent.Repository()
	}
	it.setRepository(repo)
}

func rename(it Item, name string) error {
	it.base().name = name
	parent := it.Parent()
	if parent == nil {
		return nil
	}
	prev, cur := parent.Resort(it)
	return parent.notify(ChangeEvent{
		Subject:       it,
		Reason:        Renamed,
		PreviousIndex: &prev,
		CurrentIndex:  &cur,
		Parent:        parent,
	})
}

// compareItems orders by name, then by id so that equal names still sort deterministically
func compareItems(a, b Item) int {
	aID, bID := a.ID(), b.ID()
	return cmp.Or(
		strings.Compare(a.Name(), b.Name()),
		bytes.Compare(aID[:], bID[:]),
	)
}

// AsFolder returns it as a folder when it is a container
func AsFolder(it Item) (*Folder, bool) {
	f, ok := it.(*Folder)
	return f, ok
}

package tree

import "github.com/google/uuid"

// File is a leaf item; it never has children.
type File struct {
	node
}

// NewFile creates a detached file. id is normally uuid.New().
func NewFile(name string, id uuid.UUID) *File {
	return &File{node: node{id: id, name: name}}
}

func (f *File) IsContainer() bool {
	return false
}

func (f *File) Rename(name string) error {
	return rename(f, name)
}

// Resolve succeeds only when path is exactly this file's id
func (f *File) Resolve(path []uuid.UUID) (Item, bool) {
	if len(path) != 1 || path[0] != f.id {
		return nil, false
	}
	return f, true
}

func (f *File) Detach() {
	link(f, nil)
}

func (f *File) setRepository(repo *Repository) {
	f.rebind(f, repo)
}

// Package treestore contains the core interfaces and errors shared by the
// document tree, its storage backends and entrypoints.
package treestore

// Storage persists the serialized tree as a single opaque blob.
// The whole document is rewritten on every Save; there is no partial update.
type Storage interface {
	// Load returns the last saved blob.
	// Returns an error wrapping fs.ErrNotExist if nothing was saved yet
	Load() ([]byte, error)

	// Save replaces the stored blob with data
	Save(data []byte) error

	// Close releases any resources held by the backend (db handles etc)
	Close() error
}

package treestore

import "errors"

var (
	// ErrPersist is wrapped by errors returned from mutations whose in-memory
	// change and event succeeded but whose write to storage did not.
	ErrPersist = errors.New("persist tree")

	// ErrCorrupt is wrapped by decode errors for malformed documents
	ErrCorrupt = errors.New("corrupt tree document")

	// ErrUnknownBackend is returned when no storage backend is registered for a name
	ErrUnknownBackend = errors.New("unknown storage backend")

	// ErrUnknownFormat is returned for unsupported document formats
	ErrUnknownFormat = errors.New("unknown document format")
)

package util

// Pointer simply returns a pointer to the supplied value
func Pointer[T any](v T) *T {
	return &v
}

// Deref returns the value ptr points to or def when ptr is nil
func Deref[T any](ptr *T, def T) T {
	if ptr != nil {
		return *ptr
	}
	return def
}

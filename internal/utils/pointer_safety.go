// Package utils holds small generic helpers for the optional fields that
// travel through the chat API, such as project-scoped message filters.
package utils

// Ptr returns a pointer to v; useful for optional struct fields.
func Ptr[T any](v T) *T {
	return &v
}

// Value dereferences v, returning the zero value for a nil pointer.
func Value[T any](v *T) T {
	if v == nil {
		return *new(T)
	}
	return *v
}

// Package utils holds small generic helpers for working with the optional
// fields the API returns as JSON pointers.
package utils

// Value dereferences v, returning the zero value when v is nil.
func Value[T any](v *T) T {
	if v == nil {
		return *new(T)
	}
	return *v
}

// Ptr returns a pointer to v. Useful for building literal API payloads.
func Ptr[T any](v T) *T {
	return &v
}

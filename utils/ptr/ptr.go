package ptr

// To returns a pointer to the provided value.
func To[T any](v T) *T {
	return &v
}

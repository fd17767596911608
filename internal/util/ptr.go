package util

// Ptr returns a pointer to v, for filling optional fields like the
// usage record's token counts from literals.
func Ptr[T any](v T) *T {
	return &v
}

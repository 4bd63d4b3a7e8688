package models

import "errors"

// Sentinel errors for the store and similarity engine. Callers classify
// with errors.Is; the HTTP layer maps each to a stable error code.
var (
	// ErrEmptyText is returned when a document text is empty after trimming.
	ErrEmptyText = errors.New("text is empty")

	// ErrDimensionMismatch is returned when an embedding's length differs
	// from the dimension already established by the store, or when a query
	// vector does not match the candidates' dimension.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrInvalidVector is returned when a vector is empty or contains
	// non-finite values (NaN or Inf).
	ErrInvalidVector = errors.New("invalid vector")

	// ErrStoreUnavailable is returned when the backing store is unreachable
	// or disabled; operations fail fast without attempting I/O.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrInvalidParameter is returned for out-of-range limit, offset,
	// threshold, or topK values.
	ErrInvalidParameter = errors.New("invalid parameter")
)

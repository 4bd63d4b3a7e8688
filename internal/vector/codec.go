// Package vector provides the embedding storage codec and similarity math.
package vector

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/hyperjump/kioku/internal/models"
)

// Encode converts an embedding to its storage form: a little-endian
// sequence of IEEE 754 float32 values without a length prefix (the length
// is derived from the blob size on decode). Returns ErrInvalidVector when
// the vector is empty or contains NaN or Inf.
func Encode(vec []float32) ([]byte, error) {
	if len(vec) == 0 {
		return nil, fmt.Errorf("encode: empty vector: %w", models.ErrInvalidVector)
	}
	for i, v := range vec {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return nil, fmt.Errorf("encode: non-finite value at index %d: %w", i, models.ErrInvalidVector)
		}
	}
	b := make([]byte, len(vec)*4)
	for i, v := range vec {
		binary.LittleEndian.PutUint32(b[i*4:], math.Float32bits(v))
	}
	return b, nil
}

// Decode converts a blob produced by Encode back to an embedding.
// Decode(Encode(v)) == v element-wise for every valid v.
func Decode(b []byte) ([]float32, error) {
	if len(b) == 0 {
		return nil, fmt.Errorf("decode: empty blob: %w", models.ErrInvalidVector)
	}
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("decode: blob length %d not a multiple of 4: %w", len(b), models.ErrInvalidVector)
	}
	vec := make([]float32, len(b)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return vec, nil
}

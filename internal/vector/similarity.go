package vector

import "math"

// Cosine returns the cosine similarity of a and b: dot(a,b) / (|a|·|b|),
// in [-1, 1]. When either vector has zero norm the similarity is defined
// as 0 (not NaN) so that ordering stays well-defined. The caller is
// responsible for ensuring equal lengths; mismatched lengths return 0.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		va := float64(a[i])
		vb := float64(b[i])
		dot += va * vb
		na += va * va
		nb += vb * vb
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

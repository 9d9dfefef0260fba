package kmer

// Shared counts the codes present in both sorted k-mer sets.
func Shared(a, b []uint64) int {
	shared := 0
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			shared++
			i++
			j++
		case a[i] < b[j]:
			i++
		default:
			j++
		}
	}
	return shared
}

// JaccardDistance returns 1 - |A∩B| / |A∪B| of two sorted k-mer sets.
// Two empty sets are at distance 0.
func JaccardDistance(a, b []uint64) float64 {
	shared := Shared(a, b)
	union := len(a) + len(b) - shared
	if union == 0 {
		return 0
	}
	return 1 - float64(shared)/float64(union)
}

// Similarity returns the fraction of the smaller set found in the other.
// It is used to skip read/reference pairs not worth aligning.
func Similarity(a, b []uint64) float64 {
	smaller := len(a)
	if len(b) < smaller {
		smaller = len(b)
	}
	if smaller == 0 {
		return 0
	}
	return float64(Shared(a, b)) / float64(smaller)
}

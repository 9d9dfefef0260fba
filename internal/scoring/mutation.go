package scoring

// IsTransition reports whether a substitution of a by b is a purine-purine
// (A<->G) or pyrimidine-pyrimidine (C<->T/U) change. Degenerate or unknown
// symbols are never reported as transitions.
func IsTransition(a, b byte) bool {
	a, b = upper(a), upper(b)
	if a == 'U' {
		a = 'T'
	}
	if b == 'U' {
		b = 'T'
	}
	switch a {
	case 'A':
		return b == 'G'
	case 'G':
		return b == 'A'
	case 'C':
		return b == 'T'
	case 'T':
		return b == 'C'
	}
	return false
}

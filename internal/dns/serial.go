package dns

// SerialCompare compares two 32-bit serial numbers per RFC 1982.
//
// It returns a negative value if a < b, zero if a == b, and a positive
// value if a > b, under modular (wraparound) arithmetic: for i1 and i2
// both in [0, 2^32), i1 is considered less than i2 if, and only if,
// i1 != i2 and (i1 < i2 and i2 - i1 < 2^31) or (i1 > i2 and i1 - i2 > 2^31).
//
// The comparison is undefined when the two serials differ by exactly
// 2^31; this implementation returns 0 (treats them as equal) in that
// case, matching RFC 1982's guidance that implementations must not rely
// on a particular outcome there.
func SerialCompare(a, b uint32) int {
	if a == b {
		return 0
	}
	d := a - b // wraps modulo 2^32
	switch {
	case d < 1<<31:
		return 1 // a is ahead of b
	case d > 1<<31:
		return -1 // a is behind b
	default:
		// d == 2^31: undefined by RFC 1982.
		return 0
	}
}

// SerialLess reports whether a precedes b under RFC 1982 serial arithmetic.
func SerialLess(a, b uint32) bool {
	return SerialCompare(a, b) < 0
}

package util

// ClampInt bounds v to [lo, hi] and reports whether clamping was needed.
func ClampInt(v, lo, hi int) (int, bool) {
	if v < lo {
		return lo, true
	}
	if v > hi {
		return hi, true
	}
	return v, false
}

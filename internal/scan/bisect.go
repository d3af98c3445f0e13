package scan

// bisectIterations halves a bracket exactly this many times. A quarter-day
// bracket shrinks to 0.25/2^30 days, about 0.2 milliseconds, so no
// tolerance check is needed: the error bound is deterministic.
const bisectIterations = 30

// bisect narrows a bracket to the crossing instant. The tracked residual is
// the one at the high end of the live bracket; when the midpoint residual
// disagrees with it in sign, the root lies above the midpoint, otherwise
// the midpoint becomes the new high end. Returns the high end after the
// fixed iteration count.
func bisect(r residualFunc, b bracket) (float64, error) {
	lo, hi, rHi := b.lo, b.hi, b.rHi

	for range bisectIterations {
		mid := 0.5 * (lo + hi)
		rMid, err := r(mid)
		if err != nil {
			return 0, err
		}
		if rMid*rHi < 0 {
			lo = mid
		} else {
			hi, rHi = mid, rMid
		}
	}

	return hi, nil
}

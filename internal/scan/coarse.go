package scan

// residualFunc is the signed residual r(jd) = |signed defect| - orb. A sign
// change between consecutive samples brackets a crossing of the orb
// boundary.
type residualFunc func(jd float64) (float64, error)

// bracket is a coarse-step interval whose residual changes sign, together
// with the residual recorded at its high end.
type bracket struct {
	lo, hi float64
	rHi    float64
}

// coarseScan walks the window at its fixed step and collects every bracket.
// The first sample has no predecessor and cannot open a bracket. A residual
// of exactly zero at a sample is not a sign change: the product test is
// strictly negative, so boundary touches are dropped rather than reported
// twice.
func coarseScan(r residualFunc, w Window) ([]bracket, error) {
	var (
		brackets []bracket
		prev     float64
		havePrev bool
	)

	for jd := w.Start; jd <= w.End; jd += w.Step {
		cur, err := r(jd)
		if err != nil {
			return nil, err
		}
		if havePrev && cur*prev < 0 {
			brackets = append(brackets, bracket{lo: jd - w.Step, hi: jd, rHi: cur})
		}
		prev, havePrev = cur, true
	}

	return brackets, nil
}

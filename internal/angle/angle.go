// Package angle implements the aspect-relative angular distance forms used
// by the scanners. The signed form is zero when the separation sits at the
// negated aspect angle, the folded form when it sits at the aspect itself;
// they coincide for conjunctions and oppositions but not in general, so
// each scan strategy uses exactly one of them and they are never mixed
// within a scan.
package angle

import "math"

// Wrap360 folds a longitude into [0, 360).
func Wrap360(d float64) float64 {
	d = math.Mod(d, 360)
	if d < 0 {
		d += 360
	}
	return d
}

// SignedDefect returns ((lon - target + 180 + aspect) mod 360) - 180: the
// signed rotational distance between the separation lon-target and the
// aspect angle, in [-180, 180). Its magnitude minus the orb is the residual
// the precision scanner roots on.
func SignedDefect(lon, target, aspect float64) float64 {
	d := math.Mod(lon-target+180+aspect, 360)
	if d < 0 {
		d += 360
	}
	return d - 180
}

// FoldedDefect returns the minimum rotational distance between the
// separation lon-target and the aspect angle, in [0, 180]. A separation
// matches an aspect when FoldedDefect <= orb.
func FoldedDefect(lon, target, aspect float64) float64 {
	delta := Wrap360(lon - target)
	d := math.Abs(delta - aspect)
	return math.Min(d, 360-d)
}

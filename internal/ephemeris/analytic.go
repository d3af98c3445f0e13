package ephemeris

import (
	"fmt"
	"math"
)

// j2000 is the Julian Day of the J2000.0 epoch (2000-01-01T12:00:00 TT,
// treated as UT here; the offset is irrelevant at this precision).
const j2000 = 2451545.0

// speedDelta is the half-width, in days, of the central difference used to
// estimate dLongitude/dt. Half an hour keeps even the Moon's motion well
// under a quarter turn per sample.
const speedDelta = 1.0 / 48.0

// Analytic is a self-contained medium-precision ephemeris: Meeus-style
// series for the Sun and Moon, Keplerian mean elements for the planets.
// Accuracy is on the order of arcminutes for the Sun and planets and a
// fraction of a degree for the Moon, which is sufficient for aspect
// scanning at the default 0.05 degree orb resolution over day-scale steps.
//
// Analytic is stateless and safe for concurrent use.
type Analytic struct{}

// NewAnalytic returns the built-in analytic provider.
func NewAnalytic() *Analytic {
	return &Analytic{}
}

// PositionAt implements Provider.
func (a *Analytic) PositionAt(body Body, jd float64) (Position, error) {
	lon, err := a.longitudeAt(body, jd)
	if err != nil {
		return Position{}, err
	}

	before, err := a.longitudeAt(body, jd-speedDelta)
	if err != nil {
		return Position{}, err
	}
	after, err := a.longitudeAt(body, jd+speedDelta)
	if err != nil {
		return Position{}, err
	}

	return Position{
		Longitude: lon,
		Speed:     wrapSigned(after-before) / (2 * speedDelta),
	}, nil
}

func (a *Analytic) longitudeAt(body Body, jd float64) (float64, error) {
	switch body {
	case Sun:
		return sunLongitude(jd), nil
	case Moon:
		return moonLongitude(jd), nil
	default:
		el, ok := planetElements[body]
		if !ok {
			return 0, fmt.Errorf("no ephemeris model for body %d", int(body))
		}
		return geocentricLongitude(el, jd), nil
	}
}

// sunLongitude is the NOAA/Meeus low-precision solar model: mean longitude
// plus the equation of center.
func sunLongitude(jd float64) float64 {
	d := jd - j2000

	g := deg2rad(357.529 + 0.98560028*d) // mean anomaly
	q := 280.459 + 0.98564736*d          // mean longitude

	lon := q + 1.915*math.Sin(g) + 0.020*math.Sin(2*g)
	return wrap360(lon)
}

// moonLongitude is a truncated Meeus series: mean longitude plus the six
// dominant periodic terms (evection, variation, annual equation, ...).
func moonLongitude(jd float64) float64 {
	d := jd - j2000

	lp := deg2rad(218.3164477 + 13.17639648*d) // mean longitude
	m := deg2rad(357.5291092 + 0.98560028*d)   // Sun mean anomaly
	mm := deg2rad(134.9633964 + 13.06499295*d) // Moon mean anomaly
	el := deg2rad(297.8501921 + 12.19074912*d) // mean elongation
	f := deg2rad(93.2720950 + 13.22935024*d)   // argument of latitude

	lon := rad2deg(lp) +
		6.289*math.Sin(mm) +
		1.274*math.Sin(2*el-mm) +
		0.658*math.Sin(2*el) +
		0.214*math.Sin(2*mm) -
		0.186*math.Sin(m) -
		0.114*math.Sin(2*f)
	return wrap360(lon)
}

// elements are Keplerian mean orbital elements at J2000 with linear rates
// per Julian century (Standish, "Keplerian Elements for Approximate
// Positions of the Major Planets").
type elements struct {
	a, aDot         float64 // semi-major axis, au
	e, eDot         float64 // eccentricity
	i, iDot         float64 // inclination, deg
	l, lDot         float64 // mean longitude, deg
	peri, periDot   float64 // longitude of perihelion, deg
	node, nodeDot   float64 // longitude of ascending node, deg
}

var planetElements = map[Body]elements{
	Mercury: {0.38709927, 0.00000037, 0.20563593, 0.00001906, 7.00497902, -0.00594749, 252.25032350, 149472.67411175, 77.45779628, 0.16047689, 48.33076593, -0.12534081},
	Venus:   {0.72333566, 0.00000390, 0.00677672, -0.00004107, 3.39467605, -0.00078890, 181.97909950, 58517.81538729, 131.60246718, 0.00268329, 76.67984255, -0.27769418},
	Mars:    {1.52371034, 0.00001847, 0.09339410, 0.00007882, 1.84969142, -0.00813131, -4.55343205, 19140.30268499, -23.94362959, 0.44441088, 49.55953891, -0.29257343},
	Jupiter: {5.20288700, -0.00011607, 0.04838624, -0.00013253, 1.30439695, -0.00183714, 34.39644051, 3034.74612775, 14.72847983, 0.21252668, 100.47390909, 0.20469106},
	Saturn:  {9.53667594, -0.00125060, 0.05386179, -0.00050991, 2.48599187, 0.00193609, 49.95424423, 1222.49362201, 92.59887831, -0.41897216, 113.66242448, -0.28867794},
	Uranus:  {19.18916464, -0.00196176, 0.04725744, -0.00004397, 0.77263783, -0.00242939, 313.23810451, 428.48202785, 170.95427630, 0.40805281, 74.01692503, 0.04240589},
	Neptune: {30.06992276, 0.00026291, 0.00859048, 0.00005105, 1.77004347, 0.00035372, -55.12002969, 218.45945325, 44.96476227, -0.32241464, 131.78422574, -0.00508664},
	Pluto:   {39.48211675, -0.00031596, 0.24882730, 0.00005170, 17.14001206, 0.00004818, 238.92903833, 145.20780515, 224.06891629, -0.04062942, 110.30393684, -0.01183482},
}

// earthMoonBary is the Earth-Moon barycenter, used to shift heliocentric
// planet positions to the geocenter.
var earthMoonBary = elements{1.00000261, 0.00000562, 0.01671123, -0.00004392, -0.00001531, -0.01294668, 100.46457166, 35999.37244981, 102.93768193, 0.32327364, 0, 0}

// geocentricLongitude returns the geocentric ecliptic longitude of a planet
// by differencing its heliocentric position with Earth's.
func geocentricLongitude(el elements, jd float64) float64 {
	x, y := heliocentricXY(el, jd)
	xe, ye := heliocentricXY(earthMoonBary, jd)
	return wrap360(rad2deg(math.Atan2(y-ye, x-xe)))
}

// heliocentricXY returns ecliptic-plane heliocentric coordinates in au.
func heliocentricXY(el elements, jd float64) (float64, float64) {
	t := (jd - j2000) / 36525.0

	a := el.a + el.aDot*t
	e := el.e + el.eDot*t
	i := deg2rad(el.i + el.iDot*t)
	l := el.l + el.lDot*t
	peri := el.peri + el.periDot*t
	node := deg2rad(el.node + el.nodeDot*t)

	m := deg2rad(wrapSigned(l - peri))
	ea := solveKepler(m, e)

	// Position in the orbital plane.
	xp := a * (math.Cos(ea) - e)
	yp := a * math.Sqrt(1-e*e) * math.Sin(ea)

	// Rotate by argument of perihelion, inclination, ascending node.
	w := deg2rad(peri) - node
	cw, sw := math.Cos(w), math.Sin(w)
	cn, sn := math.Cos(node), math.Sin(node)
	ci := math.Cos(i)

	x := (cw*cn-sw*sn*ci)*xp + (-sw*cn-cw*sn*ci)*yp
	y := (cw*sn+sw*cn*ci)*xp + (-sw*sn+cw*cn*ci)*yp
	return x, y
}

// solveKepler inverts M = E - e*sin(E) by Newton iteration. The anomalies
// are in radians. Converges in a handful of steps for e < 0.3.
func solveKepler(m, e float64) float64 {
	ea := m + e*math.Sin(m)
	for range 10 {
		delta := (ea - e*math.Sin(ea) - m) / (1 - e*math.Cos(ea))
		ea -= delta
		if math.Abs(delta) < 1e-9 {
			break
		}
	}
	return ea
}

func deg2rad(d float64) float64 { return d * math.Pi / 180 }
func rad2deg(r float64) float64 { return r * 180 / math.Pi }

func wrap360(d float64) float64 {
	d = math.Mod(d, 360)
	if d < 0 {
		d += 360
	}
	return d
}

// wrapSigned folds an angle difference into [-180, 180).
func wrapSigned(d float64) float64 {
	d = math.Mod(d+180, 360)
	if d < 0 {
		d += 360
	}
	return d - 180
}

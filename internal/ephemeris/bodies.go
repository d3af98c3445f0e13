package ephemeris

import "strings"

// Body identifies a celestial body the provider can position.
type Body int

const (
	Sun Body = iota
	Moon
	Mercury
	Venus
	Mars
	Jupiter
	Saturn
	Uranus
	Neptune
	Pluto
)

var bodyNames = map[Body]string{
	Sun:     "Sun",
	Moon:    "Moon",
	Mercury: "Mercury",
	Venus:   "Venus",
	Mars:    "Mars",
	Jupiter: "Jupiter",
	Saturn:  "Saturn",
	Uranus:  "Uranus",
	Neptune: "Neptune",
	Pluto:   "Pluto",
}

// String returns the body's display name.
func (b Body) String() string {
	if name, ok := bodyNames[b]; ok {
		return name
	}
	return "unknown"
}

// BodyForName resolves a case-insensitive body name. The second return is
// false for names the provider does not know.
func BodyForName(name string) (Body, bool) {
	needle := strings.ToUpper(strings.TrimSpace(name))
	for b, n := range bodyNames {
		if strings.ToUpper(n) == needle {
			return b, true
		}
	}
	return 0, false
}

// Bodies returns all supported bodies in display order.
func Bodies() []Body {
	return []Body{Sun, Moon, Mercury, Venus, Mars, Jupiter, Saturn, Uranus, Neptune, Pluto}
}

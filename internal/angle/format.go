package angle

import "fmt"

// signNames are the zodiac signs in longitude order, 30 degrees each.
var signNames = [12]string{
	"Aries", "Taurus", "Gemini", "Cancer", "Leo", "Virgo",
	"Libra", "Scorpio", "Sagittarius", "Capricorn", "Aquarius", "Pisces",
}

// Sign returns the zodiac sign containing the given ecliptic longitude.
func Sign(lon float64) string {
	return signNames[int(Wrap360(lon)/30)%12]
}

// SignPosition formats a longitude as degrees/minutes/seconds within its
// sign, e.g. `12°34'56" in Aries`. Seconds are truncated.
func SignPosition(lon float64) string {
	lon = Wrap360(lon)
	inSign := lon - 30*float64(int(lon/30))

	deg := int(inSign)
	minFloat := (inSign - float64(deg)) * 60
	min := int(minFloat)
	sec := int((minFloat - float64(min)) * 60)

	return fmt.Sprintf("%02d°%02d'%02d\" in %s", deg, min, sec, Sign(lon))
}

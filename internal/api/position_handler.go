package api

import (
	"net/http"
	"strings"

	"github.com/Polsky40/efemerides/internal/angle"
	"github.com/Polsky40/efemerides/internal/ephemeris"
)

// positionResponse is the wire shape of a single body position.
type positionResponse struct {
	Planet       string  `json:"planet"`
	UTC          string  `json:"utc"`
	Longitude    float64 `json:"longitude"`
	Speed        float64 `json:"speed"`
	Motion       string  `json:"motion"`
	SignPosition string  `json:"sign_position"`
}

// positionHandler serves GET /api/v1/bodies/{name}/position?at=ISO.
func positionHandler(provider ephemeris.Provider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := r.PathValue("name")
		at := r.URL.Query().Get("at")
		if at == "" {
			writeError(w, http.StatusBadRequest, "missing required query parameter 'at' (ISO instant, e.g. 2025-06-02T12:00)")
			return
		}

		t, err := ephemeris.ParseDateTime(at)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		body, ok := ephemeris.BodyForName(name)
		if !ok {
			writeError(w, http.StatusBadRequest, "unknown body "+name)
			return
		}

		jd := ephemeris.JulianDay(t)
		pos, err := provider.PositionAt(body, jd)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "position computation failed")
			return
		}

		motion := "D"
		if pos.Speed < 0 {
			motion = "R"
		}

		// Planet names are uppercase on the wire, matching scan events.
		writeJSON(w, positionResponse{
			Planet:       strings.ToUpper(body.String()),
			UTC:          ephemeris.FormatUTC(jd),
			Longitude:    pos.Longitude,
			Speed:        pos.Speed,
			Motion:       motion,
			SignPosition: angle.SignPosition(pos.Longitude),
		})
	}
}

// bodiesHandler lists the body names the provider supports.
func bodiesHandler(w http.ResponseWriter, r *http.Request) {
	names := make([]string, 0, len(ephemeris.Bodies()))
	for _, b := range ephemeris.Bodies() {
		names = append(names, strings.ToUpper(b.String()))
	}
	writeJSON(w, map[string][]string{"bodies": names})
}

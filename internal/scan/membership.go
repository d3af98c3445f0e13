package scan

import (
	"context"

	"github.com/Polsky40/efemerides/internal/angle"
	"github.com/Polsky40/efemerides/internal/ephemeris"
)

// membershipPair runs the fixed-step membership strategy for one
// (target, body) pair: at each sampled instant the aspects are tested in
// request order with the folded-defect form, and the first aspect within
// the orb records an event and ends the aspect loop for that instant. The
// break is the sole dedup mechanism: one instant never yields more than one
// event, and when two aspects both match, the first-listed wins.
func (s *Scanner) membershipPair(ctx context.Context, p pair, req Request) ([]Event, error) {
	var events []Event

	for jd := req.Window.Start; jd <= req.Window.End; jd += req.Window.Step {
		if ctx.Err() != nil {
			return events, ctx.Err()
		}

		pos, err := s.provider.PositionAt(p.body, jd)
		if err != nil {
			return events, err
		}
		targetLon, err := p.targetAt(jd)
		if err != nil {
			return events, err
		}

		for _, asp := range req.Aspects {
			defect := angle.FoldedDefect(pos.Longitude, targetLon, asp)
			if defect <= req.Orb {
				events = append(events, Event{
					Body:   p.bodyName,
					Target: p.targetLabel,
					Angle:  asp,
					Orb:    defect,
					UTC:    ephemeris.FormatUTC(jd),
					Motion: motionOf(pos.Speed),
					JD:     jd,
				})
				break
			}
		}
	}

	return events, nil
}

// motionOf classifies apparent motion from the speed at the reported
// instant.
func motionOf(speed float64) string {
	if speed < 0 {
		return "R"
	}
	return "D"
}

package scan

import (
	"context"
	"log/slog"
	"math"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Polsky40/efemerides/internal/angle"
	"github.com/Polsky40/efemerides/internal/ephemeris"
	"github.com/Polsky40/efemerides/internal/metrics"
)

// Scanner finds aspect events. Each scan is a pure function of the request
// and the provider; the Scanner itself holds no per-scan state and is safe
// for concurrent use as long as the provider is.
type Scanner struct {
	provider ephemeris.Provider
	workers  int
	logger   *slog.Logger
}

// NewScanner creates a Scanner. workers bounds the (target, body) pair
// fan-out; values below 1 fall back to runtime.NumCPU().
func NewScanner(provider ephemeris.Provider, workers int, logger *slog.Logger) *Scanner {
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	return &Scanner{
		provider: provider,
		workers:  workers,
		logger:   logger,
	}
}

// pair is one resolved (target, body) combination.
type pair struct {
	body        ephemeris.Body
	bodyName    string // uppercase, echoed in events
	targetAt    longitudeFunc
	targetLabel string
}

// Scan enumerates {targets x aspects x bodies}, runs the requested strategy
// for every resolvable (target, body) pair, and returns the merged events
// sorted ascending by their formatted UTC timestamp. Unknown body names and
// unresolvable string targets are reported in Result.Skipped and excluded;
// they never abort the remaining combinations.
func (s *Scanner) Scan(ctx context.Context, req Request) (*Result, error) {
	req, err := s.normalize(req)
	if err != nil {
		return nil, err
	}

	result := &Result{}

	// Resolve targets once, before the body loop.
	var pairs []pair
	seenSkip := make(map[string]bool)
	skip := func(name, reason string) {
		if !seenSkip[name] {
			seenSkip[name] = true
			result.Skipped = append(result.Skipped, Skip{Name: name, Reason: reason})
		}
	}

	for _, target := range req.Targets {
		targetAt, ok := target.resolve(s.provider, req.Natal)
		if !ok {
			skip(target.Label(), "target not in natal chart and not a known body")
			continue
		}
		for _, name := range req.Bodies {
			body, ok := ephemeris.BodyForName(name)
			if !ok {
				skip(strings.ToUpper(name), "unknown body")
				continue
			}
			pairs = append(pairs, pair{
				body:        body,
				bodyName:    strings.ToUpper(strings.TrimSpace(name)),
				targetAt:    targetAt,
				targetLabel: target.Label(),
			})
		}
	}

	start := time.Now()
	events, err := s.runPairs(ctx, pairs, req)
	if err != nil {
		metrics.RecordScan(string(req.Strategy), "error", time.Since(start), len(events))
		return nil, err
	}

	sort.SliceStable(events, func(i, j int) bool { return events[i].UTC < events[j].UTC })
	result.Events = events

	metrics.RecordScan(string(req.Strategy), "ok", time.Since(start), len(events))
	s.logger.Debug("scan complete",
		"strategy", string(req.Strategy),
		"pairs", len(pairs),
		"events", len(events),
		"skipped", len(result.Skipped),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return result, nil
}

// runPairs fans the pairs out over a bounded set of goroutines. Pairs are
// independent, so each worker fills its own slot in an indexed results
// slice; there is no shared accumulator. Results are concatenated in pair
// order so identical requests produce identically-ordered output.
func (s *Scanner) runPairs(ctx context.Context, pairs []pair, req Request) ([]Event, error) {
	perPair := make([][]Event, len(pairs))
	errs := make([]error, len(pairs))
	sem := make(chan struct{}, s.workers)
	var wg sync.WaitGroup

	for i, p := range pairs {
		wg.Add(1)
		go func(idx int, p pair) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				errs[idx] = ctx.Err()
				return
			}

			switch req.Strategy {
			case StrategyPrecision:
				perPair[idx], errs[idx] = s.precisionPair(ctx, p, req)
			default:
				perPair[idx], errs[idx] = s.membershipPair(ctx, p, req)
			}
		}(i, p)
	}
	wg.Wait()

	var events []Event
	for i, evs := range perPair {
		if errs[i] != nil {
			return nil, errs[i]
		}
		events = append(events, evs...)
	}
	return events, nil
}

// precisionPair runs the coarse-scan/bisection strategy for one pair: for
// every aspect the signed-defect residual is sampled across the window,
// each sign change is refined by fixed-iteration bisection, and the refined
// instant becomes one event. Motion is always re-evaluated at the refined
// instant, not at the bracket endpoints.
func (s *Scanner) precisionPair(ctx context.Context, p pair, req Request) ([]Event, error) {
	var events []Event

	for _, asp := range req.Aspects {
		if ctx.Err() != nil {
			return events, ctx.Err()
		}

		residual := func(jd float64) (float64, error) {
			pos, err := s.provider.PositionAt(p.body, jd)
			if err != nil {
				return 0, err
			}
			targetLon, err := p.targetAt(jd)
			if err != nil {
				return 0, err
			}
			return math.Abs(angle.SignedDefect(pos.Longitude, targetLon, asp)) - req.Orb, nil
		}

		brackets, err := coarseScan(residual, req.Window)
		if err != nil {
			return events, err
		}

		for _, b := range brackets {
			jd, err := bisect(residual, b)
			if err != nil {
				return events, err
			}

			pos, err := s.provider.PositionAt(p.body, jd)
			if err != nil {
				return events, err
			}
			targetLon, err := p.targetAt(jd)
			if err != nil {
				return events, err
			}

			events = append(events, Event{
				Body:   p.bodyName,
				Target: p.targetLabel,
				Angle:  asp,
				Orb:    math.Abs(angle.SignedDefect(pos.Longitude, targetLon, asp)),
				UTC:    ephemeris.FormatUTC(jd),
				Motion: motionOf(pos.Speed),
				JD:     jd,
			})
		}
	}

	return events, nil
}

// normalize validates the request and fills defaults: aspects [0], orb
// DefaultOrb, membership strategy, and the strategy's default step when the
// window carries none.
func (s *Scanner) normalize(req Request) (Request, error) {
	if len(req.Bodies) == 0 {
		return req, ErrNoBodies
	}
	if len(req.Targets) == 0 {
		return req, ErrNoTargets
	}
	if len(req.Aspects) == 0 {
		req.Aspects = []float64{0}
	}
	if req.Orb <= 0 {
		req.Orb = DefaultOrb
	}
	if req.Strategy == "" {
		req.Strategy = StrategyMembership
	}
	if req.Window.Step == 0 {
		if req.Strategy == StrategyPrecision {
			req.Window.Step = PrecisionStepDays
		} else {
			req.Window.Step = DefaultStepHours / 24
		}
	}
	if !req.Window.Valid() {
		return req, ErrBadWindow
	}
	return req, nil
}

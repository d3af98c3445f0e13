package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/Polsky40/efemerides/internal/config"
	"github.com/Polsky40/efemerides/internal/ephemeris"
	"github.com/Polsky40/efemerides/internal/httputil"
	"github.com/Polsky40/efemerides/internal/natal"
	"github.com/Polsky40/efemerides/internal/scan"
)

// scanRequest is the wire shape of POST /api/v1/aspects/scan. target and
// aspect accept both a scalar and a list; scalars are normalized to
// one-element lists.
type scanRequest struct {
	Bodies     []string           `json:"bodies"`
	Target     any                `json:"target"`
	Aspect     any                `json:"aspect"`
	Orb        *float64           `json:"orb"`
	JDStart    string             `json:"jd_start"`
	JDEnd      string             `json:"jd_end"`
	StepHours  *float64           `json:"step_hours"`
	Strategy   string             `json:"strategy"`
	NatalChart map[string]float64 `json:"natal_chart"`
}

func scanHandler(cfg *config.Config, logger *slog.Logger, scanner *scan.Scanner, limiter *scanLimiter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := httputil.ClientIP(r, cfg.TrustProxy)
		if !limiter.acquire(ip) {
			writeError(w, http.StatusTooManyRequests, "too many concurrent scans from this address")
			return
		}
		defer limiter.release(ip)

		var body scanRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
			return
		}

		req, err := buildScanRequest(cfg, body)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		// Reject requests whose total sample count would blow the CPU
		// budget before doing any work.
		samples := req.Window.Samples() * len(req.Bodies) * len(req.Targets) * len(req.Aspects)
		if samples > cfg.MaxSamplesPerScan {
			writeError(w, http.StatusBadRequest, fmt.Sprintf(
				"scan budget exceeded: %d samples requested, max %d; shrink the window or increase the step",
				samples, cfg.MaxSamplesPerScan))
			return
		}

		result, err := scanner.Scan(r.Context(), req)
		if err != nil {
			switch err {
			case scan.ErrNoBodies, scan.ErrNoTargets, scan.ErrBadWindow:
				writeError(w, http.StatusBadRequest, err.Error())
			default:
				logger.Error("scan failed", "error", err)
				writeError(w, http.StatusInternalServerError, "scan failed")
			}
			return
		}

		if result.Events == nil {
			result.Events = []scan.Event{}
		}
		writeJSON(w, result)
	}
}

// buildScanRequest validates the wire request and converts it into the
// scanner's domain request.
func buildScanRequest(cfg *config.Config, body scanRequest) (scan.Request, error) {
	var req scan.Request

	if len(body.Bodies) == 0 {
		return req, fmt.Errorf("bodies must be a non-empty list of body names")
	}
	req.Bodies = body.Bodies

	targets, err := parseTargets(body.Target)
	if err != nil {
		return req, err
	}
	req.Targets = targets

	aspects, err := parseAspects(body.Aspect)
	if err != nil {
		return req, err
	}
	req.Aspects = aspects

	if body.JDStart == "" || body.JDEnd == "" {
		return req, fmt.Errorf("jd_start and jd_end are required (YYYY-MM-DD)")
	}
	start, err := ephemeris.ParseDate(body.JDStart)
	if err != nil {
		return req, err
	}
	end, err := ephemeris.ParseDate(body.JDEnd)
	if err != nil {
		return req, err
	}
	if start > end {
		return req, fmt.Errorf("jd_start must not be after jd_end")
	}

	switch body.Strategy {
	case "", string(scan.StrategyMembership):
		req.Strategy = scan.StrategyMembership
		stepHours := cfg.DefaultStepHours
		if body.StepHours != nil {
			if *body.StepHours <= 0 {
				return req, fmt.Errorf("step_hours must be positive")
			}
			stepHours = *body.StepHours
		}
		req.Window = scan.Window{Start: start, End: end, Step: stepHours / 24}
	case string(scan.StrategyPrecision):
		req.Strategy = scan.StrategyPrecision
		req.Window = scan.Window{Start: start, End: end, Step: scan.PrecisionStepDays}
	default:
		return req, fmt.Errorf("strategy must be %q or %q", scan.StrategyMembership, scan.StrategyPrecision)
	}

	req.Orb = cfg.DefaultOrb
	if body.Orb != nil {
		if *body.Orb <= 0 {
			return req, fmt.Errorf("orb must be positive")
		}
		req.Orb = *body.Orb
	}

	req.Natal = natal.Normalize(body.NatalChart)
	return req, nil
}

// parseTargets accepts a scalar target or a list of targets.
func parseTargets(v any) ([]scan.Target, error) {
	if v == nil {
		return nil, fmt.Errorf("target is required")
	}
	raw, ok := v.([]any)
	if !ok {
		raw = []any{v}
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("target list must not be empty")
	}

	targets := make([]scan.Target, 0, len(raw))
	for _, item := range raw {
		t, err := scan.ParseTarget(item)
		if err != nil {
			return nil, err
		}
		targets = append(targets, t)
	}
	return targets, nil
}

// parseAspects accepts a scalar aspect angle or a list; absent means [0].
func parseAspects(v any) ([]float64, error) {
	if v == nil {
		return []float64{0}, nil
	}
	raw, ok := v.([]any)
	if !ok {
		raw = []any{v}
	}

	aspects := make([]float64, 0, len(raw))
	for _, item := range raw {
		f, ok := item.(float64)
		if !ok {
			return nil, fmt.Errorf("aspect must be a number or a list of numbers")
		}
		aspects = append(aspects, f)
	}
	if len(aspects) == 0 {
		aspects = []float64{0}
	}
	return aspects, nil
}

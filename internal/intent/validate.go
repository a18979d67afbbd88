package intent

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// ErrUnsupported marks a question the extractor could not map onto a supported
// operation/metric/date combination. It is recovered at the orchestrator boundary.
var ErrUnsupported = errors.New("unsupported question")

// ErrInvalid marks a raw intent that fails the schema or a cross-field invariant.
// Both producers are held to it identically.
var ErrInvalid = errors.New("invalid intent")

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// Validate is the single trust boundary between intent producers and the query
// compiler. It checks the raw structure (closed enums, formats) first, then the
// cross-field invariants, and returns a typed Intent on success. An empty raw
// intent is treated identically to an unsupported question.
func Validate(raw *Raw) (*Intent, error) {
	if raw.IsEmpty() {
		return nil, ErrUnsupported
	}

	op := Operation(raw.Operation)
	if !op.Valid() {
		return nil, invalidf("unknown operation %q", raw.Operation)
	}

	out := &Intent{Operation: op}

	if op.RequiresMetric() {
		if raw.Metric == nil {
			return nil, invalidf("operation %s requires a metric", op)
		}
		m := Metric(*raw.Metric)
		if !m.Valid() {
			return nil, invalidf("unknown metric %q", *raw.Metric)
		}
		out.Metric = m
	} else if raw.Metric != nil {
		return nil, invalidf("operation %s does not take a metric", op)
	}

	if raw.DateRange != nil {
		dr, err := validateDateRange(raw.DateRange)
		if err != nil {
			return nil, err
		}
		out.DateRange = dr
	}

	if raw.TimeWindow != nil {
		tw, err := validateTimeWindow(raw.TimeWindow)
		if err != nil {
			return nil, err
		}
		if out.DateRange == nil || out.DateRange.Scope != ScopeSnapshotsCreatedAt {
			return nil, invalidf("time_window requires a snapshot-scoped date_range")
		}
		if !out.DateRange.SingleDay() {
			return nil, invalidf("time_window requires a single-day date_range")
		}
		out.TimeWindow = tw
	}

	if raw.Filters != nil {
		if raw.Filters.CreatorID != nil {
			if *raw.Filters.CreatorID == "" {
				return nil, invalidf("creator_id must not be empty when present")
			}
			out.Filters.CreatorID = *raw.Filters.CreatorID
		}
		for i, rt := range raw.Filters.Thresholds {
			th, err := validateThreshold(rt)
			if err != nil {
				return nil, fmt.Errorf("threshold %d: %w", i, err)
			}
			out.Filters.Thresholds = append(out.Filters.Thresholds, th)
		}
	}

	// snapshot_as_of thresholds compare against per-video maxima inside a snapshot
	// window, so that window must exist.
	for _, th := range out.Filters.Thresholds {
		if th.AppliesTo != AppliesSnapshotAsOf {
			continue
		}
		if out.DateRange == nil {
			return nil, invalidf("snapshot_as_of thresholds require a date_range")
		}
		if out.DateRange.Scope != ScopeSnapshotsCreatedAt {
			return nil, invalidf("snapshot_as_of thresholds require date_range.scope=snapshots_created_at")
		}
	}

	// Delta operations read snapshot rows; a publish-time window cannot bound them.
	switch op {
	case OpSumDeltaMetric, OpCountVideosPositiveDelta, OpCountSnapshotsNegativeDelta:
		if out.DateRange != nil && out.DateRange.Scope != ScopeSnapshotsCreatedAt {
			return nil, invalidf("operation %s requires date_range.scope=snapshots_created_at", op)
		}
	}

	return out, nil
}

func validateDateRange(raw *RawDateRange) (*DateRange, error) {
	scope := Scope(raw.Scope)
	if !scope.Valid() {
		return nil, invalidf("unknown date_range.scope %q", raw.Scope)
	}
	if !raw.Inclusive {
		return nil, invalidf("date_range.inclusive must be true")
	}

	start, err := time.ParseInLocation(dateLayout, raw.StartDate, time.UTC)
	if err != nil {
		return nil, invalidf("bad start_date %q", raw.StartDate)
	}
	end, err := time.ParseInLocation(dateLayout, raw.EndDate, time.UTC)
	if err != nil {
		return nil, invalidf("bad end_date %q", raw.EndDate)
	}
	if start.After(end) {
		return nil, invalidf("start_date must be <= end_date")
	}
	return &DateRange{Scope: scope, Start: start, End: end}, nil
}

func validateTimeWindow(raw *RawTimeWindow) (*TimeWindow, error) {
	start, err := parseTimeOfDay(raw.StartTime)
	if err != nil {
		return nil, invalidf("bad start_time %q", raw.StartTime)
	}
	end, err := parseTimeOfDay(raw.EndTime)
	if err != nil {
		return nil, invalidf("bad end_time %q", raw.EndTime)
	}
	if start >= end {
		return nil, invalidf("start_time must be before end_time")
	}
	return &TimeWindow{Start: start, End: end}, nil
}

func parseTimeOfDay(s string) (time.Duration, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return 0, err
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

func validateThreshold(raw RawThreshold) (Threshold, error) {
	appliesTo := AppliesTo(raw.AppliesTo)
	if !appliesTo.Valid() {
		return Threshold{}, invalidf("unknown applies_to %q", raw.AppliesTo)
	}
	metric := Metric(raw.Metric)
	if !metric.Valid() {
		return Threshold{}, invalidf("unknown metric %q", raw.Metric)
	}
	op := Comparator(raw.Op)
	if !op.Valid() {
		return Threshold{}, invalidf("unknown comparator %q", raw.Op)
	}
	value, err := strconv.ParseInt(raw.Value.String(), 10, 64)
	if err != nil {
		return Threshold{}, invalidf("value %q is not an integer in range", raw.Value.String())
	}
	return Threshold{AppliesTo: appliesTo, Metric: metric, Op: op, Value: value}, nil
}

package intent

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Raw is the producer-agnostic wire form of an intent. Both the rule extractor and
// the LLM producer emit this shape; neither is trusted until Validate accepts it.
// A zero Raw (the empty JSON object) signals an unsupported question.
type Raw struct {
	Operation  string         `json:"operation,omitempty"`
	Metric     *string        `json:"metric,omitempty"`
	DateRange  *RawDateRange  `json:"date_range,omitempty"`
	TimeWindow *RawTimeWindow `json:"time_window,omitempty"`
	Filters    *RawFilters    `json:"filters,omitempty"`
}

// RawDateRange is the wire form of a date range. Dates are YYYY-MM-DD.
type RawDateRange struct {
	Scope     string `json:"scope"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Inclusive bool   `json:"inclusive"`
}

// RawTimeWindow is the wire form of a time-of-day band. Times are HH:MM.
type RawTimeWindow struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// RawThreshold is the wire form of one threshold predicate.
type RawThreshold struct {
	AppliesTo string      `json:"applies_to"`
	Metric    string      `json:"metric"`
	Op        string      `json:"op"`
	Value     json.Number `json:"value"`
}

// RawFilters is the wire form of the filter block.
type RawFilters struct {
	CreatorID  *string        `json:"creator_id"`
	Thresholds []RawThreshold `json:"thresholds"`
}

// IsEmpty reports whether the raw intent is the empty object, i.e. the producer's
// explicit unsupported signal.
func (r *Raw) IsEmpty() bool {
	return r == nil || (r.Operation == "" && r.Metric == nil && r.DateRange == nil &&
		r.TimeWindow == nil && r.Filters == nil)
}

// DecodeRaw parses raw intent JSON strictly: unknown fields are rejected so a
// producer cannot smuggle unvalidated structure past the schema.
func DecodeRaw(data []byte) (*Raw, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	dec.UseNumber()

	var raw Raw
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode intent json: %w", err)
	}
	if dec.More() {
		return nil, fmt.Errorf("decode intent json: trailing data")
	}
	return &raw, nil
}

// Package intent defines the structured query intent produced from natural-language
// questions, the raw wire schema shared by all producers, and the single validation
// routine that turns a raw intent into a trusted one.
package intent

import (
	"time"
)

// Operation is the closed set of supported query operations.
type Operation string

const (
	OpCountVideos                 Operation = "count_videos"
	OpCountDistinctCreators       Operation = "count_distinct_creators"
	OpCountDistinctPublishDays    Operation = "count_distinct_publish_days"
	OpSumTotalMetric              Operation = "sum_total_metric"
	OpSumDeltaMetric              Operation = "sum_delta_metric"
	OpCountVideosPositiveDelta    Operation = "count_distinct_videos_with_positive_delta"
	OpCountSnapshotsNegativeDelta Operation = "count_snapshots_with_negative_delta"
)

// Operations lists every supported operation.
var Operations = []Operation{
	OpCountVideos,
	OpCountDistinctCreators,
	OpCountDistinctPublishDays,
	OpSumTotalMetric,
	OpSumDeltaMetric,
	OpCountVideosPositiveDelta,
	OpCountSnapshotsNegativeDelta,
}

// RequiresMetric reports whether the operation targets a specific metric.
// The three pure counting operations must not carry one.
func (o Operation) RequiresMetric() bool {
	switch o {
	case OpCountVideos, OpCountDistinctCreators, OpCountDistinctPublishDays:
		return false
	case OpSumTotalMetric, OpSumDeltaMetric, OpCountVideosPositiveDelta, OpCountSnapshotsNegativeDelta:
		return true
	}
	return false
}

// Valid reports whether the operation is a member of the closed set.
func (o Operation) Valid() bool {
	for _, op := range Operations {
		if o == op {
			return true
		}
	}
	return false
}

// Metric is the closed set of tracked video metrics.
type Metric string

const (
	MetricViews    Metric = "views"
	MetricLikes    Metric = "likes"
	MetricComments Metric = "comments"
	MetricReports  Metric = "reports"
)

// Metrics lists every supported metric.
var Metrics = []Metric{MetricViews, MetricLikes, MetricComments, MetricReports}

// Valid reports whether the metric is a member of the closed set.
func (m Metric) Valid() bool {
	switch m {
	case MetricViews, MetricLikes, MetricComments, MetricReports:
		return true
	}
	return false
}

// Scope selects which timestamp column a date range filters.
type Scope string

const (
	ScopeVideosPublishedAt  Scope = "videos_published_at"
	ScopeSnapshotsCreatedAt Scope = "snapshots_created_at"
)

// Valid reports whether the scope is a member of the closed set.
func (s Scope) Valid() bool {
	return s == ScopeVideosPublishedAt || s == ScopeSnapshotsCreatedAt
}

// Comparator is the closed set of threshold comparison operators.
type Comparator string

const (
	CmpGT Comparator = ">"
	CmpGE Comparator = ">="
	CmpLT Comparator = "<"
	CmpLE Comparator = "<="
	CmpEQ Comparator = "="
)

// Valid reports whether the comparator is a member of the closed set.
func (c Comparator) Valid() bool {
	switch c {
	case CmpGT, CmpGE, CmpLT, CmpLE, CmpEQ:
		return true
	}
	return false
}

// AppliesTo selects where a threshold is evaluated.
type AppliesTo string

const (
	// AppliesFinalTotal compares against the cumulative totals stored on the video row.
	AppliesFinalTotal AppliesTo = "final_total"
	// AppliesSnapshotAsOf compares against the per-video maximum snapshot total
	// observed inside the active date window.
	AppliesSnapshotAsOf AppliesTo = "snapshot_as_of"
)

// Valid reports whether the applies-to tag is a member of the closed set.
func (a AppliesTo) Valid() bool {
	return a == AppliesFinalTotal || a == AppliesSnapshotAsOf
}

// DateRange is an inclusive calendar-day range in UTC. The compiler converts it to a
// half-open interval [start 00:00, end+1d 00:00) exactly once.
type DateRange struct {
	Scope Scope
	Start time.Time // UTC midnight of the first day
	End   time.Time // UTC midnight of the last day (inclusive)
}

// SingleDay reports whether the range spans exactly one calendar day.
func (r DateRange) SingleDay() bool {
	return r.Start.Equal(r.End)
}

// TimeWindow is a time-of-day band, meaningful only with a single-day
// snapshot-scoped date range. The band is half-open: [Start, End).
type TimeWindow struct {
	Start time.Duration // offset from midnight UTC
	End   time.Duration
}

// Threshold is one numeric filter; all thresholds on an intent are AND-combined.
type Threshold struct {
	AppliesTo AppliesTo
	Metric    Metric
	Op        Comparator
	Value     int64
}

// Filters holds the non-date filters of an intent.
type Filters struct {
	CreatorID  string // empty means no creator filter
	Thresholds []Threshold
}

// Intent is one validated analytics question. Values are request-local: built fresh
// per request, never mutated after validation, discarded after execution.
type Intent struct {
	Operation  Operation
	Metric     Metric // empty when the operation does not target a metric
	DateRange  *DateRange
	TimeWindow *TimeWindow
	Filters    Filters
}

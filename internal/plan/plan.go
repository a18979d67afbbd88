// Package plan compiles validated intents into parameterized SQL aggregation plans.
// The compiler is deterministic and total over the closed operation set; the
// inclusive-to-half-open date conversion happens here, exactly once.
package plan

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/clipsight/clipsight/internal/intent"
)

// ErrCompile marks an intent the compiler cannot express. A validated intent never
// triggers it; it guards against callers skipping validation.
var ErrCompile = errors.New("compile intent")

func compilef(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrCompile, fmt.Sprintf(format, args...))
}

// Plan is one scalar SQL query ready for execution.
type Plan struct {
	SQL  string
	Args []any
}

// builder accumulates positional bind parameters.
type builder struct {
	args []any
}

func (b *builder) bind(v any) string {
	b.args = append(b.args, v)
	return "$" + strconv.Itoa(len(b.args))
}

// windowBounds converts the inclusive calendar-day range into the half-open UTC
// interval [start, end+1d), narrowed to the time-of-day band when one is present.
func windowBounds(dr *intent.DateRange, tw *intent.TimeWindow) (time.Time, time.Time) {
	if tw != nil {
		// Validation guarantees a single-day range here.
		return dr.Start.Add(tw.Start), dr.Start.Add(tw.End)
	}
	return dr.Start, dr.End.Add(24 * time.Hour)
}

// Compile translates a validated intent into an aggregation plan per operation:
//
//	count_videos                              videos     COUNT(*)
//	count_distinct_creators                   videos     COUNT(DISTINCT creator_id)
//	count_distinct_publish_days               videos     COUNT(DISTINCT publish day)
//	sum_total_metric                          videos     SUM(final total)
//	sum_delta_metric                          snapshots  SUM(delta)
//	count_distinct_videos_with_positive_delta snapshots  COUNT(DISTINCT video_id), delta > 0
//	count_snapshots_with_negative_delta       snapshots  COUNT(*), delta < 0
func Compile(it *intent.Intent) (Plan, error) {
	switch it.Operation {
	case intent.OpCountVideos:
		return compileVideoAggregate(it, "COUNT(*)::bigint")
	case intent.OpCountDistinctCreators:
		return compileVideoAggregate(it, "COUNT(DISTINCT v.creator_id)::bigint")
	case intent.OpCountDistinctPublishDays:
		return compileVideoAggregate(it, "COUNT(DISTINCT date_trunc('day', v.video_created_at))::bigint")
	case intent.OpSumTotalMetric:
		col, ok := videoTotalColumns[it.Metric]
		if !ok {
			return Plan{}, compilef("sum_total_metric requires a metric")
		}
		return compileVideoAggregate(it, fmt.Sprintf("COALESCE(SUM(v.%s), 0)::bigint", col))
	case intent.OpSumDeltaMetric:
		col, ok := snapshotDeltaColumns[it.Metric]
		if !ok {
			return Plan{}, compilef("sum_delta_metric requires a metric")
		}
		return compileSnapshotAggregate(it, fmt.Sprintf("COALESCE(SUM(s.%s), 0)::bigint", col), "")
	case intent.OpCountVideosPositiveDelta:
		col, ok := snapshotDeltaColumns[it.Metric]
		if !ok {
			return Plan{}, compilef("count_distinct_videos_with_positive_delta requires a metric")
		}
		return compileSnapshotAggregate(it, "COUNT(DISTINCT s.video_id)::bigint", fmt.Sprintf("s.%s > 0", col))
	case intent.OpCountSnapshotsNegativeDelta:
		col, ok := snapshotDeltaColumns[it.Metric]
		if !ok {
			return Plan{}, compilef("count_snapshots_with_negative_delta requires a metric")
		}
		return compileSnapshotAggregate(it, "COUNT(*)::bigint", fmt.Sprintf("s.%s < 0", col))
	}
	return Plan{}, compilef("unsupported operation %q", it.Operation)
}

func splitThresholds(ths []intent.Threshold) (final, asOf []intent.Threshold) {
	for _, t := range ths {
		if t.AppliesTo == intent.AppliesSnapshotAsOf {
			asOf = append(asOf, t)
		} else {
			final = append(final, t)
		}
	}
	return final, asOf
}

// snapMaxCTE emits the per-video grouped aggregate that snapshot_as_of thresholds
// compare against: the maximum snapshot totals inside the active window. This is a
// correlated aggregate evaluated per video before the outer aggregation, not a row
// filter.
func snapMaxCTE(b *builder, it *intent.Intent) (string, error) {
	if it.DateRange == nil || it.DateRange.Scope != intent.ScopeSnapshotsCreatedAt {
		return "", compilef("snapshot_as_of thresholds require a snapshot-scoped date_range")
	}
	start, end := windowBounds(it.DateRange, it.TimeWindow)
	return "WITH snap_max AS (" +
		" SELECT s.video_id," +
		"        MAX(s.views_count) AS views_count," +
		"        MAX(s.likes_count) AS likes_count," +
		"        MAX(s.comments_count) AS comments_count," +
		"        MAX(s.reports_count) AS reports_count" +
		"   FROM video_snapshots s" +
		"  WHERE s.created_at >= " + b.bind(start) + " AND s.created_at < " + b.bind(end) +
		"  GROUP BY s.video_id" +
		") ", nil
}

func appendThresholds(clauses *[]string, b *builder, ths []intent.Threshold, alias string, columns map[intent.Metric]string) {
	for _, t := range ths {
		*clauses = append(*clauses, fmt.Sprintf("%s.%s %s %s", alias, columns[t.Metric], comparatorSQL[t.Op], b.bind(t.Value)))
	}
}

func whereAnd(clauses []string) string {
	if len(clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(clauses, " AND ")
}

// compileVideoAggregate builds plans whose rows come from the videos table.
func compileVideoAggregate(it *intent.Intent, selectExpr string) (Plan, error) {
	b := &builder{}
	final, asOf := splitThresholds(it.Filters.Thresholds)

	cte := ""
	if len(asOf) > 0 {
		var err error
		cte, err = snapMaxCTE(b, it)
		if err != nil {
			return Plan{}, err
		}
	}

	fromSQL := "FROM videos v"
	if len(asOf) > 0 {
		fromSQL += " JOIN snap_max sm ON sm.video_id = v.id"
	}

	var clauses []string
	if it.Filters.CreatorID != "" {
		clauses = append(clauses, "v.creator_id = "+b.bind(it.Filters.CreatorID))
	}

	if it.DateRange != nil {
		switch {
		case it.DateRange.Scope == intent.ScopeVideosPublishedAt:
			start, end := windowBounds(it.DateRange, nil)
			clauses = append(clauses, "v.video_created_at >= "+b.bind(start)+" AND v.video_created_at < "+b.bind(end))
		case it.DateRange.Scope == intent.ScopeSnapshotsCreatedAt && len(asOf) == 0:
			// Snapshot-window filter over a videos query: membership via EXISTS.
			start, end := windowBounds(it.DateRange, it.TimeWindow)
			clauses = append(clauses,
				"EXISTS (SELECT 1 FROM video_snapshots s WHERE s.video_id = v.id AND s.created_at >= "+
					b.bind(start)+" AND s.created_at < "+b.bind(end)+")")
		}
		// With as-of thresholds the snap_max join already restricts to the window.
	}

	appendThresholds(&clauses, b, final, "v", videoTotalColumns)
	appendThresholds(&clauses, b, asOf, "sm", snapshotTotalColumns)

	sql := strings.TrimSpace(cte + "SELECT " + selectExpr + " " + fromSQL + whereAnd(clauses))
	return Plan{SQL: sql, Args: b.args}, nil
}

// compileSnapshotAggregate builds plans whose rows come from the snapshots table.
func compileSnapshotAggregate(it *intent.Intent, selectExpr, rowPredicate string) (Plan, error) {
	b := &builder{}
	final, asOf := splitThresholds(it.Filters.Thresholds)

	cte := ""
	if len(asOf) > 0 {
		var err error
		cte, err = snapMaxCTE(b, it)
		if err != nil {
			return Plan{}, err
		}
	}

	fromSQL := "FROM video_snapshots s JOIN videos v ON v.id = s.video_id"
	if len(asOf) > 0 {
		fromSQL += " JOIN snap_max sm ON sm.video_id = s.video_id"
	}

	var clauses []string
	if rowPredicate != "" {
		clauses = append(clauses, rowPredicate)
	}

	if it.DateRange != nil {
		start, end := windowBounds(it.DateRange, it.TimeWindow)
		clauses = append(clauses, "s.created_at >= "+b.bind(start)+" AND s.created_at < "+b.bind(end))
	}

	if it.Filters.CreatorID != "" {
		clauses = append(clauses, "v.creator_id = "+b.bind(it.Filters.CreatorID))
	}

	appendThresholds(&clauses, b, final, "v", videoTotalColumns)
	appendThresholds(&clauses, b, asOf, "sm", snapshotTotalColumns)

	sql := strings.TrimSpace(cte + "SELECT " + selectExpr + " " + fromSQL + whereAnd(clauses))
	return Plan{SQL: sql, Args: b.args}, nil
}

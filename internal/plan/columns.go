package plan

import "github.com/clipsight/clipsight/internal/intent"

// Every identifier that reaches generated SQL comes from these allowlists; user
// input only ever becomes bound parameters.

var videoTotalColumns = map[intent.Metric]string{
	intent.MetricViews:    "views_count",
	intent.MetricLikes:    "likes_count",
	intent.MetricComments: "comments_count",
	intent.MetricReports:  "reports_count",
}

var snapshotTotalColumns = map[intent.Metric]string{
	intent.MetricViews:    "views_count",
	intent.MetricLikes:    "likes_count",
	intent.MetricComments: "comments_count",
	intent.MetricReports:  "reports_count",
}

var snapshotDeltaColumns = map[intent.Metric]string{
	intent.MetricViews:    "delta_views_count",
	intent.MetricLikes:    "delta_likes_count",
	intent.MetricComments: "delta_comments_count",
	intent.MetricReports:  "delta_reports_count",
}

var comparatorSQL = map[intent.Comparator]string{
	intent.CmpGT: ">",
	intent.CmpGE: ">=",
	intent.CmpLT: "<",
	intent.CmpLE: "<=",
	intent.CmpEQ: "=",
}

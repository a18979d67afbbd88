package intent

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestExtract(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want *Raw
	}{
		{
			name: "count videos over inclusive range",
			text: "Сколько видео опубликовано с 1 по 5 ноября 2025 включительно?",
			want: &Raw{
				Operation: "count_videos",
				DateRange: &RawDateRange{
					Scope:     "videos_published_at",
					StartDate: "2025-11-01",
					EndDate:   "2025-11-05",
					Inclusive: true,
				},
			},
		},
		{
			name: "sum of views with a likes threshold",
			text: "Сколько всего просмотров у видео с более чем 100000 лайков?",
			want: &Raw{
				Operation: "sum_total_metric",
				Metric:    strPtr("views"),
				Filters: &RawFilters{
					Thresholds: []RawThreshold{
						{AppliesTo: "final_total", Metric: "likes", Op: ">", Value: json.Number("100000")},
					},
				},
			},
		},
		{
			name: "negative comment delta on a single day",
			text: "У какого числа видео дельта комментариев отрицательна 3 ноября 2025?",
			want: &Raw{
				Operation: "count_snapshots_with_negative_delta",
				Metric:    strPtr("comments"),
				DateRange: &RawDateRange{
					Scope:     "snapshots_created_at",
					StartDate: "2025-11-03",
					EndDate:   "2025-11-03",
					Inclusive: true,
				},
			},
		},
		{
			name: "creator filter with all-time phrase",
			text: "Сколько видео у креатора с id abc123 за все время?",
			want: &Raw{
				Operation: "count_videos",
				Filters:   &RawFilters{CreatorID: strPtr("abc123")},
			},
		},
		{
			name: "magnitude suffix in threshold value",
			text: "Сколько видео набрало более 1 млн просмотров?",
			want: &Raw{
				Operation: "count_videos",
				Filters: &RawFilters{
					Thresholds: []RawThreshold{
						{AppliesTo: "final_total", Metric: "views", Op: ">", Value: json.Number("1000000")},
					},
				},
			},
		},
		{
			name: "as-of threshold binds to snapshot maxima",
			text: "Сколько видео имело не менее 1000 лайков по состоянию на 3 ноября 2025?",
			want: &Raw{
				Operation: "count_videos",
				DateRange: &RawDateRange{
					Scope:     "snapshots_created_at",
					StartDate: "2025-11-03",
					EndDate:   "2025-11-03",
					Inclusive: true,
				},
				Filters: &RawFilters{
					Thresholds: []RawThreshold{
						{AppliesTo: "snapshot_as_of", Metric: "likes", Op: ">=", Value: json.Number("1000")},
					},
				},
			},
		},
		{
			name: "time window inside a single snapshot day",
			text: "У какого числа видео дельта лайков отрицательна 3 ноября 2025 с 10:00 до 12:30?",
			want: &Raw{
				Operation: "count_snapshots_with_negative_delta",
				Metric:    strPtr("likes"),
				DateRange: &RawDateRange{
					Scope:     "snapshots_created_at",
					StartDate: "2025-11-03",
					EndDate:   "2025-11-03",
					Inclusive: true,
				},
				TimeWindow: &RawTimeWindow{StartTime: "10:00", EndTime: "12:30"},
			},
		},
		{
			name: "dotted date survives normalization",
			text: "Сколько видео опубликовано 03.11.2025?",
			want: &Raw{
				Operation: "count_videos",
				DateRange: &RawDateRange{
					Scope:     "videos_published_at",
					StartDate: "2025-11-03",
					EndDate:   "2025-11-03",
					Inclusive: true,
				},
			},
		},
		{
			name: "growth phrasing maps to delta sum",
			text: "На сколько выросли просмотры с 2025-11-01 по 2025-11-05?",
			want: &Raw{
				Operation: "sum_delta_metric",
				Metric:    strPtr("views"),
				DateRange: &RawDateRange{
					Scope:     "snapshots_created_at",
					StartDate: "2025-11-01",
					EndDate:   "2025-11-05",
					Inclusive: true,
				},
			},
		},
		{
			name: "distinct creators",
			text: "Сколько креаторов опубликовали видео с 1 по 5 ноября 2025?",
			want: &Raw{
				Operation: "count_distinct_creators",
				DateRange: &RawDateRange{
					Scope:     "videos_published_at",
					StartDate: "2025-11-01",
					EndDate:   "2025-11-05",
					Inclusive: true,
				},
			},
		},
		{
			name: "distinct publish days",
			text: "В течение какого количества дней публиковались видео с 28 октября по 2 ноября 2025?",
			want: &Raw{
				Operation: "count_distinct_publish_days",
				DateRange: &RawDateRange{
					Scope:     "videos_published_at",
					StartDate: "2025-10-28",
					EndDate:   "2025-11-02",
					Inclusive: true,
				},
			},
		},
		{
			name: "new videos with positive delta",
			text: "Сколько видео получили новые просмотры 3 ноября 2025?",
			want: &Raw{
				Operation: "count_distinct_videos_with_positive_delta",
				Metric:    strPtr("views"),
				DateRange: &RawDateRange{
					Scope:     "snapshots_created_at",
					StartDate: "2025-11-03",
					EndDate:   "2025-11-03",
					Inclusive: true,
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Extract(tt.text)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestExtractUnsupported(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
	}{
		{name: "empty input", text: "   "},
		{name: "no operation cue", text: "Привет, как дела?"},
		{name: "ambiguous metric term", text: "Сколько всего реакций у видео за все время?"},
		{name: "two competing metrics", text: "Сколько всего просмотров и лайков у видео?"},
		{name: "as-of phrase without a date", text: "Сколько видео имело не менее 1000 лайков на тот момент?"},
		{name: "time window over a publish-scoped day", text: "Сколько видео опубликовано 3 ноября 2025 с 10:00 до 12:30?"},
		{name: "time window without any date", text: "Сколько всего просмотров у видео с 10:00 до 12:30?"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Extract(tt.text)
			require.ErrorIs(t, err, ErrUnsupported)
			require.Nil(t, got)
		})
	}
}

func TestExtractDeterministic(t *testing.T) {
	t.Parallel()

	const text = "Сколько всего просмотров у видео с более чем 100 тыс лайков за все время?"
	first, err := Extract(text)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := Extract(text)
		require.NoError(t, err)
		require.Equal(t, first, again)
	}
}

func TestExtractDuplicateThresholdsDeduped(t *testing.T) {
	t.Parallel()

	raw, err := Extract("Сколько видео с более чем 1000 лайков и более чем 1000 лайков?")
	require.NoError(t, err)
	require.NotNil(t, raw.Filters)
	require.Len(t, raw.Filters.Thresholds, 1)
}

func TestParseThresholdValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		digits    string
		magnitude string
		want      int64
		ok        bool
	}{
		{digits: "100000", want: 100_000, ok: true},
		{digits: "100 000", want: 100_000, ok: true},
		{digits: "1", magnitude: "млн", want: 1_000_000, ok: true},
		{digits: "500", magnitude: "к", want: 500_000, ok: true},
		{digits: "2", magnitude: "млрд", want: 2_000_000_000, ok: true},
		{digits: "9223372036854775807", want: 1<<63 - 1, ok: true},
		{digits: "9223372036854775808", ok: false},
		{digits: "9223372036854775807", magnitude: "к", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.digits+tt.magnitude, func(t *testing.T) {
			t.Parallel()
			got, ok := parseThresholdValue(tt.digits, tt.magnitude)
			require.Equal(t, tt.ok, ok)
			if ok {
				require.Equal(t, tt.want, got)
			}
		})
	}
}

package intent

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParseDateRange(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		text       string
		start, end time.Time
		ok         bool
	}{
		{
			name:  "same-month range",
			text:  "с 1 по 5 ноября 2025",
			start: day(2025, time.November, 1),
			end:   day(2025, time.November, 5),
			ok:    true,
		},
		{
			name:  "month-to-month range",
			text:  "с 28 октября по 2 ноября 2025",
			start: day(2025, time.October, 28),
			end:   day(2025, time.November, 2),
			ok:    true,
		},
		{
			name:  "iso range",
			text:  "с 2025-11-01 по 2025-11-05",
			start: day(2025, time.November, 1),
			end:   day(2025, time.November, 5),
			ok:    true,
		},
		{
			name:  "reversed range is reordered",
			text:  "с 5 по 1 ноября 2025",
			start: day(2025, time.November, 1),
			end:   day(2025, time.November, 5),
			ok:    true,
		},
		{
			name:  "single russian date",
			text:  "3 ноября 2025",
			start: day(2025, time.November, 3),
			end:   day(2025, time.November, 3),
			ok:    true,
		},
		{
			name:  "single iso date",
			text:  "за 2025-11-03",
			start: day(2025, time.November, 3),
			end:   day(2025, time.November, 3),
			ok:    true,
		},
		{
			name:  "two standalone dates form a range",
			text:  "между 1 ноября 2025 и 5 ноября 2025",
			start: day(2025, time.November, 1),
			end:   day(2025, time.November, 5),
			ok:    true,
		},
		{name: "overflowing day is rejected", text: "31 ноября 2025"},
		{name: "month without a year", text: "3 ноября"},
		{name: "no date at all", text: "сколько видео"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			start, end, ok := parseDateRange(tt.text)
			require.Equal(t, tt.ok, ok)
			if tt.ok {
				require.Equal(t, tt.start, start)
				require.Equal(t, tt.end, end)
			}
		})
	}
}

func TestParseTimeWindow(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		text       string
		start, end string
		ok         bool
	}{
		{name: "basic window", text: "с 10:00 до 12:30", start: "10:00", end: "12:30", ok: true},
		{name: "single-digit hour is padded", text: "с 9:00 до 11:15", start: "09:00", end: "11:15", ok: true},
		{name: "hour out of range", text: "с 25:00 до 26:00"},
		{name: "no window", text: "3 ноября 2025"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			start, end, ok := parseTimeWindow(tt.text)
			require.Equal(t, tt.ok, ok)
			if tt.ok {
				require.Equal(t, tt.start, start)
				require.Equal(t, tt.end, end)
			}
		})
	}
}

func TestNormalizeText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "lowercase and punctuation stripping",
			in:   "Сколько видео, опубликовано?!",
			want: "сколько видео опубликовано",
		},
		{
			name: "dotted date becomes iso",
			in:   "за 03.11.2025",
			want: "за 2025-11-03",
		},
		{
			name: "dotted date with single-digit fields",
			in:   "за 3.1.2025",
			want: "за 2025-01-03",
		},
		{
			name: "yo is folded",
			in:   "всё видео",
			want: "все видео",
		},
		{
			name: "time window colons survive",
			in:   "с 10:00 до 12:30",
			want: "с 10:00 до 12:30",
		},
		{
			name: "quoted id keeps its content",
			in:   `креатора "abc123"`,
			want: "креатора abc123",
		},
		{
			name: "unicode dashes normalize",
			in:   "2025—11—03",
			want: "2025-11-03",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, normalizeText(tt.in))
		})
	}
}

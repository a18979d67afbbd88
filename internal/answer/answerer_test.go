package answer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/clipsight/clipsight/internal/intent"
)

type stubProducer struct {
	name string
	raw  *intent.Raw
	err  error
}

func (p *stubProducer) Name() string { return p.name }

func (p *stubProducer) Produce(context.Context, string) (*intent.Raw, error) {
	return p.raw, p.err
}

type stubQuerier struct {
	value   int64
	err     error
	lastSQL string
}

func (q *stubQuerier) ScalarInt(_ context.Context, sql string, _ ...any) (int64, error) {
	q.lastSQL = sql
	return q.value, q.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func countVideosRaw() *intent.Raw {
	return &intent.Raw{Operation: "count_videos"}
}

func TestAnswerReturnsQueryResult(t *testing.T) {
	t.Parallel()

	db := &stubQuerier{value: 42}
	a := New([]intent.Producer{&stubProducer{name: "rules", raw: countVideosRaw()}}, db, discardLogger())

	got := a.Answer(context.Background(), "Сколько видео за все время?")
	require.Equal(t, "42", got)
	require.Contains(t, db.lastSQL, "COUNT(*)")
}

func TestAnswerSentinelOnFailure(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		producer intent.Producer
		db       Querier
	}{
		{
			name:     "unsupported question",
			producer: &stubProducer{name: "rules", err: intent.ErrUnsupported},
			db:       &stubQuerier{},
		},
		{
			name:     "producer error",
			producer: &stubProducer{name: "llm", err: errors.New("api unreachable")},
			db:       &stubQuerier{},
		},
		{
			name:     "invalid intent",
			producer: &stubProducer{name: "llm", raw: &intent.Raw{Operation: "count_everything"}},
			db:       &stubQuerier{},
		},
		{
			name:     "execution error",
			producer: &stubProducer{name: "rules", raw: countVideosRaw()},
			db:       &stubQuerier{err: errors.New("connection reset")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			a := New([]intent.Producer{tt.producer}, tt.db, discardLogger())
			require.Equal(t, "0", a.Answer(context.Background(), "Сколько видео?"))
		})
	}
}

func TestAnswerIgnoresCommandsAndEmptyInput(t *testing.T) {
	t.Parallel()

	a := New([]intent.Producer{&stubProducer{name: "rules", raw: countVideosRaw()}}, &stubQuerier{value: 7}, discardLogger())

	require.Equal(t, "0", a.Answer(context.Background(), ""))
	require.Equal(t, "0", a.Answer(context.Background(), "   "))
	require.Equal(t, "0", a.Answer(context.Background(), "/start"))
}

func TestAnswerFallsBackToNextProducer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		first intent.Producer
	}{
		{name: "first producer errors", first: &stubProducer{name: "llm", err: context.DeadlineExceeded}},
		{name: "first producer emits invalid intent", first: &stubProducer{name: "llm", raw: &intent.Raw{Operation: "nope"}}},
		{name: "first producer emits empty intent", first: &stubProducer{name: "llm", raw: &intent.Raw{}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			producers := []intent.Producer{
				tt.first,
				&stubProducer{name: "rules", raw: countVideosRaw()},
			}
			a := New(producers, &stubQuerier{value: 5}, discardLogger())
			require.Equal(t, "5", a.Answer(context.Background(), "Сколько видео?"))
		})
	}
}

func TestAnswerEmptyProducerChain(t *testing.T) {
	t.Parallel()

	// Misconfiguration must still produce the sentinel, not a panic.
	a := New(nil, &stubQuerier{value: 7}, discardLogger())
	require.Equal(t, "0", a.Answer(context.Background(), "Сколько видео?"))
}

func TestAnswerNegativeResultPassesThrough(t *testing.T) {
	t.Parallel()

	// A delta sum can legitimately be negative; the reply contract allows it.
	raw := &intent.Raw{Operation: "sum_delta_metric", Metric: func() *string { s := "views"; return &s }()}
	a := New([]intent.Producer{&stubProducer{name: "rules", raw: raw}}, &stubQuerier{value: -12}, discardLogger())

	require.Equal(t, "-12", a.Answer(context.Background(), "На сколько выросли просмотры?"))
}

func TestAnswerIdempotent(t *testing.T) {
	t.Parallel()

	a := New([]intent.Producer{&stubProducer{name: "rules", raw: countVideosRaw()}}, &stubQuerier{value: 9}, discardLogger())

	first := a.Answer(context.Background(), "Сколько видео?")
	for i := 0; i < 5; i++ {
		require.Equal(t, first, a.Answer(context.Background(), "Сколько видео?"))
	}
}

func TestSanitizeReply(t *testing.T) {
	t.Parallel()

	require.Equal(t, "42", sanitizeReply("42"))
	require.Equal(t, "-7", sanitizeReply("-7"))
	require.Equal(t, "0", sanitizeReply("42 видео"))
	require.Equal(t, "0", sanitizeReply(""))
}

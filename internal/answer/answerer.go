// Package answer wires intent producers, the validator, the query compiler, and
// the executor into one total function: every inbound text becomes exactly one
// integer reply. This is the only place failures are converted into the sentinel 0.
package answer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/clipsight/clipsight/internal/intent"
	"github.com/clipsight/clipsight/internal/plan"
)

// Failure taxonomy. Everything above execution is recovered locally; nothing
// propagates past Answer.
const (
	reasonUnsupported     = "unsupported"
	reasonInvalidIntent   = "invalid_intent"
	reasonProducerTimeout = "producer_timeout"
	reasonProducerError   = "producer_error"
	reasonCompileError    = "compile_error"
	reasonExecutionError  = "execution_error"
)

var integerReplyRe = regexp.MustCompile(`^-?\d+$`)

// Querier executes one compiled scalar plan. *store.Executor satisfies it.
type Querier interface {
	ScalarInt(ctx context.Context, sql string, args ...any) (int64, error)
}

// Answerer answers analytics questions. It holds no cross-request state; every
// intent is request-local.
type Answerer struct {
	producers []intent.Producer
	db        Querier
	log       *slog.Logger
}

// New builds an answerer over an ordered producer chain. Earlier producers are
// preferred; any failure or rejected intent falls through to the next one
// synchronously, within the same request.
func New(producers []intent.Producer, db Querier, log *slog.Logger) *Answerer {
	return &Answerer{producers: producers, db: db, log: log}
}

// Answer returns exactly one integer string for any input. The reply always
// matches ^-?\d+$; unsupported questions, invalid intents, and internal errors all
// collapse to "0" with an internal log record.
func (a *Answerer) Answer(ctx context.Context, text string) string {
	start := time.Now()
	defer func() { AnswerDuration.Observe(time.Since(start).Seconds()) }()

	trimmed := strings.TrimSpace(text)
	if trimmed == "" || strings.HasPrefix(trimmed, "/") {
		MessagesTotal.WithLabelValues("ignored").Inc()
		return "0"
	}

	it, source, err := a.resolveIntent(ctx, trimmed)
	if err != nil {
		reason := reasonInvalidIntent
		if errors.Is(err, intent.ErrUnsupported) {
			reason = reasonUnsupported
		}
		a.fail("intent", reason, trimmed, err, start)
		return "0"
	}

	p, err := plan.Compile(it)
	if err != nil {
		a.fail("compile", reasonCompileError, trimmed, err, start)
		return "0"
	}

	value, err := a.db.ScalarInt(ctx, p.SQL, p.Args...)
	if err != nil {
		a.fail("execute", reasonExecutionError, trimmed, err, start)
		return "0"
	}

	reply := strconv.FormatInt(value, 10)
	a.log.Info("answered",
		"source", source,
		"operation", it.Operation,
		"metric", it.Metric,
		"latency", time.Since(start),
	)
	MessagesTotal.WithLabelValues("answered").Inc()
	return sanitizeReply(reply)
}

// resolveIntent runs the producer chain through the shared validator. Both
// producers are validated identically; the LLM's output gets no special treatment.
func (a *Answerer) resolveIntent(ctx context.Context, text string) (*intent.Intent, string, error) {
	if len(a.producers) == 0 {
		return nil, "", fmt.Errorf("%w: no intent producers configured", intent.ErrUnsupported)
	}
	var lastErr error
	for i, p := range a.producers {
		raw, err := p.Produce(ctx, text)
		if err == nil {
			var it *intent.Intent
			it, err = intent.Validate(raw)
			if err == nil {
				return it, p.Name(), nil
			}
		}
		lastErr = err
		if i < len(a.producers)-1 {
			reason := producerFailureReason(err)
			a.log.Warn("intent producer failed, falling back",
				"producer", p.Name(), "reason", reason, "error", err)
			ProducerFallbacksTotal.WithLabelValues(p.Name(), reason).Inc()
		}
	}
	return nil, "", lastErr
}

func producerFailureReason(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return reasonProducerTimeout
	case errors.Is(err, intent.ErrUnsupported):
		return reasonUnsupported
	case errors.Is(err, intent.ErrInvalid):
		return reasonInvalidIntent
	default:
		return reasonProducerError
	}
}

func (a *Answerer) fail(stage, reason, text string, err error, start time.Time) {
	// Unsupported questions are expected traffic; real failures are not.
	logFn := a.log.Info
	if stage == "execute" || stage == "compile" {
		logFn = a.log.Error
	}
	logFn("request failed",
		"stage", stage,
		"reason", reason,
		"error", err,
		"text", text,
		"latency", time.Since(start),
	)
	MessagesTotal.WithLabelValues("sentinel").Inc()
	FailuresTotal.WithLabelValues(stage, reason).Inc()
}

// sanitizeReply guards the outbound contract: anything that is not a plain integer
// string becomes the sentinel.
func sanitizeReply(s string) string {
	if integerReplyRe.MatchString(s) {
		return s
	}
	return "0"
}

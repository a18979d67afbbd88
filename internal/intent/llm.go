package intent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// llmSystemPrompt pins the LLM to the exact wire schema the validator accepts. The
// model may only emit Intent JSON; the empty object is the unsupported signal.
const llmSystemPrompt = `You convert one Russian analytics question about a video-metrics dataset into a single strict JSON object and nothing else. No prose, no markdown fences.

Schema:
{
  "operation": one of "count_videos", "count_distinct_creators", "count_distinct_publish_days", "sum_total_metric", "sum_delta_metric", "count_distinct_videos_with_positive_delta", "count_snapshots_with_negative_delta",
  "metric": one of "views", "likes", "comments", "reports" (omit for the three count_* operations that do not target a metric),
  "date_range": {"scope": "videos_published_at" | "snapshots_created_at", "start_date": "YYYY-MM-DD", "end_date": "YYYY-MM-DD", "inclusive": true} (omit when the question has no date),
  "time_window": {"start_time": "HH:MM", "end_time": "HH:MM"} (only with a single-day snapshot-scoped date_range),
  "filters": {"creator_id": string or null, "thresholds": [{"applies_to": "final_total" | "snapshot_as_of", "metric": ..., "op": ">"|">="|"<"|"<="|"=", "value": integer}]}
}

Rules:
- Dates are UTC calendar days; user ranges are inclusive, keep "inclusive": true.
- "snapshot_as_of" only when the question compares values as of a date ("на тот момент", "к 3 ноября"); it requires a snapshot-scoped date_range.
- Ambiguous metric words such as "реакции" are unsupported.
- If the question is unsupported, out of scope, or you are unsure, reply with exactly {}.`

// LLMConfig configures the optional Anthropic intent producer.
type LLMConfig struct {
	APIKey    string
	Model     string
	BaseURL   string // empty uses the default API endpoint
	Timeout   time.Duration
	MaxTokens int64
}

// LLM is the Anthropic-backed intent producer. It conforms to the same Raw schema
// as the rule extractor and gets no special treatment from the validator.
type LLM struct {
	client    anthropic.Client
	model     anthropic.Model
	maxTokens int64
	timeout   time.Duration
	log       *slog.Logger
}

// NewLLM creates the Anthropic producer.
func NewLLM(cfg LLMConfig, log *slog.Logger) *LLM {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &LLM{
		client:    anthropic.NewClient(opts...),
		model:     anthropic.Model(cfg.Model),
		maxTokens: maxTokens,
		timeout:   timeout,
		log:       log,
	}
}

// Name identifies the producer in logs and metrics.
func (*LLM) Name() string { return "llm" }

// Produce asks the model for Intent JSON and decodes it strictly. Every failure
// mode (call error, timeout, non-JSON output) is an error for the caller to recover
// by falling back to the rule extractor within the same request.
func (l *LLM) Produce(ctx context.Context, text string) (*Raw, error) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	start := time.Now()
	msg, err := l.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     l.model,
		MaxTokens: l.maxTokens,
		System: []anthropic.TextBlockParam{
			{Type: "text", Text: llmSystemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(text)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("anthropic call: %w", err)
	}
	l.log.Debug("llm intent call completed", "duration", time.Since(start), "stop_reason", msg.StopReason)

	var content string
	for _, block := range msg.Content {
		if block.Type == "text" {
			content = block.Text
			break
		}
	}
	if content == "" {
		return nil, fmt.Errorf("anthropic call: no text content in response")
	}

	raw, err := DecodeRaw([]byte(stripCodeFences(content)))
	if err != nil {
		return nil, err
	}
	return raw, nil
}

// stripCodeFences tolerates a fenced reply even though the prompt forbids it.
func stripCodeFences(s string) string {
	v := strings.TrimSpace(s)
	if !strings.HasPrefix(v, "```") {
		return v
	}
	v = strings.Trim(v, "`")
	v = strings.TrimPrefix(v, "json")
	return strings.TrimSpace(v)
}

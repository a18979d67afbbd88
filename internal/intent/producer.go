package intent

import "context"

// Producer is one source of raw intents. The rule extractor and the optional LLM
// producer both implement it; neither output is trusted until Validate accepts it.
// Producer selection is a wiring decision, not a branch inside the pipeline.
type Producer interface {
	Name() string
	Produce(ctx context.Context, text string) (*Raw, error)
}

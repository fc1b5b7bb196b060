package extract

import "context"

// Completer is the single external collaborator of the orchestrator: it sends
// prompts to the inference service and returns the assistant message content.
// Transport and service failures must come back as *Error values carrying
// the appropriate Kind (RateLimited, QuotaExhausted, ServiceError).
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

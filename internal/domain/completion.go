package domain

import "context"

// Role identifies the author of a conversation turn.
type Role string

// Conversation roles accepted by completion providers.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single prior conversation turn.
type Message struct {
	Role    Role
	Content string
}

// Completer turns a system prompt, prior history and a user query into prose.
type Completer interface {
	Complete(ctx context.Context, systemPrompt string, history []Message, query string) (string, error)
}

// Completion is a generated answer with the provider's token usage.
type Completion struct {
	Text        string
	TotalTokens int
}

// UsageCompleter is a Completer that also reports token usage.
type UsageCompleter interface {
	Completer
	CompleteWithUsage(ctx context.Context, systemPrompt string, history []Message, query string) (Completion, error)
}

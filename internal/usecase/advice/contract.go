package advice

import "context"

// ChatCompleter is the chat-completion provider contract.
type ChatCompleter interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

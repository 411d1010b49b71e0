package channel

import (
	"context"

	personadomain "persona-backend/internal/persona/domain"
)

// ChatAdapter ingests a user-provided paste of their own chat messages.
// The user curated the paste, so there is no filter.
type ChatAdapter struct {
	text  string
	label string
}

// NewChatAdapter creates an adapter for one pasted transcript
func NewChatAdapter(text, label string) *ChatAdapter {
	return &ChatAdapter{text: text, label: label}
}

func (a *ChatAdapter) SourceType() string {
	return personadomain.SourceChat
}

func (a *ChatAdapter) TestConnection(ctx context.Context) (bool, string) {
	if a.text == "" {
		return false, "empty paste"
	}
	return true, "ok"
}

func (a *ChatAdapter) Fetch(ctx context.Context, emit Emit) error {
	if a.text == "" {
		return nil
	}
	return emit(Item{
		Text: a.text,
		Metadata: map[string]string{
			"label": a.label,
		},
	})
}

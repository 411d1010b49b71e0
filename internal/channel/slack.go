package channel

import (
	"context"
	"fmt"
	"strings"

	personadomain "persona-backend/internal/persona/domain"

	"github.com/slack-go/slack"
)

const slackMaxMessagesPerChannel = 200

// SlackAdapter pulls message history from every channel the user has
// joined and keeps only messages authored by the configured user id.
type SlackAdapter struct {
	client *slack.Client
	userID string
}

// NewSlackAdapter creates a new Slack adapter
func NewSlackAdapter(token, userID string) *SlackAdapter {
	return &SlackAdapter{
		client: slack.New(token),
		userID: userID,
	}
}

func (a *SlackAdapter) SourceType() string {
	return personadomain.SourceSlack
}

func (a *SlackAdapter) TestConnection(ctx context.Context) (bool, string) {
	resp, err := a.client.AuthTestContext(ctx)
	if err != nil {
		return false, fmt.Sprintf("slack auth failed: %v", err)
	}
	return true, fmt.Sprintf("authenticated as %s", resp.User)
}

func (a *SlackAdapter) Fetch(ctx context.Context, emit Emit) error {
	userID := a.userID
	if userID == "" {
		resp, err := a.client.AuthTestContext(ctx)
		if err != nil {
			return fmt.Errorf("slack auth failed: %w", err)
		}
		userID = resp.UserID
	}

	cursor := ""
	for {
		channels, next, err := a.client.GetConversationsContext(ctx, &slack.GetConversationsParameters{
			Types:           []string{"public_channel", "private_channel"},
			ExcludeArchived: true,
			Limit:           100,
			Cursor:          cursor,
		})
		if err != nil {
			return fmt.Errorf("failed to list slack channels: %w", err)
		}

		for _, ch := range channels {
			if !ch.IsMember {
				continue
			}
			if err := a.fetchChannel(ctx, ch, userID, emit); err != nil {
				return err
			}
		}

		if next == "" {
			break
		}
		cursor = next
	}
	return nil
}

func (a *SlackAdapter) fetchChannel(ctx context.Context, ch slack.Channel, userID string, emit Emit) error {
	history, err := a.client.GetConversationHistoryContext(ctx, &slack.GetConversationHistoryParameters{
		ChannelID: ch.ID,
		Limit:     slackMaxMessagesPerChannel,
	})
	if err != nil {
		return fmt.Errorf("failed to fetch history for #%s: %w", ch.Name, err)
	}

	for _, msg := range history.Messages {
		if msg.User != userID || msg.SubType != "" {
			continue
		}
		if strings.TrimSpace(msg.Text) == "" {
			continue
		}

		err := emit(Item{
			Text:     msg.Text,
			Metadata: map[string]string{"channel": ch.Name},
		})
		if err != nil {
			return err
		}
	}
	return nil
}

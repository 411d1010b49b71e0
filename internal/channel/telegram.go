package channel

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	personadomain "persona-backend/internal/persona/domain"
)

// Caps matching the upstream client behavior.
const (
	telegramMaxDialogs           = 50
	telegramMaxMessagesPerDialog = 200
)

// TelegramAdapter reads a Telegram Desktop export (result.json) and
// keeps only messages whose from_id matches the configured user id.
type TelegramAdapter struct {
	exportPath string
	userID     string
}

// NewTelegramAdapter creates a new Telegram export adapter
func NewTelegramAdapter(exportPath, userID string) *TelegramAdapter {
	return &TelegramAdapter{exportPath: exportPath, userID: userID}
}

func (a *TelegramAdapter) SourceType() string {
	return personadomain.SourceTelegram
}

func (a *TelegramAdapter) TestConnection(ctx context.Context) (bool, string) {
	if a.userID == "" {
		return false, "Telegram user id not configured"
	}
	if _, err := os.Stat(a.exportPath); err != nil {
		return false, fmt.Sprintf("export file not readable: %v", err)
	}
	return true, "ok"
}

// StartAuth implements Authenticator. The export-backed adapter needs no
// interactive auth.
func (a *TelegramAdapter) StartAuth(ctx context.Context, phone string) (bool, string, error) {
	return false, "export-backed channel, no auth required", nil
}

// CompleteAuth implements Authenticator.
func (a *TelegramAdapter) CompleteAuth(ctx context.Context, code string) error {
	return nil
}

type telegramExport struct {
	Chats struct {
		List []telegramChat `json:"list"`
	} `json:"chats"`
}

type telegramChat struct {
	Name     string            `json:"name"`
	Messages []telegramMessage `json:"messages"`
}

type telegramMessage struct {
	Type   string          `json:"type"`
	FromID string          `json:"from_id"`
	Text   json.RawMessage `json:"text"`
}

func (a *TelegramAdapter) Fetch(ctx context.Context, emit Emit) error {
	data, err := os.ReadFile(a.exportPath)
	if err != nil {
		return fmt.Errorf("failed to open Telegram export: %w", err)
	}

	var export telegramExport
	if err := json.Unmarshal(data, &export); err != nil {
		return fmt.Errorf("failed to parse Telegram export: %w", err)
	}

	dialogs := export.Chats.List
	if len(dialogs) > telegramMaxDialogs {
		dialogs = dialogs[:telegramMaxDialogs]
	}

	for _, chat := range dialogs {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		count := 0
		for _, msg := range chat.Messages {
			if count >= telegramMaxMessagesPerDialog {
				break
			}
			if msg.Type != "message" || !a.isOwn(msg.FromID) {
				continue
			}

			text := flattenTelegramText(msg.Text)
			if strings.TrimSpace(text) == "" {
				continue
			}
			count++

			err := emit(Item{
				Text:     text,
				Metadata: map[string]string{"dialog": chat.Name},
			})
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func (a *TelegramAdapter) isOwn(fromID string) bool {
	// Exports prefix personal ids with "user".
	return fromID == a.userID || fromID == "user"+a.userID
}

// flattenTelegramText handles the export's text field, which is either a
// plain string or an array of strings and entity objects.
func flattenTelegramText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var parts []json.RawMessage
	if err := json.Unmarshal(raw, &parts); err != nil {
		return ""
	}

	var sb strings.Builder
	for _, part := range parts {
		var str string
		if err := json.Unmarshal(part, &str); err == nil {
			sb.WriteString(str)
			continue
		}
		var entity struct {
			Text string `json:"text"`
		}
		if err := json.Unmarshal(part, &entity); err == nil {
			sb.WriteString(entity.Text)
		}
	}
	return sb.String()
}

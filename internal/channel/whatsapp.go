package channel

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"

	personadomain "persona-backend/internal/persona/domain"
)

// WhatsApp export line shapes:
//   [03/01/2024, 10:15:04] Alice: message text
//   03/01/2024, 10:15 - Alice: message text
var whatsappLineRe = regexp.MustCompile(`^\[?(\d{1,2}[./]\d{1,2}[./]\d{2,4}),? \d{1,2}:\d{2}(?::\d{2})?\]?(?: -)? ([^:]+): (.*)$`)

// System placeholders WhatsApp injects into exports.
var whatsappPlaceholders = []string{
	"<Media omitted>",
	"image omitted",
	"video omitted",
	"audio omitted",
	"sticker omitted",
	"document omitted",
	"This message was deleted",
	"Messages and calls are end-to-end encrypted",
}

// WhatsAppAdapter parses a chat export file and keeps only lines
// attributed to the configured display name (case-insensitive substring
// match). Continuation lines extend the previous kept message.
type WhatsAppAdapter struct {
	exportPath  string
	displayName string
}

// NewWhatsAppAdapter creates a new WhatsApp export adapter
func NewWhatsAppAdapter(exportPath, displayName string) *WhatsAppAdapter {
	return &WhatsAppAdapter{exportPath: exportPath, displayName: displayName}
}

func (a *WhatsAppAdapter) SourceType() string {
	return personadomain.SourceWhatsApp
}

func (a *WhatsAppAdapter) TestConnection(ctx context.Context) (bool, string) {
	if a.displayName == "" {
		return false, "WhatsApp display name not configured"
	}
	if _, err := os.Stat(a.exportPath); err != nil {
		return false, fmt.Sprintf("export file not readable: %v", err)
	}
	return true, "ok"
}

func (a *WhatsAppAdapter) Fetch(ctx context.Context, emit Emit) error {
	f, err := os.Open(a.exportPath)
	if err != nil {
		return fmt.Errorf("failed to open WhatsApp export: %w", err)
	}
	defer f.Close()

	nameLower := strings.ToLower(a.displayName)

	var pending strings.Builder
	inUserMessage := false

	flush := func() error {
		if pending.Len() == 0 {
			return nil
		}
		text := pending.String()
		pending.Reset()
		return emit(Item{
			Text:     text,
			Metadata: map[string]string{"sender": a.displayName},
		})
	}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			flush()
			return ctx.Err()
		default:
		}

		line := scanner.Text()
		m := whatsappLineRe.FindStringSubmatch(line)
		if m == nil {
			// Continuation of the previous message
			if inUserMessage && strings.TrimSpace(line) != "" {
				pending.WriteString("\n")
				pending.WriteString(line)
			}
			continue
		}

		if err := flush(); err != nil {
			return err
		}

		sender, text := m[2], m[3]
		if !strings.Contains(strings.ToLower(sender), nameLower) {
			inUserMessage = false
			continue
		}
		if isWhatsAppPlaceholder(text) {
			inUserMessage = false
			continue
		}

		inUserMessage = true
		pending.WriteString(text)
	}
	if err := scanner.Err(); err != nil {
		flush()
		return fmt.Errorf("failed to read WhatsApp export: %w", err)
	}

	return flush()
}

func isWhatsAppPlaceholder(text string) bool {
	for _, p := range whatsappPlaceholders {
		if strings.Contains(text, p) {
			return true
		}
	}
	return strings.TrimSpace(text) == ""
}

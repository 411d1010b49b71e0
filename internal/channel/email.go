package channel

import (
	"context"
	"strings"

	personadomain "persona-backend/internal/persona/domain"
	imappkg "persona-backend/pkg/imap"
)

// fetchLimit caps a single sent-folder pull.
const emailFetchLimit = 500

// EmailAdapter pulls the user's sent mail over IMAP. Only messages whose
// From contains the configured address survive the filter.
type EmailAdapter struct {
	imap      *imappkg.IMAPService
	server    string
	port      int
	userEmail string
	password  string
}

// NewEmailAdapter creates a new email adapter
func NewEmailAdapter(imap *imappkg.IMAPService, server string, port int, userEmail, password string) *EmailAdapter {
	return &EmailAdapter{
		imap:      imap,
		server:    server,
		port:      port,
		userEmail: userEmail,
		password:  password,
	}
}

func (a *EmailAdapter) SourceType() string {
	return personadomain.SourceEmailSent
}

func (a *EmailAdapter) TestConnection(ctx context.Context) (bool, string) {
	if a.server == "" || a.userEmail == "" {
		return false, "IMAP server or user email not configured"
	}
	return a.imap.TestConnection(a.server, a.port, a.userEmail, a.password)
}

func (a *EmailAdapter) Fetch(ctx context.Context, emit Emit) error {
	emails, err := a.imap.FetchSent(ctx, a.server, a.port, a.userEmail, a.password, emailFetchLimit)
	if err != nil {
		return err
	}

	userAddr := normalizeAddress(a.userEmail)
	for _, email := range emails {
		if !strings.Contains(normalizeAddress(email.From), userAddr) {
			continue
		}
		if strings.TrimSpace(email.Body) == "" {
			continue
		}

		err := emit(Item{
			Text: email.Body,
			Metadata: map[string]string{
				"subject":    email.Subject,
				"recipient":  email.To,
				"message_id": email.MessageID,
				"date":       email.Date.Format("2006-01-02"),
			},
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func normalizeAddress(addr string) string {
	return strings.ToLower(strings.TrimSpace(addr))
}

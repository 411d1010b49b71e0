package smtp

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/emersion/go-message/mail"
	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
	"github.com/google/uuid"
)

// Sender submits outbound mail over SMTP. The engine invokes it only
// through the automation governor.
type Sender struct {
	Host     string
	Port     int
	Username string
	Password string
}

// NewSender creates a new SMTP sender
func NewSender(host string, port int, username, password string) *Sender {
	return &Sender{
		Host:     host,
		Port:     port,
		Username: username,
		Password: password,
	}
}

// SendEmail sends one message and returns the generated Message-Id as
// the provider id.
func (s *Sender) SendEmail(recipient, subject, body, draftID string) (bool, string, string) {
	if s.Host == "" {
		return false, "SMTP host not configured", ""
	}

	messageID := fmt.Sprintf("%s@%s", uuid.New().String(), s.Host)

	var buf bytes.Buffer
	var h mail.Header
	h.SetDate(time.Now())
	h.SetAddressList("From", []*mail.Address{{Address: s.Username}})
	h.SetAddressList("To", []*mail.Address{{Address: recipient}})
	h.SetSubject(subject)
	h.SetMsgIDList("Message-Id", []string{messageID})
	h.Set("X-Draft-Id", draftID)

	w, err := mail.CreateSingleInlineWriter(&buf, h)
	if err != nil {
		return false, fmt.Sprintf("failed to build message: %v", err), ""
	}
	if _, err := io.WriteString(w, body); err != nil {
		w.Close()
		return false, fmt.Sprintf("failed to write body: %v", err), ""
	}
	w.Close()

	addr := fmt.Sprintf("%s:%d", s.Host, s.Port)
	auth := sasl.NewPlainClient("", s.Username, s.Password)
	if err := smtp.SendMail(addr, auth, s.Username, []string{strings.TrimSpace(recipient)}, &buf); err != nil {
		return false, fmt.Sprintf("smtp send failed: %v", err), ""
	}

	return true, "sent", messageID
}

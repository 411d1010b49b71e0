package channel

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	personadomain "persona-backend/internal/persona/domain"

	"github.com/ledongthuc/pdf"
)

// DocumentAdapter ingests one uploaded file. PDFs go through text
// extraction; everything else is treated as plain text.
type DocumentAdapter struct {
	filename string
	data     []byte
}

// NewDocumentAdapter creates an adapter for a single upload
func NewDocumentAdapter(filename string, data []byte) *DocumentAdapter {
	return &DocumentAdapter{filename: filename, data: data}
}

func (a *DocumentAdapter) SourceType() string {
	return personadomain.SourceDocument
}

func (a *DocumentAdapter) TestConnection(ctx context.Context) (bool, string) {
	if len(a.data) == 0 {
		return false, "no document data"
	}
	return true, "ok"
}

func (a *DocumentAdapter) Fetch(ctx context.Context, emit Emit) error {
	var text string
	var err error

	if strings.EqualFold(filepath.Ext(a.filename), ".pdf") {
		text, err = extractPDFText(a.data)
		if err != nil {
			return fmt.Errorf("failed to extract PDF text: %w", err)
		}
	} else {
		text = string(a.data)
	}

	if strings.TrimSpace(text) == "" {
		return nil
	}

	return emit(Item{
		Text: text,
		Metadata: map[string]string{
			"filename": a.filename,
		},
	})
}

func extractPDFText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		sb.WriteString(text)
		sb.WriteString("\n\n")
	}
	return sb.String(), nil
}

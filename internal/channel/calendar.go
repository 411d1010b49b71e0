package channel

import (
	"context"
	"fmt"
	"os"
	"strings"

	personadomain "persona-backend/internal/persona/domain"

	ics "github.com/arran4/golang-ical"
)

// CalendarAdapter ingests the user's own calendar: event summary,
// description and location concatenated per event. Entries shorter than
// the minimum sample length are discarded downstream.
type CalendarAdapter struct {
	icsPath string
}

// NewCalendarAdapter creates a new calendar adapter
func NewCalendarAdapter(icsPath string) *CalendarAdapter {
	return &CalendarAdapter{icsPath: icsPath}
}

func (a *CalendarAdapter) SourceType() string {
	return personadomain.SourceCalendar
}

func (a *CalendarAdapter) TestConnection(ctx context.Context) (bool, string) {
	if _, err := os.Stat(a.icsPath); err != nil {
		return false, fmt.Sprintf("ics file not readable: %v", err)
	}
	return true, "ok"
}

func (a *CalendarAdapter) Fetch(ctx context.Context, emit Emit) error {
	f, err := os.Open(a.icsPath)
	if err != nil {
		return fmt.Errorf("failed to open calendar file: %w", err)
	}
	defer f.Close()

	cal, err := ics.ParseCalendar(f)
	if err != nil {
		return fmt.Errorf("failed to parse calendar: %w", err)
	}

	for _, event := range cal.Events() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		var parts []string
		for _, prop := range []ics.ComponentProperty{
			ics.ComponentPropertySummary,
			ics.ComponentPropertyDescription,
			ics.ComponentPropertyLocation,
		} {
			if p := event.GetProperty(prop); p != nil && strings.TrimSpace(p.Value) != "" {
				parts = append(parts, p.Value)
			}
		}
		if len(parts) == 0 {
			continue
		}

		text := strings.Join(parts, "\n")
		if len(text) < personadomain.MinSampleChars {
			continue
		}

		metadata := map[string]string{}
		if uid := event.Id(); uid != "" {
			metadata["event_uid"] = uid
		}

		if err := emit(Item{Text: text, Metadata: metadata}); err != nil {
			return err
		}
	}
	return nil
}

package feed

import (
	"fmt"
	"io"
	"time"

	"github.com/emersion/go-ical"

	"github.com/uniplanner/core/internal/domain/entities"
)

// MimeType is the content type of an iCalendar feed.
const MimeType = "text/calendar"

// WriteCalendar encodes projected schedule events as an iCalendar feed of
// all-day events, one VEVENT per task.
func WriteCalendar(w io.Writer, name string, events []entities.ShareEvent) error {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, "-//uniplanner//calendar feed//EN")
	if name != "" {
		cal.Props.SetText("X-WR-CALNAME", name)
	}

	now := time.Now().UTC()
	for _, e := range events {
		if e.Date.IsZero() {
			continue
		}

		event := ical.NewEvent()
		event.Props.SetText(ical.PropUID, fmt.Sprintf("task-%d@uniplanner", e.ID))
		event.Props.SetDateTime(ical.PropDateTimeStamp, now)
		event.Props.SetText(ical.PropSummary, e.Title)
		event.Props.SetText(ical.PropCategories, e.Course)
		if e.Color != "" {
			event.Props.SetText("COLOR", e.Color)
		}
		if e.Tag != "" {
			event.Props.SetText(ical.PropDescription, e.Tag)
		}
		if e.Completed {
			event.Props.SetText(ical.PropStatus, "COMPLETED")
		}

		start := ical.NewProp(ical.PropDateTimeStart)
		start.SetValueType(ical.ValueDate)
		start.Value = e.Date.In(time.UTC).Format("20060102")
		event.Props.Set(start)

		cal.Children = append(cal.Children, event.Component)
	}

	return ical.NewEncoder(w).Encode(cal)
}

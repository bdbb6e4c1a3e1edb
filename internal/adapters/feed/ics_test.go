package feed

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uniplanner/core/internal/domain/entities"
)

func TestWriteCalendar(t *testing.T) {
	events := []entities.ShareEvent{
		{
			ID:     1,
			Title:  "Essay",
			Course: "English",
			Color:  "#112233",
			Tag:    "writing",
			Date:   entities.Date{Year: 2025, Month: time.March, Day: 4},
		},
		{
			ID:        2,
			Title:     "Lab",
			Course:    "Chemistry",
			Date:      entities.Date{Year: 2025, Month: time.March, Day: 5},
			Completed: true,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCalendar(&buf, "My Schedule", events))

	out := buf.String()
	assert.Contains(t, out, "BEGIN:VCALENDAR")
	assert.Contains(t, out, "END:VCALENDAR")
	assert.Contains(t, out, "X-WR-CALNAME:My Schedule")
	assert.Equal(t, 2, strings.Count(out, "BEGIN:VEVENT"))

	assert.Contains(t, out, "UID:task-1@uniplanner")
	assert.Contains(t, out, "SUMMARY:Essay")
	assert.Contains(t, out, "CATEGORIES:English")
	assert.Contains(t, out, "COLOR:#112233")
	assert.Contains(t, out, "DESCRIPTION:writing")
	assert.Contains(t, out, "DTSTART;VALUE=DATE:20250304")

	assert.Contains(t, out, "STATUS:COMPLETED")
	assert.Contains(t, out, "DTSTART;VALUE=DATE:20250305")
}

func TestWriteCalendarSkipsDatelessEvents(t *testing.T) {
	events := []entities.ShareEvent{
		{ID: 1, Title: "No date", Course: "Math"},
		{ID: 2, Title: "Dated", Course: "Math", Date: entities.Date{Year: 2025, Month: time.March, Day: 4}},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCalendar(&buf, "", events))

	out := buf.String()
	assert.Equal(t, 1, strings.Count(out, "BEGIN:VEVENT"))
	assert.NotContains(t, out, "No date")
}

func TestWriteCalendarEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCalendar(&buf, "Empty", nil))

	out := buf.String()
	assert.Contains(t, out, "BEGIN:VCALENDAR")
	assert.NotContains(t, out, "BEGIN:VEVENT")
}

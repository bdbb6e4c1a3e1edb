package entities

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateOfIgnoresUTCOffset(t *testing.T) {
	// The same local calendar day expressed in different zones must yield
	// equal dates.
	mst := time.FixedZone("MST", -7*3600)
	utc := time.UTC

	d1 := DateOf(time.Date(2025, time.February, 24, 23, 30, 0, 0, mst))
	d2 := DateOf(time.Date(2025, time.February, 24, 0, 15, 0, 0, utc))

	assert.True(t, d1.Equal(d2))
	assert.Equal(t, "2025-02-24", d1.String())
}

func TestDateIsNotTimestampEquality(t *testing.T) {
	// 2025-02-24T23:30-07:00 is 2025-02-25T06:30Z; day classification must
	// follow the local fields, not the instant.
	mst := time.FixedZone("MST", -7*3600)
	local := time.Date(2025, time.February, 24, 23, 30, 0, 0, mst)

	assert.Equal(t, Date{2025, time.February, 24}, DateOf(local))
	assert.Equal(t, Date{2025, time.February, 25}, DateOf(local.UTC()))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-04-10")
	require.NoError(t, err)
	assert.Equal(t, Date{2025, time.April, 10}, d)

	_, err = ParseDate("04/10/2025")
	assert.Error(t, err)
}

func TestDateAt(t *testing.T) {
	d := Date{2025, time.April, 10}

	deadline, err := d.At("23:59", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, time.April, 10, 23, 59, 0, 0, time.UTC), deadline)

	_, err = d.At("25:00", time.UTC)
	assert.Error(t, err)
}

func TestDateArithmetic(t *testing.T) {
	d := Date{2025, time.February, 27}

	assert.Equal(t, Date{2025, time.March, 1}, d.AddDays(2))
	assert.Equal(t, 2, d.DaysUntil(Date{2025, time.March, 1}))
	assert.Equal(t, -1, d.DaysUntil(Date{2025, time.February, 26}))
	assert.True(t, d.Before(Date{2025, time.March, 1}))
	assert.True(t, d.After(Date{2025, time.January, 31}))
}

func TestDateJSON(t *testing.T) {
	type wrapper struct {
		Due Date `json:"due_date"`
	}

	data, err := json.Marshal(wrapper{Due: Date{2025, time.April, 10}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"due_date":"2025-04-10"}`, string(data))

	var w wrapper
	require.NoError(t, json.Unmarshal([]byte(`{"due_date":"2025-04-10"}`), &w))
	assert.Equal(t, Date{2025, time.April, 10}, w.Due)

	require.NoError(t, json.Unmarshal([]byte(`{"due_date":null}`), &w))
	assert.True(t, w.Due.IsZero())
}

func TestTaskDueWithinBounds(t *testing.T) {
	today := Date{2025, time.February, 24}

	tests := []struct {
		name string
		due  Date
		want bool
	}{
		{"today is excluded", today, false},
		{"tomorrow", today.AddDays(1), true},
		{"day seven is included", today.AddDays(7), true},
		{"day eight is out", today.AddDays(8), false},
		{"past", today.AddDays(-1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := Task{Text: "x", DueDate: tt.due}
			assert.Equal(t, tt.want, task.DueWithin(today, 7))
		})
	}

	unset := Task{Text: "x"}
	assert.False(t, unset.DueWithin(today, 7))
}

func TestTaskPatchApplyTo(t *testing.T) {
	deadline := time.Date(2025, time.April, 10, 23, 59, 0, 0, time.UTC)
	task := Task{ID: 1, Text: "old", Course: "CPSC 481", Tag: "lab"}

	text := "new"
	completed := true
	patch := TaskPatch{Text: &text, Completed: &completed, Deadline: &deadline}
	patch.ApplyTo(&task)

	assert.Equal(t, "new", task.Text)
	assert.True(t, task.Completed)
	assert.Equal(t, &deadline, task.Deadline)
	// Unpatched fields stay.
	assert.Equal(t, "CPSC 481", task.Course)
	assert.Equal(t, "lab", task.Tag)

	assert.False(t, patch.IsEmpty())
	assert.True(t, (&TaskPatch{}).IsEmpty())
}

func TestCompletionPercent(t *testing.T) {
	assert.Equal(t, float64(0), CompletionPercent(0, 0))
	assert.Equal(t, float64(50), CompletionPercent(1, 2))
	assert.Equal(t, float64(100), CompletionPercent(5, 5))
}

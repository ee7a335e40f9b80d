package printer_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"

	"github.com/Zacy-Sokach/DayFlow/internal/api"
	"github.com/Zacy-Sokach/DayFlow/internal/printer"
	"github.com/Zacy-Sokach/DayFlow/internal/schedule"
)

func init() {
	color.NoColor = true
}

func TestLayout(t *testing.T) {
	layout := schedule.Assign([]schedule.Activity{
		{ID: "a", Title: "Focus", StartTime: "09:00", EndTime: "10:00", Tags: schedule.StringList{"work", "deep"}, Status: schedule.StatusInProgress},
		{ID: "b", Title: "Standup", StartTime: "09:30", EndTime: "09:45", Days: schedule.StringList{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"}},
	}, time.Monday)

	var buf bytes.Buffer
	printer.Layout(&buf, "Monday", layout, 9*60+35)
	out := buf.String()

	assert.Contains(t, out, "Monday")
	assert.Contains(t, out, "TRACK")
	assert.Contains(t, out, "09:00–10:00")
	assert.Contains(t, out, "work, deep")
	assert.Contains(t, out, "In Progress")
	assert.Contains(t, out, "Weekdays")
	assert.Contains(t, out, "Scheduled")
	assert.Contains(t, out, "2 activities on 2 tracks")
	assert.Equal(t, 2, bytes.Count(buf.Bytes(), []byte("▶")))
}

func TestLayoutEmpty(t *testing.T) {
	var buf bytes.Buffer
	printer.Layout(&buf, "Sunday", schedule.Layout{}, 0)
	assert.Contains(t, buf.String(), "no activities")
}

func TestFutures(t *testing.T) {
	var buf bytes.Buffer
	printer.Futures(&buf, []api.Future{
		{Title: "Baseline", TimeHorizon: "6 months", Summary: []string{"Steady progress", "More sleep"}, Details: "You keep **training** three times a week."},
		{Title: "Risk", Details: "Burnout if nothing changes."},
	})
	out := buf.String()

	assert.Contains(t, out, "Baseline (6 months)")
	assert.Contains(t, out, "Steady progress")
	assert.Contains(t, out, "You keep training three times a week.")
	assert.Contains(t, out, "Risk")
	assert.NotContains(t, out, "**")
}

func TestFuturesEmpty(t *testing.T) {
	var buf bytes.Buffer
	printer.Futures(&buf, nil)
	assert.Contains(t, buf.String(), "no predictions")
}

package schedule_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Zacy-Sokach/DayFlow/internal/schedule"
)

func TestParseClock(t *testing.T) {
	tests := map[string]struct {
		in  string
		exp int
	}{
		"regular time":        {in: "09:30", exp: 570},
		"midnight":              {in: "00:00", exp: 0},
		"end of day":            {in: "23:59", exp: 1439},
		"surrounding spaces":    {in: " 10:05 ", exp: 605},
		"missing minutes":       {in: "9", exp: 540},
		"seconds are ignored":   {in: "12:15:45", exp: 735},
		"empty string":          {in: "", exp: 0},
		"garbage":               {in: "abc", exp: 0},
		"garbage minutes":       {in: "10:xx", exp: 600},
		"garbage hours":         {in: "xx:15", exp: 15},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, test.exp, schedule.ParseClock(test.in))
		})
	}
}

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "00:00", schedule.FormatClock(0))
	assert.Equal(t, "09:05", schedule.FormatClock(545))
	assert.Equal(t, "23:59", schedule.FormatClock(1439))
	assert.Equal(t, "00:10", schedule.FormatClock(1450))
	assert.Equal(t, "23:50", schedule.FormatClock(-10))
}

func TestParseFormatRoundTrip(t *testing.T) {
	for m := 0; m < schedule.MinutesPerDay; m += 7 {
		assert.Equal(t, m, schedule.ParseClock(schedule.FormatClock(m)))
	}
}

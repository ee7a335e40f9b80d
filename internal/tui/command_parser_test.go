package tui

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandParser_Parse(t *testing.T) {
	p := NewCommandParser()

	tests := []struct {
		input string
		want  CommandType
		day   time.Weekday
	}{
		{"/clear", CommandTypeClear, 0},
		{"  /RESET ", CommandTypeClear, 0},
		{"/now", CommandTypeNow, 0},
		{"/today", CommandTypeNow, 0},
		{"/day saturday", CommandTypeDay, time.Saturday},
		{"/day Mon", CommandTypeDay, time.Monday},
		{"/help", CommandTypeHelp, 0},
		{"/q", CommandTypeQuit, 0},
		{"/day xyz", CommandTypeUnknown, 0},
		{"/day mo", CommandTypeUnknown, 0},
		{"/frobnicate", CommandTypeUnknown, 0},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			cmd := p.Parse(tt.input)
			require.NotNil(t, cmd)
			assert.Equal(t, tt.want, cmd.Type, FormatCommandType(cmd.Type))
			if tt.want == CommandTypeDay {
				assert.Equal(t, tt.day, cmd.Day)
			}
		})
	}
}

func TestCommandParser_PlainMessagesAreNotCommands(t *testing.T) {
	p := NewCommandParser()
	for _, input := range []string{"", "   ", "add lunch at noon", "clear my afternoon", "what about /day monday"} {
		assert.Nil(t, p.Parse(input), input)
	}
}

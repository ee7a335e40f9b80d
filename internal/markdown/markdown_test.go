package markdown_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Zacy-Sokach/DayFlow/internal/markdown"
)

func TestPlain(t *testing.T) {
	tests := map[string]struct {
		in  string
		exp string
	}{
		"plain text":       {in: "Lunch at noon.", exp: "Lunch at noon."},
		"emphasis removed": {in: "I'll add **lunch** at *12:00*.", exp: "I'll add lunch at 12:00."},
		"heading":          {in: "# Plan\n\nRest more.", exp: "Plan\n\nRest more."},
		"bullet list":      {in: "- Gym\n- Read", exp: "• Gym\n• Read"},
		"ordered list":     {in: "1. Wake up\n2. Stretch", exp: "1. Wake up\n2. Stretch"},
		"inline code":      {in: "Run `make`", exp: "Run make"},
		"link":             {in: "See [docs](https://example.com)", exp: "See docs (https://example.com)"},
		"code block":       {in: "```\nline one\nline two\n```", exp: "  line one\n  line two"},
		"empty":            {in: "", exp: ""},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, test.exp, markdown.Plain(test.in))
		})
	}
}

func TestRenderStyles(t *testing.T) {
	wrap := func(tag string) func(string) string {
		return func(s string) string { return "<" + tag + ">" + s + "</" + tag + ">" }
	}
	styles := markdown.Styles{Heading: wrap("h"), Strong: wrap("b"), Emph: wrap("i"), Code: wrap("c")}

	got := markdown.Render("## Week\n\nMove **gym** to *morning*, keep `09:00`.", styles)

	assert.Equal(t, "<h>Week</h>\n\nMove <b>gym</b> to <i>morning</i>, keep <c>09:00</c>.", got)
}

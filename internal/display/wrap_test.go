package display

import (
	"strings"
	"testing"

	"github.com/pixil98/go-testutil"
)

func TestCapitalize(t *testing.T) {
	tests := map[string]struct {
		in  string
		exp string
	}{
		"empty":      {in: "", exp: ""},
		"lower":      {in: "marco", exp: "Marco"},
		"already up": {in: "Polo", exp: "Polo"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			testutil.AssertEqual(t, "capitalized", Capitalize(tt.in), tt.exp)
		})
	}
}

func TestSpeech(t *testing.T) {
	tests := map[string]struct {
		name     string
		text     string
		expLines int
		expFirst string
	}{
		"short line": {
			name:     "marco",
			text:     "Polo ",
			expLines: 1,
			expFirst: "Marco: Polo",
		},
		"long line wraps": {
			name:     "Old Mann",
			text:     strings.Repeat("watch out for the zombies ", 6),
			expLines: 3,
			expFirst: "Old Mann: watch out for the zombies watch out for the",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			lines := strings.Split(Speech(tt.name, tt.text), "\n")
			testutil.AssertEqual(t, "lines", len(lines), tt.expLines)
			testutil.AssertEqual(t, "first line", lines[0], tt.expFirst)
			for _, l := range lines {
				if len(l) > DialogueWidth {
					t.Errorf("line %q longer than %d", l, DialogueWidth)
				}
			}
		})
	}
}

package tui

import (
	"strings"
	"testing"
)

func TestTruncateText(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"short", 10, "short"},
		{"a long subject name", 10, "a long ..."},
		{"abc", 0, ""},
		{"abcdef", 2, "ab"},
	}
	for _, tt := range tests {
		if got := truncateText(tt.in, tt.width); got != tt.want {
			t.Errorf("truncateText(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}

func TestWrapText(t *testing.T) {
	got := wrapText("one two three four", 9)
	want := "one two\nthree\nfour"
	if got != want {
		t.Errorf("wrapText = %q, want %q", got, want)
	}

	if got := wrapText("unbroken", 0); got != "unbroken" {
		t.Errorf("zero width should pass text through, got %q", got)
	}
}

func TestFormatDetail(t *testing.T) {
	got := formatDetail("Subject: ", "one two three four five", 20)
	lines := strings.Split(got, "\n")
	if len(lines) < 2 {
		t.Fatalf("expected wrapped output, got %q", got)
	}
	if !strings.HasPrefix(lines[0], "Subject: ") {
		t.Errorf("first line = %q, want label prefix", lines[0])
	}
	if !strings.HasPrefix(lines[1], strings.Repeat(" ", len("Subject: "))) {
		t.Errorf("continuation line %q not indented to the label width", lines[1])
	}
}

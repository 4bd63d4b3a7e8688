package models

import (
	"strings"
	"testing"
	"time"
)

func TestTruncate(t *testing.T) {
	cases := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"this is longer", 7, "this is..."},
		{"", 5, ""},
	}
	for _, tc := range cases {
		if got := Truncate(tc.in, tc.n); got != tc.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tc.in, tc.n, got, tc.want)
		}
	}
}

func TestTruncateMultibyte(t *testing.T) {
	// Truncation counts characters, not bytes.
	in := strings.Repeat("あ", 40)
	got := Truncate(in, 30)
	if got != strings.Repeat("あ", 30)+"..." {
		t.Errorf("Truncate multibyte = %q", got)
	}
}

func TestDocumentSummary(t *testing.T) {
	now := time.Now()
	doc := Document{
		ID:        42,
		Text:      strings.Repeat("a", PreviewLength+20),
		Embedding: []float32{1, 2},
		CreatedAt: now,
	}
	s := doc.Summary()
	if s.ID != 42 || !s.CreatedAt.Equal(now) {
		t.Errorf("summary = %+v", s)
	}
	if s.Preview != strings.Repeat("a", PreviewLength)+"..." {
		t.Errorf("preview = %q", s.Preview)
	}
}

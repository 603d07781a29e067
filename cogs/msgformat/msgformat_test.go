package msgformat

import (
	"strings"
	"testing"
)

func TestCompileCaches(t *testing.T) {
	c := New()

	re1, err := c.compile(`^https?://`)
	if err != nil {
		t.Fatalf("Error compiling pattern - %s", err.Error())
	}
	re2, err := c.compile(`^https?://`)
	if err != nil {
		t.Fatalf("Error compiling pattern - %s", err.Error())
	}
	if re1 != re2 {
		t.Error("second compile returned a different regexp, cache miss")
	}

	if !re1.MatchString("https://example.com") {
		t.Error("pattern should match a link")
	}
	if re1.MatchString("just chatting") {
		t.Error("pattern should not match plain text")
	}
}

func TestCompileBadPattern(t *testing.T) {
	c := New()
	if _, err := c.compile(`](`); err == nil {
		t.Error("expected an error for a bad pattern")
	}
}

func TestRejectionNotice(t *testing.T) {
	r := rule{Pattern: `^https?://`, Explanation: "posts here must start with a link"}
	got := rejectionNotice(r, "hello world")

	if !strings.Contains(got, "posts here must start with a link") {
		t.Errorf("notice missing explanation: %q", got)
	}
	if !strings.Contains(got, "hello world") {
		t.Errorf("notice missing original content: %q", got)
	}
}

func TestRejectionNoticeFallsBackToPattern(t *testing.T) {
	r := rule{Pattern: `^\[\w+\]`}
	got := rejectionNotice(r, "no tag")
	if !strings.Contains(got, r.Pattern) {
		t.Errorf("notice missing pattern fallback: %q", got)
	}
}

func TestParseChannelMention(t *testing.T) {
	if got := parseChannelMention("<#42>"); got != "42" {
		t.Errorf("parseChannelMention = %q, want %q", got, "42")
	}
	if got := parseChannelMention("general"); got != "" {
		t.Errorf("parseChannelMention on a name = %q, want empty", got)
	}
}

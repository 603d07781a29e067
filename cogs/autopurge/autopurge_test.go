package autopurge

import (
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/google/go-cmp/cmp"
)

func TestParseAge(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"90m", 90 * time.Minute, false},
		{"12h", 12 * time.Hour, false},
		{"7d", 7 * 24 * time.Hour, false},
		{"1d", 24 * time.Hour, false},
		{"", 0, true},
		{"sevendays", 0, true},
		{"7x", 0, true},
	}
	for _, tt := range tests {
		got, err := parseAge(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseAge(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("parseAge(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseChannelMention(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"<#123456789>", "123456789"},
		{"987654321", "987654321"},
		{"<#>", ""},
		{"#general", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := parseChannelMention(tt.in); got != tt.want {
			t.Errorf("parseChannelMention(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSplitExpired(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	cutoff := now.Add(-24 * time.Hour)
	bulkCutoff := now.Add(-bulkDeleteMaxAge)

	msg := func(id string, age time.Duration, pinned bool) *discordgo.Message {
		return &discordgo.Message{ID: id, Timestamp: now.Add(-age), Pinned: pinned}
	}

	msgs := []*discordgo.Message{
		// Too young to delete.
		msg("fresh", time.Hour, false),
		// Old enough, young enough for the bulk endpoint.
		msg("old", 48*time.Hour, false),
		// Past the bulk window, deleted singly.
		msg("ancient", 20*24*time.Hour, false),
		// Pinned messages are never deleted.
		msg("pinned", 48*time.Hour, true),
		// Exactly at the cutoff is kept.
		msg("boundary", 24*time.Hour, false),
	}

	bulk, single := splitExpired(msgs, cutoff, bulkCutoff)

	if diff := cmp.Diff([]string{"old"}, bulk); diff != "" {
		t.Errorf("bulk mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"ancient"}, single); diff != "" {
		t.Errorf("single mismatch (-want +got):\n%s", diff)
	}
}

package streaks

import (
	"testing"
	"time"
)

func TestAdvanceFirstSighting(t *testing.T) {
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	st := state{Target: "bikeshed", LastSeen: start}

	now := start.Add(2 * time.Hour)
	st, broke := advance(st, now)

	if broke {
		t.Error("first sighting must not announce a record")
	}
	if st.RecordSeconds != int64((2 * time.Hour).Seconds()) {
		t.Errorf("RecordSeconds = %d, want %d", st.RecordSeconds, int64((2*time.Hour).Seconds()))
	}
	if !st.LastSeen.Equal(now) {
		t.Errorf("LastSeen = %v, want %v", st.LastSeen, now)
	}
	if st.Sightings != 1 {
		t.Errorf("Sightings = %d, want 1", st.Sightings)
	}
}

func TestAdvanceBreaksRecord(t *testing.T) {
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	st := state{
		Target:        "bikeshed",
		LastSeen:      start,
		RecordSeconds: int64((24 * time.Hour).Seconds()),
		Sightings:     3,
	}

	now := start.Add(48 * time.Hour)
	st, broke := advance(st, now)

	if !broke {
		t.Error("a longer gap should break the record")
	}
	if st.RecordSeconds != int64((48 * time.Hour).Seconds()) {
		t.Errorf("RecordSeconds = %d, want %d", st.RecordSeconds, int64((48*time.Hour).Seconds()))
	}
}

func TestAdvanceKeepsRecord(t *testing.T) {
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	st := state{
		Target:        "bikeshed",
		LastSeen:      start,
		RecordSeconds: int64((24 * time.Hour).Seconds()),
		Sightings:     3,
	}

	st, broke := advance(st, start.Add(time.Hour))

	if broke {
		t.Error("a shorter gap should not break the record")
	}
	if st.RecordSeconds != int64((24 * time.Hour).Seconds()) {
		t.Errorf("RecordSeconds = %d, want unchanged", st.RecordSeconds)
	}
	if st.Sightings != 4 {
		t.Errorf("Sightings = %d, want 4", st.Sightings)
	}
}

func TestMentions(t *testing.T) {
	tests := []struct {
		content string
		target  string
		want    bool
	}{
		{"we should paint the bikeshed", "bikeshed", true},
		{"BIKESHED again?!", "bikeshed", true},
		{"bikeshedding", "bikeshed", false},
		{"nothing to see", "bikeshed", false},
		{"anything", "", false},
	}
	for _, tt := range tests {
		if got := mentions(tt.content, tt.target); got != tt.want {
			t.Errorf("mentions(%q, %q) = %v, want %v", tt.content, tt.target, got, tt.want)
		}
	}
}

func TestFmtDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{42 * time.Second, "42s"},
		{5 * time.Minute, "5m"},
		{3*time.Hour + 20*time.Minute, "3h 20m"},
		{50*time.Hour + 7*time.Minute, "2d 2h 7m"},
		{24 * time.Hour, "1d"},
	}
	for _, tt := range tests {
		if got := fmtDuration(tt.d); got != tt.want {
			t.Errorf("fmtDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

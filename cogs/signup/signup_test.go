package signup

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseOpenArgs(t *testing.T) {
	tests := []struct {
		args  []string
		name  string
		limit int
	}{
		{[]string{"raid-night"}, "raid-night", 0},
		{[]string{"raid-night", "20"}, "raid-night", 20},
		{[]string{"raid", "night", "20"}, "raid night", 20},
		{[]string{"2024"}, "2024", 0},
		{[]string{"movie", "night"}, "movie night", 0},
	}
	for _, tt := range tests {
		name, limit := parseOpenArgs(tt.args)
		if name != tt.name || limit != tt.limit {
			t.Errorf("parseOpenArgs(%v) = (%q, %d), want (%q, %d)",
				tt.args, name, limit, tt.name, tt.limit)
		}
	}
}

func TestJoinEvent(t *testing.T) {
	ev := event{Name: "raid", Limit: 2, Open: true}

	ev, res := joinEvent(ev, entry{ID: "1", Name: "ann"})
	if res != joined {
		t.Fatalf("first join = %v, want joined", res)
	}
	ev, res = joinEvent(ev, entry{ID: "2", Name: "bob"})
	if res != joined {
		t.Fatalf("second join = %v, want joined", res)
	}

	// Roster is full, third lands on the waitlist.
	ev, res = joinEvent(ev, entry{ID: "3", Name: "cam"})
	if res != waitlisted {
		t.Fatalf("third join = %v, want waitlisted", res)
	}
	if len(ev.Roster) != 2 || len(ev.Waitlist) != 1 {
		t.Fatalf("roster/waitlist = %d/%d, want 2/1", len(ev.Roster), len(ev.Waitlist))
	}

	// Duplicate joins are refused, whether rostered or waitlisted.
	if _, res = joinEvent(ev, entry{ID: "1"}); res != alreadySigned {
		t.Errorf("duplicate roster join = %v, want alreadySigned", res)
	}
	if _, res = joinEvent(ev, entry{ID: "3"}); res != alreadySigned {
		t.Errorf("duplicate waitlist join = %v, want alreadySigned", res)
	}
}

func TestJoinEventClosed(t *testing.T) {
	ev := event{Name: "raid", Open: false}
	if _, res := joinEvent(ev, entry{ID: "1"}); res != eventClosed {
		t.Errorf("join on closed event = %v, want eventClosed", res)
	}
}

func TestJoinEventUnlimited(t *testing.T) {
	ev := event{Name: "raid", Open: true}
	for i := 0; i < 50; i++ {
		var res joinResult
		ev, res = joinEvent(ev, entry{ID: string(rune('a' + i))})
		if res != joined {
			t.Fatalf("join %d = %v, want joined", i, res)
		}
	}
	if len(ev.Waitlist) != 0 {
		t.Errorf("unlimited event grew a waitlist of %d", len(ev.Waitlist))
	}
}

func TestLeaveEventPromotesWaitlist(t *testing.T) {
	ev := event{
		Name:     "raid",
		Limit:    2,
		Open:     true,
		Roster:   []entry{{ID: "1", Name: "ann"}, {ID: "2", Name: "bob"}},
		Waitlist: []entry{{ID: "3", Name: "cam"}, {ID: "4", Name: "dee"}},
	}

	ev, removed, promoted := leaveEvent(ev, "1")
	if !removed {
		t.Fatal("leave should have removed the member")
	}
	if promoted == nil || promoted.ID != "3" {
		t.Fatalf("promoted = %+v, want first waitlisted", promoted)
	}

	wantRoster := []entry{{ID: "2", Name: "bob"}, {ID: "3", Name: "cam"}}
	if diff := cmp.Diff(wantRoster, ev.Roster); diff != "" {
		t.Errorf("roster mismatch (-want +got):\n%s", diff)
	}
	wantWaitlist := []entry{{ID: "4", Name: "dee"}}
	if diff := cmp.Diff(wantWaitlist, ev.Waitlist); diff != "" {
		t.Errorf("waitlist mismatch (-want +got):\n%s", diff)
	}
}

func TestLeaveEventFromWaitlist(t *testing.T) {
	ev := event{
		Name:     "raid",
		Open:     true,
		Roster:   []entry{{ID: "1"}},
		Waitlist: []entry{{ID: "2"}},
	}

	ev, removed, promoted := leaveEvent(ev, "2")
	if !removed {
		t.Fatal("leave should have removed the waitlisted member")
	}
	if promoted != nil {
		t.Errorf("promoted = %+v, want nil", promoted)
	}
	if len(ev.Roster) != 1 || len(ev.Waitlist) != 0 {
		t.Errorf("roster/waitlist = %d/%d, want 1/0", len(ev.Roster), len(ev.Waitlist))
	}
}

func TestLeaveEventNotSigned(t *testing.T) {
	ev := event{Name: "raid", Open: true}
	if _, removed, _ := leaveEvent(ev, "nobody"); removed {
		t.Error("leaving without signing up should report not removed")
	}
}

package sortinghat

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/google/go-cmp/cmp"
)

func TestPick(t *testing.T) {
	tests := []struct {
		counts []int
		want   int
	}{
		{[]int{3, 1, 2}, 1},
		{[]int{0, 0, 0}, 0},
		{[]int{2, 2, 1}, 2},
		{[]int{1, 1, 1}, 0}, // ties go to the earliest house
		{[]int{5}, 0},
	}
	for _, tt := range tests {
		if got := pick(tt.counts); got != tt.want {
			t.Errorf("pick(%v) = %d, want %d", tt.counts, got, tt.want)
		}
	}
}

func TestPickStaysBalancedOverBulkRun(t *testing.T) {
	counts := []int{4, 0, 1}
	// Simulate sorting 10 members the way sortAll does.
	for i := 0; i < 10; i++ {
		counts[pick(counts)]++
	}
	want := []int{5, 5, 5}
	if diff := cmp.Diff(want, counts); diff != "" {
		t.Errorf("final counts mismatch (-want +got):\n%s", diff)
	}
}

func member(userID string, roles ...string) *discordgo.Member {
	return &discordgo.Member{User: &discordgo.User{ID: userID}, Roles: roles}
}

func TestHouseOf(t *testing.T) {
	roleIDs := []string{"h1", "h2"}

	if got := houseOf(member("u", "x", "h2"), roleIDs); got != 1 {
		t.Errorf("houseOf = %d, want 1", got)
	}
	if got := houseOf(member("u", "x"), roleIDs); got != -1 {
		t.Errorf("houseOf without house = %d, want -1", got)
	}
}

func TestTallyHouses(t *testing.T) {
	roleIDs := []string{"h1", "h2", "h3"}
	members := []*discordgo.Member{
		member("a", "h1"),
		member("b", "h1", "other"),
		member("c", "h3"),
		member("d"),
	}

	got := tallyHouses(members, roleIDs)
	want := []int{2, 0, 1}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("tally mismatch (-want +got):\n%s", diff)
	}
}

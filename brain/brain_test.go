package brain

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type testRecord struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func openTestBrain(t *testing.T) *Brain {
	t.Helper()
	b, err := Open(filepath.Join(t.TempDir(), "brain.ldb"))
	if err != nil {
		t.Fatalf("Error opening brain - %s", err.Error())
	}
	t.Cleanup(func() { b.Close() })
	return b
}

func TestPutGet(t *testing.T) {
	b := openTestBrain(t)

	want := testRecord{Name: "raid-night", Count: 3}
	if err := b.Put("signup", "g1", "event", want); err != nil {
		t.Fatalf("Error putting value - %s", err.Error())
	}

	var got testRecord
	if err := b.Get("signup", "g1", "event", &got); err != nil {
		t.Fatalf("Error getting value - %s", err.Error())
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("roundtrip mismatch (-want +got):\n%s", diff)
	}
}

func TestGetMissing(t *testing.T) {
	b := openTestBrain(t)

	var got testRecord
	if err := b.Get("signup", "g1", "event", &got); err != ErrNotFound {
		t.Errorf("Get on missing key = %v, want ErrNotFound", err)
	}
}

func TestGuildsAreIsolated(t *testing.T) {
	b := openTestBrain(t)

	if err := b.Put("signup", "g1", "event", testRecord{Name: "a"}); err != nil {
		t.Fatalf("Error putting value - %s", err.Error())
	}

	var got testRecord
	if err := b.Get("signup", "g2", "event", &got); err != ErrNotFound {
		t.Errorf("other guild's Get = %v, want ErrNotFound", err)
	}
}

func TestDelete(t *testing.T) {
	b := openTestBrain(t)

	if err := b.Put("streaks", "g1", "state", testRecord{}); err != nil {
		t.Fatalf("Error putting value - %s", err.Error())
	}
	if err := b.Delete("streaks", "g1", "state"); err != nil {
		t.Fatalf("Error deleting value - %s", err.Error())
	}

	var got testRecord
	if err := b.Get("streaks", "g1", "state", &got); err != ErrNotFound {
		t.Errorf("Get after Delete = %v, want ErrNotFound", err)
	}

	// Deleting again is fine.
	if err := b.Delete("streaks", "g1", "state"); err != nil {
		t.Errorf("second Delete = %v, want nil", err)
	}
}

func TestKeys(t *testing.T) {
	b := openTestBrain(t)

	for _, ch := range []string{"200", "100", "300"} {
		if err := b.Put("autopurge", "g1", ch, testRecord{}); err != nil {
			t.Fatalf("Error putting value - %s", err.Error())
		}
	}
	// Another cog's keys under the same guild must not leak in.
	if err := b.Put("msgformat", "g1", "999", testRecord{}); err != nil {
		t.Fatalf("Error putting value - %s", err.Error())
	}

	keys, err := b.Keys("autopurge", "g1")
	if err != nil {
		t.Fatalf("Error listing keys - %s", err.Error())
	}
	want := []string{"100", "200", "300"}
	if diff := cmp.Diff(want, keys); diff != "" {
		t.Errorf("keys mismatch (-want +got):\n%s", diff)
	}
}

package snapshot

import (
	"testing"
	"time"

	"tableflip.dev/daybook/pkg/plan"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	s := Open(t.TempDir())

	key := "agenda:week:2025-11-02:2025-11-08:"
	in := Payload{
		Tasks: []*plan.Task{
			{ID: "t1", Title: "standup", Date: "2025-11-05", StartTime: "09:00"},
		},
		SavedAt: time.Date(2025, time.November, 5, 10, 0, 0, 0, time.UTC),
	}
	if err := s.Save(key, in); err != nil {
		t.Fatalf("save: %v", err)
	}

	out, ok := s.Load(key)
	if !ok {
		t.Fatal("payload not found after save")
	}
	if len(out.Tasks) != 1 || out.Tasks[0].ID != "t1" {
		t.Fatalf("tasks lost in round trip: %#v", out.Tasks)
	}
	if !out.SavedAt.Equal(in.SavedAt) {
		t.Fatalf("saved-at changed: %v", out.SavedAt)
	}
}

func TestSaveStampsSavedAtWhenUnset(t *testing.T) {
	s := Open(t.TempDir())

	if err := s.Save("habits", Payload{}); err != nil {
		t.Fatalf("save: %v", err)
	}
	out, ok := s.Load("habits")
	if !ok {
		t.Fatal("payload missing")
	}
	if out.SavedAt.IsZero() {
		t.Fatal("SavedAt should be stamped on save")
	}
}

func TestLoadMissingKey(t *testing.T) {
	s := Open(t.TempDir())
	if _, ok := s.Load("agenda:day:2025-11-05:2025-11-05:"); ok {
		t.Fatal("expected miss for unknown key")
	}
}

func TestEraseRemovesPayload(t *testing.T) {
	s := Open(t.TempDir())

	if err := s.Save("habits", Payload{}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.Erase("habits"); err != nil {
		t.Fatalf("erase: %v", err)
	}
	if _, ok := s.Load("habits"); ok {
		t.Fatal("payload should be gone after erase")
	}
}

func TestNilStoreIsInert(t *testing.T) {
	var s *Store
	if err := s.Save("x", Payload{}); err != nil {
		t.Fatalf("nil save: %v", err)
	}
	if _, ok := s.Load("x"); ok {
		t.Fatal("nil store should never hit")
	}
}

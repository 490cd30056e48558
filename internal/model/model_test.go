package model

import "testing"

func TestMonthKey(t *testing.T) {
	tests := []struct {
		id, year int
		want     string
	}{
		{7, 2025, "2025-07"},
		{12, 2024, "2024-12"},
		{1, 2025, "2025-01"},
	}
	for _, tt := range tests {
		if got := MonthKey(tt.id, tt.year); got != tt.want {
			t.Errorf("MonthKey(%d, %d) = %q, want %q", tt.id, tt.year, got, tt.want)
		}
	}
}

func TestDefaultMonths(t *testing.T) {
	s := DefaultMonths()
	if len(s.Months) != 13 {
		t.Fatalf("got %d months, want 13", len(s.Months))
	}
	first, last := s.Months[0], s.Months[12]
	if first.DisplayName != "DEC 24" || first.Year != 2024 {
		t.Errorf("first bucket = %s %d", first.DisplayName, first.Year)
	}
	if last.DisplayName != "DEC 25" || last.Year != 2025 {
		t.Errorf("last bucket = %s %d", last.DisplayName, last.Year)
	}
	if s.SchemaVersion != SchemaVersion {
		t.Errorf("schema version = %d", s.SchemaVersion)
	}
	for _, m := range s.Months {
		if m.Memories == nil {
			t.Errorf("%s has nil memories", m.Key())
		}
		if m.Quote == "" || m.Color == "" {
			t.Errorf("%s missing presentation fields", m.Key())
		}
	}
}

func TestSnapshotMonthCompoundKey(t *testing.T) {
	s := DefaultMonths()
	dec24 := s.Month(12, 2024)
	dec25 := s.Month(12, 2025)
	if dec24 == nil || dec25 == nil {
		t.Fatal("december buckets missing")
	}
	if dec24 == dec25 {
		t.Error("two december years resolved to the same bucket")
	}
	if s.Month(12, 2030) != nil {
		t.Error("unknown year resolved to a bucket")
	}
}

func TestFindMemory(t *testing.T) {
	s := DefaultMonths()
	s.Months[3].Memories = []Memory{{ID: "x"}, {ID: "y"}}

	m, idx := s.FindMemory("y")
	if m == nil || idx != 1 {
		t.Fatalf("FindMemory(y) = %v, %d", m, idx)
	}
	if m.Key() != s.Months[3].Key() {
		t.Errorf("found in %s", m.Key())
	}

	if m, idx := s.FindMemory("nope"); m != nil || idx != -1 {
		t.Errorf("absent id resolved to %v, %d", m, idx)
	}
}

func TestNormalizeDedupesAndUpgrades(t *testing.T) {
	s := &Snapshot{Months: []MonthData{
		{ID: 1, Year: 2025, Memories: []Memory{{ID: "keep"}}},
		{ID: 1, Year: 2025, Memories: []Memory{{ID: "dropped"}}},
		{ID: 2, Year: 2025},
	}}
	s.Normalize()

	if len(s.Months) != 2 {
		t.Fatalf("got %d months after dedupe, want 2", len(s.Months))
	}
	if s.Months[0].Memories[0].ID != "keep" {
		t.Error("dedupe did not keep the first occurrence")
	}
	if s.Months[1].Memories == nil {
		t.Error("nil memories not replaced with empty slice")
	}
	if s.SchemaVersion != SchemaVersion {
		t.Errorf("schema version = %d, want %d", s.SchemaVersion, SchemaVersion)
	}
}

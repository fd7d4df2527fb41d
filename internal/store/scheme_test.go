package store

import (
	"errors"
	"testing"
)

func TestParseScheme(t *testing.T) {
	t.Parallel()
	tests := []struct {
		raw     string
		want    Scheme
		wantErr bool
	}{
		{"flat", SchemeFlat, false},
		{"parity-day", SchemeParityDay, false},
		{"group-tree", SchemeGroupTree, false},
		{"", SchemeGroupTree, false}, // default
		{" Group-Tree ", SchemeGroupTree, false},
		{"firestore-v4", "", true},
	}
	for _, tt := range tests {
		got, err := ParseScheme(tt.raw)
		if tt.wantErr {
			if !errors.Is(err, ErrUnsupportedScheme) {
				t.Fatalf("ParseScheme(%q): err = %v, want ErrUnsupportedScheme", tt.raw, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseScheme(%q) error: %v", tt.raw, err)
		}
		if got != tt.want {
			t.Fatalf("ParseScheme(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestDayKey(t *testing.T) {
	t.Parallel()
	tests := []struct {
		scheme Scheme
		slot   int
		want   string
	}{
		{SchemeFlat, 1, "monday"},
		{SchemeFlat, 7, "sunday"},
		{SchemeGroupTree, 1, "1"},
		{SchemeGroupTree, 7, "7"},
		// The parity-day layout numbers days Sunday-based.
		{SchemeParityDay, 1, "1"},
		{SchemeParityDay, 6, "6"},
		{SchemeParityDay, 7, "0"},
	}
	for _, tt := range tests {
		got, err := DayKey(tt.scheme, tt.slot)
		if err != nil {
			t.Fatalf("DayKey(%q, %d) error: %v", tt.scheme, tt.slot, err)
		}
		if got != tt.want {
			t.Fatalf("DayKey(%q, %d) = %q, want %q", tt.scheme, tt.slot, got, tt.want)
		}
	}
}

func TestDayKeyErrors(t *testing.T) {
	t.Parallel()
	if _, err := DayKey(SchemeFlat, 0); err == nil {
		t.Fatal("slot 0 must be rejected")
	}
	if _, err := DayKey(SchemeFlat, 8); err == nil {
		t.Fatal("slot 8 must be rejected")
	}
	if _, err := DayKey(Scheme("bogus"), 3); !errors.Is(err, ErrUnsupportedScheme) {
		t.Fatalf("unknown scheme: err = %v, want ErrUnsupportedScheme", err)
	}
}

func TestSlotForKeyRoundTrip(t *testing.T) {
	t.Parallel()
	for _, scheme := range []Scheme{SchemeFlat, SchemeParityDay, SchemeGroupTree} {
		for slot := 1; slot <= 7; slot++ {
			key, err := DayKey(scheme, slot)
			if err != nil {
				t.Fatalf("DayKey(%q, %d) error: %v", scheme, slot, err)
			}
			if got := slotForKey(scheme, key); got != slot {
				t.Fatalf("slotForKey(%q, %q) = %d, want %d", scheme, key, got, slot)
			}
		}
	}
	if got := slotForKey(SchemeGroupTree, "first_3"); got != 0 {
		t.Fatalf("non-day key should map to 0, got %d", got)
	}
}

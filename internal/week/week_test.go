package week

import (
	"testing"
	"time"
)

func TestMonday_AnchorsEveryWeekday(t *testing.T) {
	// 2025-01-06 is a Monday.
	want := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
	for d := 0; d < 7; d++ {
		got := Monday(want.AddDate(0, 0, d))
		if !got.Equal(want) {
			t.Fatalf("day offset %d: got %s, want %s", d, got, want)
		}
	}
}

func TestMonday_SundayBelongsToPrecedingMonday(t *testing.T) {
	sun := time.Date(2025, 1, 12, 15, 30, 0, 0, time.UTC)
	if got := Key(sun); got != "2025-01-06" {
		t.Fatalf("sunday key = %q, want 2025-01-06", got)
	}
}

func TestParse_RejectsNonMonday(t *testing.T) {
	if _, err := Parse("2025-01-07"); err == nil {
		t.Fatal("expected error for a Tuesday key")
	}
	if _, err := Parse("not-a-date"); err == nil {
		t.Fatal("expected error for garbage")
	}
	if _, err := Parse("2025-01-06"); err != nil {
		t.Fatalf("valid key rejected: %v", err)
	}
}

func TestNextPrev_RoundTrip(t *testing.T) {
	if got := Next("2025-01-06"); got != "2025-01-13" {
		t.Fatalf("Next = %q", got)
	}
	if got := Prev("2025-01-13"); got != "2025-01-06" {
		t.Fatalf("Prev = %q", got)
	}
	if got := Next("bogus"); got != "" {
		t.Fatalf("Next(bogus) = %q, want empty", got)
	}
}

func TestHorizon(t *testing.T) {
	keys := Horizon(time.Date(2025, 1, 8, 0, 0, 0, 0, time.UTC), 3)
	want := []string{"2025-01-06", "2025-01-13", "2025-01-20"}
	if len(keys) != len(want) {
		t.Fatalf("got %d keys, want %d", len(keys), len(want))
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("keys[%d] = %q, want %q", i, keys[i], want[i])
		}
	}
	if Horizon(time.Now(), 0) != nil {
		t.Fatal("zero horizon should be nil")
	}
}

package clock

import (
	"testing"
	"time"
	_ "time/tzdata"
)

func mustLoad(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	if err != nil {
		t.Fatalf("LoadLocation(%q) failed: %v", name, err)
	}
	return loc
}

func TestDayUsesCallerZone(t *testing.T) {
	t.Parallel()
	// 02:30 UTC is still the previous evening in New York.
	instant := time.Date(2026, 10, 14, 2, 30, 0, 0, time.UTC)
	cal := New(func() time.Time { return instant }, time.UTC)

	utc := cal.Day(nil)
	if utc.Today != "2026-10-14" || utc.Yesterday != "2026-10-13" {
		t.Errorf("UTC day = %s/%s", utc.Today, utc.Yesterday)
	}

	ny := cal.Day(mustLoad(t, "America/New_York"))
	if ny.Today != "2026-10-13" || ny.Yesterday != "2026-10-12" {
		t.Errorf("New York day = %s/%s", ny.Today, ny.Yesterday)
	}
}

func TestDayAcrossDST(t *testing.T) {
	t.Parallel()
	ny := mustLoad(t, "America/New_York")

	tests := []struct {
		name      string
		now       time.Time
		today     string
		yesterday string
	}{
		{"spring forward, just after midnight", time.Date(2026, 3, 9, 0, 30, 0, 0, ny), "2026-03-09", "2026-03-08"},
		{"spring forward day", time.Date(2026, 3, 8, 23, 59, 0, 0, ny), "2026-03-08", "2026-03-07"},
		{"fall back, just after midnight", time.Date(2026, 11, 2, 0, 10, 0, 0, ny), "2026-11-02", "2026-11-01"},
		{"fall back day, late", time.Date(2026, 11, 1, 23, 50, 0, 0, ny), "2026-11-01", "2026-10-31"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			day := Fixed(tt.now).Day(nil)
			if day.Today != tt.today {
				t.Errorf("Today = %s, want %s", day.Today, tt.today)
			}
			if day.Yesterday != tt.yesterday {
				t.Errorf("Yesterday = %s, want %s", day.Yesterday, tt.yesterday)
			}
		})
	}
}

func TestDaysBack(t *testing.T) {
	t.Parallel()
	day := Fixed(time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)).Day(nil)
	got := day.DaysBack(3)
	want := []string{"2026-03-01", "2026-02-28", "2026-02-27"}
	if len(got) != len(want) {
		t.Fatalf("DaysBack(3) = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("DaysBack(3)[%d] = %s, want %s", i, got[i], want[i])
		}
	}
	if day.DaysAgo(30) != "2026-01-31" {
		t.Errorf("DaysAgo(30) = %s", day.DaysAgo(30))
	}
}

func TestLoadLocationFallback(t *testing.T) {
	t.Parallel()
	if got := LoadLocation("", time.UTC); got != time.UTC {
		t.Errorf("empty name should fall back, got %v", got)
	}
	if got := LoadLocation("Not/AZone", time.UTC); got != time.UTC {
		t.Errorf("unknown name should fall back, got %v", got)
	}
	if got := LoadLocation("Europe/Berlin", time.UTC); got.String() != "Europe/Berlin" {
		t.Errorf("LoadLocation(Europe/Berlin) = %v", got)
	}
}

func TestParseDate(t *testing.T) {
	t.Parallel()
	if _, err := ParseDate("2026-10-14"); err != nil {
		t.Errorf("ParseDate valid failed: %v", err)
	}
	if _, err := ParseDate("14.10.2026"); err == nil {
		t.Error("expected error for wrong layout")
	}
}

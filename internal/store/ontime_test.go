package store

import (
	"math"
	"os"
	"strings"
	"testing"
	"time"
)

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.ParseInLocation("2006-01-02 15:04", value, time.Local)
	if err != nil {
		t.Fatal(err)
	}
	return ts
}

func TestDailyOnTime_BootedToday(t *testing.T) {
	now := mustTime(t, "2025-06-10 14:30")
	boot := mustTime(t, "2025-06-10 08:30")

	points := dailyOnTimeAt(now, 1, boot)

	if len(points) != 1 {
		t.Fatalf("expected 1 point, got %d", len(points))
	}
	if math.Abs(points[0].Hours-6.0) > 0.001 {
		t.Errorf("expected 6 hours since boot, got %.3f", points[0].Hours)
	}
}

func TestDailyOnTime_FullWindow(t *testing.T) {
	now := mustTime(t, "2025-06-10 06:00")
	boot := mustTime(t, "2025-06-07 18:00")

	points := dailyOnTimeAt(now, 5, boot)

	// 06-06: before boot; 06-07: boot day remainder; 06-08, 06-09: full days;
	// 06-10: since midnight.
	want := []float64{0, 6, 24, 24, 6}
	for i, w := range want {
		if math.Abs(points[i].Hours-w) > 0.001 {
			t.Errorf("day %d: expected %.1f hours, got %.3f", i, w, points[i].Hours)
		}
	}
}

func TestDailyOnTime_UnknownBoot(t *testing.T) {
	now := mustTime(t, "2025-06-10 06:00")

	points := dailyOnTimeAt(now, 3, time.Time{})

	for i, p := range points {
		if p.Hours != 0 {
			t.Errorf("day %d: expected 0 hours for unknown boot, got %.3f", i, p.Hours)
		}
	}
}

func TestDailyOnTime_Idempotent(t *testing.T) {
	now := mustTime(t, "2025-06-10 14:30")
	boot := mustTime(t, "2025-06-01 08:00")

	a := dailyOnTimeAt(now, 14, boot)
	b := dailyOnTimeAt(now, 14, boot)

	if len(a) != len(b) {
		t.Fatal("expected identical outputs")
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("day %d differs: %+v vs %+v", i, a[i], b[i])
		}
		if a[i].Hours < 0 || a[i].Hours > 24.0 {
			t.Errorf("day %d out of [0, 24]: %.3f", i, a[i].Hours)
		}
	}
}

func TestSaveDailyOnTime_UpsertAndSort(t *testing.T) {
	s := newTestStore(t)

	later := mustTime(t, "2025-06-10 00:00")
	earlier := mustTime(t, "2025-06-08 00:00")

	if err := s.SaveDailyOnTime(later, 5.5); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveDailyOnTime(earlier, 3.25); err != nil {
		t.Fatal(err)
	}
	// Same date again: replaces, no duplicate.
	if err := s.SaveDailyOnTime(later, 6.75); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(s.onTimePath)
	if err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	want := []string{
		onTimeHeader,
		"2025-06-08,3.25",
		"2025-06-10,6.75",
	}
	if len(lines) != len(want) {
		t.Fatalf("expected %d lines, got %d:\n%s", len(want), len(lines), data)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d: expected %q, got %q", i, want[i], lines[i])
		}
	}
}

func TestSaveDailyOnTime_SkipsIdenticalSave(t *testing.T) {
	s := newTestStore(t)

	day := mustTime(t, "2025-06-10 00:00")
	if err := s.SaveDailyOnTime(day, 5.5); err != nil {
		t.Fatal(err)
	}

	// Marker survives only if the identical save short-circuits.
	f, err := os.OpenFile(s.onTimePath, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.WriteString("1999-01-01,1.00\n"); err != nil {
		t.Fatal(err)
	}
	f.Close()

	if err := s.SaveDailyOnTime(day, 5.5); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(s.onTimePath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "1999-01-01") {
		t.Error("identical on-time save should have been skipped")
	}
}

func TestPersistedDailyOnTime_ZeroFilled(t *testing.T) {
	s := newTestStore(t)

	today := time.Now()
	if err := s.SaveDailyOnTime(today, 4.5); err != nil {
		t.Fatal(err)
	}

	points, err := s.PersistedDailyOnTime(3)
	if err != nil {
		t.Fatal(err)
	}
	if len(points) != 3 {
		t.Fatalf("expected 3 points, got %d", len(points))
	}
	if points[0].Hours != 0 || points[1].Hours != 0 {
		t.Error("expected zero-filled days without rows")
	}
	if math.Abs(points[2].Hours-4.5) > 0.001 {
		t.Errorf("expected 4.5 hours today, got %.3f", points[2].Hours)
	}
}

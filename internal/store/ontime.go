package store

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"
)

// DailyOnTime derives, for each day of the trailing window, how many hours
// the system was on, given the single last-boot timestamp. Pure computation,
// no file I/O. An unknown (zero) boot time yields a zero-filled window.
func (s *Store) DailyOnTime(days int, lastBoot time.Time) []DatePoint {
	return dailyOnTimeAt(s.now(), days, lastBoot)
}

func dailyOnTimeAt(now time.Time, days int, lastBoot time.Time) []DatePoint {
	result := emptyWindowAt(now, days)
	if lastBoot.IsZero() {
		return result
	}

	today := dateOnly(now)
	bootDay := dateOnly(lastBoot)

	for i := range result {
		day := result[i].Date
		var hours float64

		switch {
		case day.Before(bootDay):
			hours = 0
		case day.Equal(bootDay) && day.Equal(today):
			hours = now.Sub(lastBoot).Hours()
		case day.Equal(bootDay):
			hours = day.AddDate(0, 0, 1).Sub(lastBoot).Hours()
		case day.Before(today):
			hours = 24
		case day.Equal(today):
			hours = now.Sub(today).Hours()
		}

		result[i].Hours = math.Max(0, math.Min(hours, 24.0))
	}
	return result
}

// SaveDailyOnTime upserts the on-time ledger row for a date. The ledger stays
// sorted ascending by date with one row per date; the write is skipped when
// the value for that date matches the last save.
func (s *Store) SaveDailyOnTime(date time.Time, hours float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	day := dateOnly(date)
	if day.Equal(s.lastOnTimeDate) && math.Abs(hours-s.lastOnTimeHours) < 0.001 {
		return nil
	}

	entries, err := s.readOnTimeEntries()
	if err != nil {
		return err
	}
	entries[day.Format(dateLayout)] = hours

	dates := make([]string, 0, len(entries))
	for d := range entries {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	var b strings.Builder
	b.WriteString(onTimeHeader)
	b.WriteByte('\n')
	for _, d := range dates {
		b.WriteString(d)
		b.WriteByte(',')
		b.WriteString(formatMinutes(entries[d]))
		b.WriteByte('\n')
	}

	if err := s.writeFileAtomic(s.onTimePath, b.String()); err != nil {
		return err
	}

	s.lastOnTimeDate = day
	s.lastOnTimeHours = hours
	return nil
}

// PersistedDailyOnTime reads back the ledger for the trailing window,
// zero-filled for dates with no row.
func (s *Store) PersistedDailyOnTime(days int) ([]DatePoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.readOnTimeEntries()
	if err != nil {
		return nil, err
	}

	result := s.emptyWindow(days)
	for i := range result {
		if hours, ok := entries[result[i].Date.Format(dateLayout)]; ok {
			result[i].Hours = hours
		}
	}
	return result, nil
}

func (s *Store) readOnTimeEntries() (map[string]float64, error) {
	entries := make(map[string]float64)

	f, err := os.Open(s.onTimePath)
	if err != nil {
		if os.IsNotExist(err) {
			return entries, nil
		}
		return nil, fmt.Errorf("open %s: %w", s.onTimePath, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	first := true
	for {
		fields, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			s.logger.Warn("skipping malformed on-time row", "error", err)
			continue
		}
		if first {
			first = false
			continue // header
		}
		if len(fields) != 2 {
			continue
		}
		if _, err := time.ParseInLocation(dateLayout, fields[0], time.Local); err != nil {
			continue
		}
		hours, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			continue
		}
		entries[fields[0]] = hours
	}
	return entries, nil
}

package store

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	usageFileName  = "usage_data.csv"
	onTimeFileName = "daily_system_on_time.csv"

	usageHeader  = "Date,ProcessName,ProcessId,Category,ActiveTimeMinutes,IdleTimeMinutes"
	onTimeHeader = "Date,TotalOnTimeHours"

	dateLayout = "2006-01-02"
)

// DatePoint is one aggregate value for a calendar day.
type DatePoint struct {
	Date  time.Time `json:"date"`
	Hours float64   `json:"hours"`
}

// ProcessUsage is the per-process input to SaveProcessData, always recorded
// under today's date.
type ProcessUsage struct {
	Name          string
	PID           int32
	Category      string
	ActiveMinutes float64
	IdleMinutes   float64
	TotalMinutes  float64
}

type usageRow struct {
	Date          time.Time
	Name          string
	PID           int32
	Category      string
	ActiveMinutes float64
	IdleMinutes   float64
}

type savedEntry struct {
	pid     int32
	minutes float64
}

// Store persists process-day usage records and the daily system on-time
// ledger as CSV files under dataDir. Both files are created with a header
// row on first use. Saves are read-modify-write full rewrites; the daily
// volume is small enough that this stays cheap.
type Store struct {
	dataDir    string
	usagePath  string
	onTimePath string
	logger     *slog.Logger

	mu sync.Mutex

	// Caches guarding against redundant rewrites of unchanged data.
	lastSavedUsage  []savedEntry
	lastOnTimeDate  time.Time
	lastOnTimeHours float64

	now func() time.Time
}

// New creates a Store rooted at dataDir, creating the directory and
// header-only files if they are missing.
func New(dataDir string, logger *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	s := &Store{
		dataDir:         dataDir,
		usagePath:       filepath.Join(dataDir, usageFileName),
		onTimePath:      filepath.Join(dataDir, onTimeFileName),
		logger:          logger,
		lastOnTimeHours: -1,
		now:             time.Now,
	}

	if err := s.ensureFile(s.usagePath, usageHeader); err != nil {
		return nil, err
	}
	if err := s.ensureFile(s.onTimePath, onTimeHeader); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Store) ensureFile(path, header string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if err := os.WriteFile(path, []byte(header+"\n"), 0644); err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	s.logger.Info("created empty data file", "path", path)
	return nil
}

// SaveProcessData upserts one row per (today, process name). Records with
// less than one minute of elapsed time are skipped. Rows for other dates are
// preserved untouched; a row for today with the same name is replaced. The
// write is skipped entirely when the incoming set matches the last save.
func (s *Store) SaveProcessData(records []ProcessUsage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sameAsLastSave(records) {
		return nil
	}

	rows, err := s.readUsageRows()
	if err != nil {
		return err
	}

	today := dateOnly(s.now())

	for _, rec := range records {
		if rec.TotalMinutes < 1 {
			continue
		}

		row := usageRow{
			Date:          today,
			Name:          rec.Name,
			PID:           rec.PID,
			Category:      rec.Category,
			ActiveMinutes: rec.ActiveMinutes,
			IdleMinutes:   rec.IdleMinutes,
		}

		replaced := false
		for i := range rows {
			if rows[i].Date.Equal(today) && strings.EqualFold(rows[i].Name, rec.Name) {
				rows[i] = row
				replaced = true
				break
			}
		}
		if !replaced {
			rows = append(rows, row)
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Date.Before(rows[j].Date)
	})

	if err := s.writeUsageRows(rows); err != nil {
		return err
	}

	s.lastSavedUsage = make([]savedEntry, len(records))
	for i, rec := range records {
		s.lastSavedUsage[i] = savedEntry{pid: rec.PID, minutes: rec.TotalMinutes}
	}

	s.logger.Debug("saved usage data", "rows", len(rows))
	return nil
}

func (s *Store) sameAsLastSave(records []ProcessUsage) bool {
	if s.lastSavedUsage == nil || len(s.lastSavedUsage) != len(records) {
		return false
	}
	for i, rec := range records {
		if rec.PID != s.lastSavedUsage[i].pid || rec.TotalMinutes != s.lastSavedUsage[i].minutes {
			return false
		}
	}
	return true
}

// HistoricalDataForProcess returns one point per day over the trailing window
// (today inclusive), summing active+idle minutes as hours for rows whose name
// matches case-insensitively. Days without rows are zero-filled.
func (s *Store) HistoricalDataForProcess(name string, days int) ([]DatePoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.readUsageRows()
	if err != nil {
		return nil, err
	}

	result := s.emptyWindow(days)
	for _, row := range rows {
		if !strings.EqualFold(row.Name, name) {
			continue
		}
		if i := windowIndex(result, row.Date); i >= 0 {
			result[i].Hours += (row.ActiveMinutes + row.IdleMinutes) / 60.0
		}
	}
	return result, nil
}

// TotalActiveTimeForCategory returns per-day active hours for a category over
// the trailing window, capped at 24 hours per day.
func (s *Store) TotalActiveTimeForCategory(cat string, days int) ([]DatePoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.readUsageRows()
	if err != nil {
		return nil, err
	}

	result := s.emptyWindow(days)
	for _, row := range rows {
		if !strings.EqualFold(row.Category, cat) {
			continue
		}
		if i := windowIndex(result, row.Date); i >= 0 {
			result[i].Hours += row.ActiveMinutes / 60.0
		}
	}
	capHours(result)
	return result, nil
}

// TotalUsage returns per-day total usage hours across all processes over the
// trailing window, capped at 24 hours per day.
func (s *Store) TotalUsage(days int) ([]DatePoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.readUsageRows()
	if err != nil {
		return nil, err
	}

	result := s.emptyWindow(days)
	for _, row := range rows {
		if i := windowIndex(result, row.Date); i >= 0 {
			result[i].Hours += (row.ActiveMinutes + row.IdleMinutes) / 60.0
		}
	}
	capHours(result)
	return result, nil
}

func (s *Store) emptyWindow(days int) []DatePoint {
	return emptyWindowAt(s.now(), days)
}

func emptyWindowAt(now time.Time, days int) []DatePoint {
	start := dateOnly(now).AddDate(0, 0, -(days - 1))
	result := make([]DatePoint, days)
	for i := range result {
		result[i] = DatePoint{Date: start.AddDate(0, 0, i)}
	}
	return result
}

func windowIndex(window []DatePoint, date time.Time) int {
	d := dateOnly(date)
	for i := range window {
		if window[i].Date.Equal(d) {
			return i
		}
	}
	return -1
}

func capHours(points []DatePoint) {
	for i := range points {
		points[i].Hours = math.Min(points[i].Hours, 24.0)
	}
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func (s *Store) readUsageRows() ([]usageRow, error) {
	f, err := os.Open(s.usagePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open %s: %w", s.usagePath, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	var rows []usageRow
	first := true
	for {
		fields, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			s.logger.Warn("skipping malformed usage row", "error", err)
			continue
		}
		if first {
			first = false
			continue // header
		}
		if len(fields) < 6 {
			continue
		}

		date, err := time.ParseInLocation(dateLayout, fields[0], time.Local)
		if err != nil {
			s.logger.Warn("skipping usage row with bad date", "value", fields[0])
			continue
		}
		pid, err := strconv.ParseInt(fields[2], 10, 32)
		if err != nil {
			continue
		}
		active, errA := strconv.ParseFloat(fields[4], 64)
		idle, errI := strconv.ParseFloat(fields[5], 64)
		if errA != nil || errI != nil {
			s.logger.Warn("skipping usage row with bad minutes", "name", fields[1])
			continue
		}

		rows = append(rows, usageRow{
			Date:          date,
			Name:          fields[1],
			PID:           int32(pid),
			Category:      fields[3],
			ActiveMinutes: active,
			IdleMinutes:   idle,
		})
	}
	return rows, nil
}

func (s *Store) writeUsageRows(rows []usageRow) error {
	var b strings.Builder
	b.WriteString(usageHeader)
	b.WriteByte('\n')
	for _, row := range rows {
		b.WriteString(row.Date.Format(dateLayout))
		b.WriteByte(',')
		b.WriteString(quoteField(row.Name))
		b.WriteByte(',')
		b.WriteString(strconv.FormatInt(int64(row.PID), 10))
		b.WriteByte(',')
		b.WriteString(row.Category)
		b.WriteByte(',')
		b.WriteString(formatMinutes(row.ActiveMinutes))
		b.WriteByte(',')
		b.WriteString(formatMinutes(row.IdleMinutes))
		b.WriteByte('\n')
	}
	return s.writeFileAtomic(s.usagePath, b.String())
}

// writeFileAtomic writes through a temp file and renames it into place so a
// crash mid-write never leaves a truncated data file.
func (s *Store) writeFileAtomic(path, content string) error {
	tempPath := path + ".tmp"

	if err := os.WriteFile(tempPath, []byte(content), 0644); err != nil {
		return fmt.Errorf("write %s: %w", tempPath, err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("rename %s: %w", tempPath, err)
	}
	return nil
}

// quoteField always quotes, doubling inner quotes, matching the on-disk
// format for ProcessName.
func quoteField(v string) string {
	return `"` + strings.ReplaceAll(v, `"`, `""`) + `"`
}

// formatMinutes renders a fixed two-decimal, locale-independent number.
func formatMinutes(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

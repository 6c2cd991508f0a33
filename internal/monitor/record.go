package monitor

import (
	"time"

	"github.com/rarescolibaba/timethread/internal/store"
)

// activeRatio is the fixed share of foreground time counted as active; the
// rest is idle. Real idle detection is out of scope.
const activeRatio = 0.7

// DaySample holds cumulative usage hours for one calendar date. A process
// history carries at most one sample per date; today's sample is overwritten
// on every poll.
type DaySample struct {
	Date  time.Time `json:"date"`
	Hours float64   `json:"hours"`
}

// TrackedProcess is one actively observed OS process. Instances are owned
// exclusively by the Monitor; external consumers only ever see clones.
type TrackedProcess struct {
	PID         int32         `json:"pid"`
	DisplayName string        `json:"display_name"` // window title if available, else image name
	Executable  string        `json:"executable"`
	Category    string        `json:"category"`
	StartTime   time.Time     `json:"start_time"`
	TimeToday   time.Duration `json:"time_today"`
	History     []DaySample   `json:"history"`
}

// ActiveTime estimates the actively-used share of today's time.
func (p *TrackedProcess) ActiveTime() time.Duration {
	return time.Duration(float64(p.TimeToday) * activeRatio)
}

// IdleTime estimates the idle share of today's time.
func (p *TrackedProcess) IdleTime() time.Duration {
	return p.TimeToday - p.ActiveTime()
}

// Clone returns an independent deep copy safe to hold across polls.
func (p *TrackedProcess) Clone() TrackedProcess {
	clone := *p
	clone.History = make([]DaySample, len(p.History))
	copy(clone.History, p.History)
	return clone
}

// usage converts the record into its persisted per-day form.
func (p *TrackedProcess) usage() store.ProcessUsage {
	return store.ProcessUsage{
		Name:          p.DisplayName,
		PID:           p.PID,
		Category:      p.Category,
		ActiveMinutes: p.ActiveTime().Minutes(),
		IdleMinutes:   p.IdleTime().Minutes(),
		TotalMinutes:  p.TimeToday.Minutes(),
	}
}

func sampleIndex(history []DaySample, date time.Time) int {
	for i := range history {
		if history[i].Date.Equal(date) {
			return i
		}
	}
	return -1
}

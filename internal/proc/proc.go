package proc

import (
	"context"
	"os/user"
	"time"

	"github.com/shirou/gopsutil/v4/process"
)

// Info describes one running OS process as seen by a single enumeration.
type Info struct {
	PID         int32
	Name        string // executable image name
	WindowTitle string // main window title; empty when the platform exposes none
	SessionID   int32  // 0 marks the system session
	StartTime   time.Time
}

// Source enumerates the live process set. The system-backed implementation
// talks to the OS; tests substitute fakes.
type Source interface {
	Processes() ([]Info, error)
}

// SystemSource enumerates processes through gopsutil. Start-time queries are
// bounded by queryTimeout so one unresponsive process cannot stall a scan;
// on timeout or error the start time falls back to now.
type SystemSource struct {
	queryTimeout time.Duration
	currentUser  string
}

func NewSystemSource(queryTimeout time.Duration) *SystemSource {
	s := &SystemSource{queryTimeout: queryTimeout}
	if u, err := user.Current(); err == nil {
		s.currentUser = u.Username
	}
	return s
}

func (s *SystemSource) Processes() ([]Info, error) {
	procs, err := process.Processes()
	if err != nil {
		return nil, err
	}

	infos := make([]Info, 0, len(procs))
	for _, p := range procs {
		name, err := p.Name()
		if err != nil || name == "" {
			// Process exited mid-enumeration or access was denied; skip it.
			continue
		}

		infos = append(infos, Info{
			PID:       p.Pid,
			Name:      name,
			SessionID: s.sessionID(p),
			StartTime: s.startTime(p),
		})
	}
	return infos, nil
}

// sessionID approximates the Windows session split on platforms without one:
// processes owned by the invoking user get session 1, everything else
// (system accounts, inaccessible processes) session 0.
func (s *SystemSource) sessionID(p *process.Process) int32 {
	owner, err := p.Username()
	if err != nil {
		return 0
	}
	if s.currentUser != "" && owner == s.currentUser {
		return 1
	}
	return 0
}

func (s *SystemSource) startTime(p *process.Process) time.Time {
	ctx, cancel := context.WithTimeout(context.Background(), s.queryTimeout)
	defer cancel()

	ms, err := p.CreateTimeWithContext(ctx)
	if err != nil {
		return time.Now()
	}
	return time.UnixMilli(ms)
}

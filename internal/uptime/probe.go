package uptime

import (
	"log/slog"
	"time"

	"github.com/shirou/gopsutil/v4/host"
)

// Probe answers boot-time and uptime queries. Failures never reach callers;
// an unknown boot time is reported as the zero time.
type Probe struct {
	logger *slog.Logger
}

func NewProbe(logger *slog.Logger) *Probe {
	return &Probe{logger: logger}
}

// LastBootTime returns the system's last boot timestamp, or the zero time if
// the OS query fails.
func (p *Probe) LastBootTime() time.Time {
	epoch, err := host.BootTime()
	if err != nil {
		p.logger.Warn("boot time query failed", "error", err)
		return time.Time{}
	}
	return time.Unix(int64(epoch), 0)
}

// SystemUptime returns the elapsed time since lastBoot, or zero when the boot
// time is unknown.
func SystemUptime(lastBoot time.Time) time.Duration {
	if lastBoot.IsZero() {
		return 0
	}
	return time.Since(lastBoot)
}

package monitor

import (
	"context"
	"log/slog"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/rarescolibaba/timethread/internal/category"
	"github.com/rarescolibaba/timethread/internal/proc"
	"github.com/rarescolibaba/timethread/internal/store"
)

const (
	DefaultPollInterval  = 5 * time.Second
	DefaultFlushInterval = 60 * time.Second

	// Historical-sample deltas below this many hours are treated as noise.
	sampleEpsilonHours = 0.001
)

// UsageStore is the persistence surface the Monitor flushes to.
type UsageStore interface {
	SaveProcessData(records []store.ProcessUsage) error
	DailyOnTime(days int, lastBoot time.Time) []store.DatePoint
	SaveDailyOnTime(date time.Time, hours float64) error
}

// BootProbe reports the system's last boot time, zero when unknown.
type BootProbe interface {
	LastBootTime() time.Time
}

// Options tune polling cadence and process qualification.
type Options struct {
	PollInterval  time.Duration
	FlushInterval time.Duration
	// Allowlist names qualify for tracking even without a window title.
	Allowlist []string
	// Exclude names are never tracked, window title or not.
	Exclude []string
}

// Monitor polls the OS process list, maintains the tracked index, classifies
// new processes, fans out change events and drives periodic persistence.
// All shared state sits behind one coarse lock; the tracked set is small.
type Monitor struct {
	source     proc.Source
	classifier *category.Classifier
	store      UsageStore
	probe      BootProbe
	logger     *slog.Logger

	pollInterval  time.Duration
	flushInterval time.Duration
	allowlist     map[string]struct{}
	exclude       map[string]struct{}

	mu         sync.Mutex
	procs      map[int32]*TrackedProcess
	startTimes map[int32]time.Time
	dirty      bool
	gen        uint64

	observers *registry

	cancel   context.CancelFunc
	wg       sync.WaitGroup
	stopOnce sync.Once

	now func() time.Time
}

func New(source proc.Source, classifier *category.Classifier, st UsageStore, probe BootProbe, opts Options, logger *slog.Logger) *Monitor {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.FlushInterval <= 0 {
		opts.FlushInterval = DefaultFlushInterval
	}

	return &Monitor{
		source:        source,
		classifier:    classifier,
		store:         st,
		probe:         probe,
		logger:        logger,
		pollInterval:  opts.PollInterval,
		flushInterval: opts.FlushInterval,
		allowlist:     lowerSet(opts.Allowlist),
		exclude:       lowerSet(opts.Exclude),
		procs:         make(map[int32]*TrackedProcess),
		startTimes:    make(map[int32]time.Time),
		observers:     newRegistry(logger),
		now:           time.Now,
	}
}

// markDirtyLocked flags unpersisted state and bumps the change generation,
// which flush uses to detect mutations that raced a store write.
func (m *Monitor) markDirtyLocked() {
	m.dirty = true
	m.gen++
}

func lowerSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[strings.ToLower(n)] = struct{}{}
	}
	return set
}

// Start runs an initial poll and launches the poll and flush loops. The
// loops stop when ctx is cancelled or Stop is called.
func (m *Monitor) Start(ctx context.Context) {
	ctx, m.cancel = context.WithCancel(ctx)

	m.Poll()

	m.wg.Add(2)
	go m.pollLoop(ctx)
	go m.flushLoop(ctx)

	m.logger.Info("monitor started",
		"poll_interval", m.pollInterval,
		"flush_interval", m.flushInterval,
	)
}

// Stop is a one-shot terminal transition: it cancels both loops, waits for
// them, and performs one final unconditional flush.
func (m *Monitor) Stop() {
	m.stopOnce.Do(func() {
		if m.cancel != nil {
			m.cancel()
		}
		m.wg.Wait()
		m.flush(true)
		m.logger.Info("monitor stopped")
	})
}

func (m *Monitor) pollLoop(ctx context.Context) {
	defer m.wg.Done()

	ticker := time.NewTicker(m.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.Poll()
		case <-ctx.Done():
			return
		}
	}
}

func (m *Monitor) flushLoop(ctx context.Context) {
	defer m.wg.Done()

	ticker := time.NewTicker(m.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.flush(false)
		case <-ctx.Done():
			return
		}
	}
}

// Poll enumerates the live process set and diffs it against the tracked
// index. An enumeration failure skips the whole cycle without touching
// state; recovery is automatic on the next tick.
func (m *Monitor) Poll() {
	infos, err := m.source.Processes()
	if err != nil {
		m.logger.Warn("process enumeration failed, skipping poll", "error", err)
		return
	}

	now := m.now()
	today := dateOnly(now)
	current := make(map[int32]struct{})

	var added, updated []TrackedProcess

	m.mu.Lock()
	for _, info := range infos {
		if !m.qualifies(info) {
			continue
		}
		current[info.PID] = struct{}{}

		rec, tracked := m.procs[info.PID]
		if !tracked {
			added = append(added, m.addLocked(info, now, today))
			continue
		}
		if m.updateLocked(rec, info, now, today) {
			updated = append(updated, rec.Clone())
		}
	}

	var removed []int32
	for pid := range m.procs {
		if _, ok := current[pid]; !ok {
			removed = append(removed, pid)
		}
	}
	for _, pid := range removed {
		delete(m.procs, pid)
		delete(m.startTimes, pid)
	}
	if len(removed) > 0 {
		m.markDirtyLocked()
	}
	m.mu.Unlock()

	// Delivery happens outside the lock so re-entrant observers cannot
	// deadlock. Removals go last within the cycle.
	for _, p := range added {
		m.observers.notifyAdded(p)
	}
	for _, p := range updated {
		m.observers.notifyUpdated(p)
	}
	for _, pid := range removed {
		m.observers.notifyRemoved(pid)
	}
}

// qualifies applies the tracking rule: never session 0 or excluded names;
// otherwise a window title or an allowlist entry is required.
func (m *Monitor) qualifies(info proc.Info) bool {
	name := strings.ToLower(info.Name)
	if _, ok := m.exclude[name]; ok {
		return false
	}
	if info.SessionID == 0 {
		return false
	}
	if info.WindowTitle != "" {
		return true
	}
	_, ok := m.allowlist[name]
	return ok
}

func (m *Monitor) addLocked(info proc.Info, now, today time.Time) TrackedProcess {
	start := info.StartTime
	if start.IsZero() || start.After(now) {
		start = now
	}

	name := info.WindowTitle
	if name == "" {
		name = info.Name
	}

	elapsed := now.Sub(start)
	rec := &TrackedProcess{
		PID:         info.PID,
		DisplayName: name,
		Executable:  info.Name,
		Category:    m.classifier.Classify(info.Name),
		StartTime:   start,
		TimeToday:   elapsed,
		History:     []DaySample{{Date: today, Hours: elapsed.Hours()}},
	}

	m.procs[info.PID] = rec
	m.startTimes[info.PID] = start
	m.markDirtyLocked()
	return rec.Clone()
}

func (m *Monitor) updateLocked(rec *TrackedProcess, info proc.Info, now, today time.Time) bool {
	changed := false

	// Backfill the display name once a window title shows up.
	if rec.DisplayName == rec.Executable && info.WindowTitle != "" {
		rec.DisplayName = info.WindowTitle
		changed = true
	}

	elapsed := now.Sub(m.startTimes[rec.PID])
	if elapsed != rec.TimeToday {
		rec.TimeToday = elapsed
		changed = true
	}

	hours := elapsed.Hours()
	if i := sampleIndex(rec.History, today); i >= 0 {
		if math.Abs(rec.History[i].Hours-hours) > sampleEpsilonHours {
			rec.History[i].Hours = hours
			changed = true
		}
	} else {
		rec.History = append(rec.History, DaySample{Date: today, Hours: hours})
		changed = true
	}

	if changed {
		m.markDirtyLocked()
	}
	return changed
}

// Snapshot returns independent copies of all tracked records. The lock is
// held only for the copy.
func (m *Monitor) Snapshot() []TrackedProcess {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := make([]TrackedProcess, 0, len(m.procs))
	for _, rec := range m.procs {
		snapshot = append(snapshot, rec.Clone())
	}
	return snapshot
}

// SetCategory records a user override and re-classifies every tracked
// process whose display name matches the pattern. Observers get one batched
// notification, not one event per process.
func (m *Monitor) SetCategory(pattern, cat string) {
	m.classifier.SetOverride(pattern, cat)

	var updated []TrackedProcess
	m.mu.Lock()
	for _, rec := range m.procs {
		if category.MatchesPattern(rec.DisplayName, pattern) {
			rec.Category = cat
			updated = append(updated, rec.Clone())
		}
	}
	if len(updated) > 0 {
		m.markDirtyLocked()
	}
	m.mu.Unlock()

	if len(updated) > 0 {
		m.observers.notifyBatchUpdated(updated)
	}
}

// Subscribe registers an observer and immediately replays an Added event for
// every currently tracked process, so a late subscriber reaches consistency
// without racing the next poll. The returned id is the unsubscribe handle.
func (m *Monitor) Subscribe(o Observer) string {
	id := m.observers.subscribe(o)
	for _, p := range m.Snapshot() {
		m.observers.deliver("replay", func() { o.ProcessAdded(p) })
	}
	return id
}

// Unsubscribe removes a subscription. Unknown ids are ignored.
func (m *Monitor) Unsubscribe(id string) {
	m.observers.unsubscribe(id)
}

// flush persists the current snapshot and today's system on-time. Without
// force, a clean dirty flag short-circuits the whole write. The flag is only
// cleared after every write succeeded, so a failed flush retries with the
// same pending data next cycle.
func (m *Monitor) flush(force bool) {
	m.mu.Lock()
	if !m.dirty && !force {
		m.mu.Unlock()
		return
	}
	gen := m.gen
	records := make([]store.ProcessUsage, 0, len(m.procs))
	for _, rec := range m.procs {
		records = append(records, rec.usage())
	}
	m.mu.Unlock()

	if err := m.store.SaveProcessData(records); err != nil {
		m.logger.Error("failed to save usage data", "error", err)
		return
	}

	if lastBoot := m.probe.LastBootTime(); !lastBoot.IsZero() {
		points := m.store.DailyOnTime(1, lastBoot)
		if len(points) > 0 {
			if err := m.store.SaveDailyOnTime(dateOnly(m.now()), points[0].Hours); err != nil {
				m.logger.Error("failed to save daily on-time", "error", err)
				return
			}
		}
	}

	// A poll that mutated state while the store write was in flight bumped
	// the generation; its dirt belongs to the next flush, not this one.
	m.mu.Lock()
	if m.gen == gen {
		m.dirty = false
	}
	m.mu.Unlock()

	m.logger.Debug("flushed usage data", "records", len(records))
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// Package autoreset runs the periodic check that fires each tab's daily
// reset or rollover once the configured cutoff time has passed. Execution
// is bounded to once per tab per local calendar day by a persisted
// last-run-date string.
package autoreset

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/fairflowapp/fairflow/internal/badge"
	"github.com/fairflowapp/fairflow/internal/lifecycle"
	"github.com/fairflowapp/fairflow/internal/schedule"
	"github.com/fairflowapp/fairflow/models"
)

const (
	// DefaultInterval matches the 30-second check cadence of the original
	// page timer.
	DefaultInterval = 30 * time.Second

	dateLayout = "2006-01-02"
)

// Scheduler evaluates per-tab auto-reset eligibility and invokes the
// lifecycle engine when all gates pass.
type Scheduler struct {
	engine   *lifecycle.Engine
	counter  *badge.Counter
	interval time.Duration
	now      func() time.Time
	logf     func(format string, args ...interface{})
}

// NewScheduler builds a scheduler over the engine and badge counter.
func NewScheduler(engine *lifecycle.Engine, counter *badge.Counter) *Scheduler {
	return &Scheduler{
		engine:   engine,
		counter:  counter,
		interval: DefaultInterval,
		now:      time.Now,
		logf:     func(string, ...interface{}) {},
	}
}

// WithClock overrides the time source. Used by tests.
func (s *Scheduler) WithClock(now func() time.Time) *Scheduler {
	s.now = now
	return s
}

// WithInterval overrides the check cadence.
func (s *Scheduler) WithInterval(d time.Duration) *Scheduler {
	if d > 0 {
		s.interval = d
	}
	return s
}

// WithLogger sets a verbose-log sink.
func (s *Scheduler) WithLogger(logf func(format string, args ...interface{})) *Scheduler {
	if logf != nil {
		s.logf = logf
	}
	return s
}

// Run checks all tabs immediately, then on every tick until the context is
// cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	s.CheckAll()
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.CheckAll()
		}
	}
}

// CheckAll evaluates every tab. A failure in one tab never prevents the
// others from being checked.
func (s *Scheduler) CheckAll() {
	for _, tab := range models.AllTabs() {
		if _, err := s.CheckTab(tab); err != nil {
			s.logf("auto-reset check failed for tab %s: %v", tab, err)
		}
	}
}

// CheckTab evaluates one tab's gates and executes its reset or rollover
// when they all pass. It reports whether an execution happened.
func (s *Scheduler) CheckTab(tab models.Tab) (bool, error) {
	// Yearly has no auto-reset path.
	if tab == models.TabYearly {
		return false, nil
	}

	now := s.now()
	data := s.engine.Data()

	window, ok := data.ReadAlertWindows()[tab]
	if !ok || !window.AutoResetEnabled {
		return false, nil
	}

	cutoff, err := ParseCutoff(window.AutoResetTime)
	if err != nil {
		return false, nil // unconfigured or malformed cutoff: gate closed
	}
	if now.Hour()*60+now.Minute() < cutoff {
		return false, nil
	}

	today := now.Format(dateLayout)
	state := data.ReadAutoResetState()
	if state[tab].LastRunDate == today {
		return false, nil
	}

	switch tab {
	case models.TabWeekly, models.TabMonthly:
		// Nothing scheduled today means a rollover would be a no-op;
		// skip entirely so it does not mark itself as run.
		if !s.anyCatalogDueToday(tab, now) {
			return false, nil
		}
		if _, err := s.engine.RolloverToday(tab); err != nil {
			return false, err
		}
	case models.TabOpening, models.TabClosing:
		// A full reset only fires once the whole list is finished.
		if s.counter.Count(tab) != 0 {
			return false, nil
		}
		if err := s.engine.ResetTab(tab); err != nil {
			return false, err
		}
	}

	state[tab] = models.AutoResetState{LastRunDate: today}
	if err := data.WriteAutoResetState(state); err != nil {
		return true, err
	}
	s.logf("auto-reset executed for tab %s on %s", tab, today)
	return true, nil
}

func (s *Scheduler) anyCatalogDueToday(tab models.Tab, ref time.Time) bool {
	for _, entry := range s.engine.Data().ReadCatalog()[tab] {
		if schedule.DueToday(tab, entry, ref) {
			return true
		}
	}
	return false
}

// ParseCutoff converts a "HH:MM" cutoff string to minutes since midnight.
func ParseCutoff(v string) (int, error) {
	parts := strings.SplitN(strings.TrimSpace(v), ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("expected HH:MM, got %q", v)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("bad hour in %q: %w", v, err)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("bad minute in %q: %w", v, err)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("time out of range: %q", v)
	}
	return h*60 + m, nil
}

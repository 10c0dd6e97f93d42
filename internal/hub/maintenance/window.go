// Package maintenance decides whether a scheduled deployment may install
// now, later, or not at all. A window is a recurring cron schedule with a
// fixed duration, evaluated in the window's own timezone.
package maintenance

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// Eligibility is the outcome of evaluating a window against an instant.
type Eligibility int

const (
	// Before: the next window has not opened yet. Download may proceed,
	// installation must wait.
	Before Eligibility = iota

	// Within: the instant falls inside an open window; installation is
	// permitted.
	Within

	// AfterDone: the schedule has no further occurrences; the action will
	// never become installable.
	AfterDone
)

func (e Eligibility) String() string {
	switch e {
	case Before:
		return "BEFORE"
	case Within:
		return "WITHIN"
	case AfterDone:
		return "AFTER_DONE"
	}
	return fmt.Sprintf("Eligibility(%d)", int(e))
}

// parser accepts Quartz-style schedules with an optional seconds field,
// matching what fleet operators configure upstream.
var parser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow,
)

// Window is a recurring installation window. Immutable once attached to an
// action.
type Window struct {
	// Schedule is a cron expression for the window start instants.
	Schedule string `json:"schedule"`

	// Duration is how long each window stays open.
	Duration time.Duration `json:"duration"`

	// Timezone is the IANA zone the schedule is evaluated in.
	Timezone string `json:"timezone"`
}

// Validate checks the window at assignment time so evaluation later cannot
// fail on malformed input.
func (w *Window) Validate() error {
	if w == nil {
		return nil
	}
	if _, err := parser.Parse(w.Schedule); err != nil {
		return fmt.Errorf("invalid maintenance schedule %q: %w", w.Schedule, err)
	}
	if w.Duration <= 0 {
		return fmt.Errorf("maintenance window duration must be positive, got %s", w.Duration)
	}
	if _, err := time.LoadLocation(w.Timezone); err != nil {
		return fmt.Errorf("invalid maintenance timezone %q: %w", w.Timezone, err)
	}
	return nil
}

// Evaluate places now relative to the window. A nil window means immediate
// eligibility.
func Evaluate(w *Window, now time.Time) Eligibility {
	if w == nil {
		return Within
	}

	sched, err := parser.Parse(w.Schedule)
	if err != nil {
		return AfterDone
	}

	loc, err := time.LoadLocation(w.Timezone)
	if err != nil {
		loc = time.UTC
	}
	n := now.In(loc)

	// The next occurrence at or after now-duration is the only candidate
	// that can still contain now.
	start := sched.Next(n.Add(-w.Duration))
	if start.IsZero() {
		// cron gives up after a bounded search horizon: recurrence exhausted.
		return AfterDone
	}
	if !start.After(n) {
		return Within
	}
	return Before
}

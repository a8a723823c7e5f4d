package models

import (
	"errors"
	"fmt"
)

// ErrNoTabSelected is returned when an operation requires a tab but none
// was given.
var ErrNoTabSelected = errors.New("no tab selected")

// Tab identifies one of the five recurring task lists. Each tab has
// independent storage buckets and its own scheduling rule.
type Tab string

const (
	TabOpening Tab = "opening"
	TabClosing Tab = "closing"
	TabWeekly  Tab = "weekly"
	TabMonthly Tab = "monthly"
	TabYearly  Tab = "yearly"
)

// AllTabs returns the tabs in display order.
func AllTabs() []Tab {
	return []Tab{TabOpening, TabClosing, TabWeekly, TabMonthly, TabYearly}
}

// ParseTab validates a tab name from user input.
func ParseTab(s string) (Tab, error) {
	switch Tab(s) {
	case TabOpening, TabClosing, TabWeekly, TabMonthly, TabYearly:
		return Tab(s), nil
	case "":
		return "", ErrNoTabSelected
	default:
		return "", fmt.Errorf("unknown tab %q (expected opening, closing, weekly, monthly or yearly)", s)
	}
}

// Label returns the human-facing name of the tab.
func (t Tab) Label() string {
	switch t {
	case TabOpening:
		return "Opening"
	case TabClosing:
		return "Closing"
	case TabWeekly:
		return "Weekly"
	case TabMonthly:
		return "Monthly"
	case TabYearly:
		return "Yearly"
	default:
		return string(t)
	}
}

package models

import (
	"encoding/json"
	"strconv"
	"strings"
)

// FlexNumber is a schedule field that owners have historically stored as a
// number, a numeric string, or the literal "any". Unmarshaling never fails;
// callers decide what a non-numeric value means (the monthly predicate
// treats it as "due every day", the yearly predicate as "never active").
type FlexNumber struct {
	Text  string
	Num   int
	IsNum bool
}

// Int returns the numeric value and whether one is present.
func (f FlexNumber) Int() (int, bool) {
	return f.Num, f.IsNum
}

// IsAny reports whether the field holds the wildcard value "any".
func (f FlexNumber) IsAny() bool {
	return !f.IsNum && strings.EqualFold(strings.TrimSpace(f.Text), "any")
}

func (f *FlexNumber) UnmarshalJSON(data []byte) error {
	// Unmarshaling null into an int succeeds without assigning; catch it
	// before it masquerades as the number zero.
	if string(data) == "null" {
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		f.Num = n
		f.IsNum = true
		f.Text = strconv.Itoa(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		f.Text = s
		if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			f.Num = n
			f.IsNum = true
		}
		return nil
	}
	// Anything else (object, bool, null) is kept as opaque text so the
	// fail-open/fail-closed policy can apply instead of a parse error.
	f.Text = string(data)
	return nil
}

func (f FlexNumber) MarshalJSON() ([]byte, error) {
	if f.IsNum {
		return json.Marshal(f.Num)
	}
	return json.Marshal(f.Text)
}

// Weekdays is the weekly scheduling rule: the wildcard "any" or a set of
// weekday numbers (0=Sunday..6=Saturday). An empty set is equivalent to
// "any" per the fail-open policy.
type Weekdays struct {
	Any  bool
	Days []int
}

// Contains reports whether the given weekday is a member. A wildcard or
// empty set matches every weekday.
func (w *Weekdays) Contains(weekday int) bool {
	if w == nil || w.Any || len(w.Days) == 0 {
		return true
	}
	for _, d := range w.Days {
		if d == weekday {
			return true
		}
	}
	return false
}

func (w *Weekdays) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		w.Any = strings.EqualFold(strings.TrimSpace(s), "any")
		return nil
	}
	// Stored lists mix numbers and numeric strings.
	var raw []FlexNumber
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}
	for _, f := range raw {
		if n, ok := f.Int(); ok && n >= 0 && n <= 6 {
			w.Days = append(w.Days, n)
		}
	}
	return nil
}

func (w Weekdays) MarshalJSON() ([]byte, error) {
	if w.Any || len(w.Days) == 0 {
		return json.Marshal("any")
	}
	return json.Marshal(w.Days)
}

package calendar

import (
	"fmt"
	"strings"
	"time"
)

// Parity says which of the two alternating week patterns governs a date.
// Older university configs call these "even"/"odd"; the engine only cares
// that there are exactly two and that they alternate weekly.
type Parity int

const (
	First Parity = iota + 1
	Second
)

func (p Parity) String() string {
	switch p {
	case First:
		return "first"
	case Second:
		return "second"
	default:
		return fmt.Sprintf("parity(%d)", int(p))
	}
}

// Other returns the opposite parity.
func (p Parity) Other() Parity {
	if p == First {
		return Second
	}
	return First
}

// ParseParity accepts the current labels and the legacy even/odd ones.
func ParseParity(s string) (Parity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "first", "even":
		return First, nil
	case "second", "odd":
		return Second, nil
	default:
		return 0, fmt.Errorf("unknown week parity %q", s)
	}
}

// Config anchors week numbering for one university.
//
// BaseDate is the Monday the numbering starts from; a zero BaseDate means
// "January 1 of the queried date's year". BaseParity is the parity of the
// week containing BaseDate.
type Config struct {
	BaseDate   time.Time
	BaseParity Parity
}

func (c Config) withDefaults(date time.Time) Config {
	if c.BaseParity != First && c.BaseParity != Second {
		c.BaseParity = First
	}
	if c.BaseDate.IsZero() {
		c.BaseDate = time.Date(date.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	}
	return c
}

// ComputeParity returns the parity of the week containing date.
//
// The computation truncates both dates to calendar days, takes the floored
// whole-week difference (negative for dates before the base), and flips the
// base parity when that difference is odd. Day arithmetic is done on UTC
// midnights so DST transitions in the caller's location can't skew the
// division by a stray hour.
func ComputeParity(date time.Time, cfg Config) Parity {
	cfg = cfg.withDefaults(date)

	days := int(midnightUTC(date).Sub(midnightUTC(cfg.BaseDate)).Hours() / 24)
	weeks := floorDiv(days, 7)

	if euclidMod(weeks, 2) == 0 {
		return cfg.BaseParity
	}
	return cfg.BaseParity.Other()
}

// Slot returns the canonical weekday slot for date: Monday=1 .. Sunday=7.
func Slot(date time.Time) int {
	wd := int(date.Weekday()) // Sunday=0 .. Saturday=6
	if wd == 0 {
		return 7
	}
	return wd
}

func midnightUTC(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// floorDiv is integer division rounding toward negative infinity.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// euclidMod is a modulo that always lands in [0, b) for positive b.
func euclidMod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}

package store

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Scheme identifies one of the historically evolved store layouts.
//
// The backing store has been reorganized twice; all three layouts are still
// live in the wild, so the layout is a deployment-time choice, never inferred
// from data.
type Scheme string

const (
	// SchemeFlat: one document per weekday name under
	// universities/{u}/timetable/{monday..sunday}; no parity axis,
	// all groups mixed together.
	SchemeFlat Scheme = "flat"

	// SchemeParityDay: one document per (parity, day) under
	// universities/{u}/schedule_weeks/{parity}_{0..6} with the day numbered
	// Sunday-based the way the original frontend's Date.getDay() did it.
	// Holds lessons for all groups.
	SchemeParityDay Scheme = "parity-day"

	// SchemeGroupTree: per-group subtree universities/{u}/schedule/{g}/{parity}
	// holding day documents keyed "1".."7" Monday-based, each with an
	// embedded lessons array. The current layout.
	SchemeGroupTree Scheme = "group-tree"
)

// ErrUnsupportedScheme indicates an unknown layout id. This is a
// configuration error: it must be caught at startup, never from data.
var ErrUnsupportedScheme = errors.New("unsupported store scheme")

// ParseScheme validates a layout id from config.
func ParseScheme(s string) (Scheme, error) {
	switch Scheme(strings.ToLower(strings.TrimSpace(s))) {
	case SchemeFlat:
		return SchemeFlat, nil
	case SchemeParityDay:
		return SchemeParityDay, nil
	case SchemeGroupTree, "":
		// default to the current layout
		return SchemeGroupTree, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedScheme, s)
	}
}

var weekdayNames = [8]string{
	"", // slots are 1-based
	"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday",
}

// DayKey maps a canonical weekday slot (Monday=1..Sunday=7) to the document
// key the given scheme addresses that day by.
func DayKey(scheme Scheme, slot int) (string, error) {
	if slot < 1 || slot > 7 {
		return "", fmt.Errorf("weekday slot out of range: %d", slot)
	}
	switch scheme {
	case SchemeFlat:
		return weekdayNames[slot], nil
	case SchemeParityDay:
		// Sunday-based 0..6: canonical Sunday (7) wraps to "0".
		return strconv.Itoa(slot % 7), nil
	case SchemeGroupTree:
		return strconv.Itoa(slot), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedScheme, scheme)
	}
}

// slotForKey is the inverse of DayKey, used when a collection listing comes
// back keyed in scheme terms. Returns 0 for keys that aren't day buckets.
func slotForKey(scheme Scheme, key string) int {
	switch scheme {
	case SchemeFlat:
		for slot := 1; slot <= 7; slot++ {
			if weekdayNames[slot] == key {
				return slot
			}
		}
		return 0
	case SchemeParityDay:
		n, err := strconv.Atoi(key)
		if err != nil || n < 0 || n > 6 {
			return 0
		}
		if n == 0 {
			return 7
		}
		return n
	case SchemeGroupTree:
		n, err := strconv.Atoi(key)
		if err != nil || n < 1 || n > 7 {
			return 0
		}
		return n
	default:
		return 0
	}
}

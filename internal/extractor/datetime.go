package extractor

import (
	"strings"
	"time"
)

// dateLayouts are tried in order; the first that parses wins. Layouts that
// already carry a clock ignore any separately matched time token.
var dateLayouts = []struct {
	layout  string
	hasTime bool
}{
	{"02/01/2006", false},
	{"02/01/06", false},
	{"2006/01/02", false},
	{"02-01-2006", false},
	{"02-01-06", false},
	{"2006-01-02", false},
	{"02-Jan-2006", false},
	{"2 January 2006", false},
	{"2 Jan 2006", false},
	{"Jan 2, 2006 3:04 PM", true},
	{"2006/01/02 15:04:05", true},
}

var clockLayouts = []string{"15:04:05", "15:04", "3:04 PM", "3:04PM"}

// parseDate parses a matched date token, merging a separately matched time
// token when the date layout has no clock of its own. Returns the zero time
// and false when no layout fits; the caller keeps the raw token instead.
func parseDate(dateStr, timeStr string) (time.Time, bool) {
	dateStr = strings.TrimSpace(dateStr)
	if dateStr == "" {
		return time.Time{}, false
	}

	for _, dl := range dateLayouts {
		t, err := time.Parse(dl.layout, dateStr)
		if err != nil {
			continue
		}
		if !dl.hasTime && timeStr != "" {
			if clock, ok := parseClock(timeStr); ok {
				t = time.Date(t.Year(), t.Month(), t.Day(),
					clock.Hour(), clock.Minute(), clock.Second(), 0, t.Location())
			}
		}
		return t, true
	}

	return time.Time{}, false
}

func parseClock(s string) (time.Time, bool) {
	s = strings.TrimSpace(strings.ToUpper(s))
	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

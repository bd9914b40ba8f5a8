package medline

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/oculit/ophtha-fetcher/internal/domain"
)

// monthAbbrevs maps lowercase 3-letter English month names to time.Month.
var monthAbbrevs = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

// compactDateRe matches the compact YYYYMMDD form used by the DEP field.
var compactDateRe = regexp.MustCompile(`^\d{8}$`)

// ParseDate parses a raw MEDLINE date string into a date. It never fails:
// unparseable input yields domain.FallbackDate (1900-01-01), which is used
// for sorting only.
//
// Attempts, first success wins:
//  1. ISO YYYY-MM-DD or YYYY-MM (day defaults to 1)
//  2. slash form YYYY/MM/DD or YYYY/MM
//  3. PubMed prose "YYYY Mon [DD]" with a 3-letter English month
//  4. positional fallback: year from chars 1-4, month from 6-7, day from 9-10
func ParseDate(raw string) time.Time {
	s := strings.TrimSpace(raw)
	if s == "" {
		return domain.FallbackDate
	}

	// DEP arrives as a bare YYYYMMDD string; expand it so the ISO attempt
	// can handle it.
	if compactDateRe.MatchString(s) {
		s = s[:4] + "-" + s[4:6] + "-" + s[6:8]
	}

	for _, layout := range []string{"2006-01-02", "2006-01", "2006/01/02", "2006/01"} {
		if t, err := time.Parse(layout, s); err == nil {
			return floor(t.UTC())
		}
	}

	if t, ok := parseProse(s); ok {
		return floor(t)
	}

	return parsePositional(s)
}

// parseProse handles "YYYY Mon [DD]" strings. The day defaults to 1 when
// missing or invalid ("2024 Mar 7xyz" still parses as 2024-03-01).
func parseProse(s string) (time.Time, bool) {
	fields := strings.Fields(s)
	if len(fields) < 2 {
		return time.Time{}, false
	}

	year, err := strconv.Atoi(fields[0])
	if err != nil || year < 1000 {
		return time.Time{}, false
	}

	monKey := strings.ToLower(fields[1])
	if len(monKey) > 3 {
		monKey = monKey[:3]
	}
	month, ok := monthAbbrevs[monKey]
	if !ok {
		return time.Time{}, false
	}

	day := 1
	if len(fields) >= 3 {
		if d, err := strconv.Atoi(fields[2]); err == nil && d >= 1 && d <= 31 {
			day = d
		}
	}

	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC), true
}

// parsePositional slices fixed character positions, defaulting each component
// on failure. This is the last resort and always produces a date.
func parsePositional(s string) time.Time {
	year := 1900
	if len(s) >= 4 {
		if y, err := strconv.Atoi(s[:4]); err == nil {
			year = y
		}
	}

	month := 1
	if len(s) >= 7 {
		if m, err := strconv.Atoi(s[5:7]); err == nil && m >= 1 && m <= 12 {
			month = m
		}
	}

	day := 1
	if len(s) >= 10 {
		if d, err := strconv.Atoi(s[8:10]); err == nil && d >= 1 && d <= 31 {
			day = d
		}
	}

	return floor(time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC))
}

// floor clamps dates to domain.FallbackDate so sorting never sees anything
// older than the sentinel.
func floor(t time.Time) time.Time {
	if t.Before(domain.FallbackDate) {
		return domain.FallbackDate
	}
	return t
}

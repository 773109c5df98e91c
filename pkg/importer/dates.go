package importer

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// The two date grammars recognized in filenames and section labels, tried in
// order. Both require real calendar values; a lexical match with an invalid
// month or day falls through to the next grammar.
var (
	isoDateRe = regexp.MustCompile(`(\d{4})[-_](\d{2})[-_](\d{2})`)

	naturalDateRe = regexp.MustCompile(`(?i)(January|February|March|April|May|June|July|August|September|October|November|December)\s+(\d{1,2}),?\s+(\d{4})`)
)

var monthsByName = map[string]time.Month{
	"january": time.January, "february": time.February, "march": time.March,
	"april": time.April, "may": time.May, "june": time.June,
	"july": time.July, "august": time.August, "september": time.September,
	"october": time.October, "november": time.November, "december": time.December,
}

// ParseDate extracts a calendar date from an arbitrary string such as
// "journal_2024-03-05.txt" or "March 5, 2024.txt". It returns the date at
// midnight UTC and whether extraction succeeded. Failure is a normal result,
// not an error.
func ParseDate(s string) (time.Time, bool) {
	if m := isoDateRe.FindStringSubmatch(s); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		if d, ok := makeDate(year, time.Month(month), day); ok {
			return d, true
		}
	}

	if m := naturalDateRe.FindStringSubmatch(s); m != nil {
		month := monthsByName[strings.ToLower(m[1])]
		day, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		if d, ok := makeDate(year, month, day); ok {
			return d, true
		}
	}

	return time.Time{}, false
}

// makeDate builds a date and rejects values that time.Date would silently
// normalize, e.g. month 13 or February 30.
func makeDate(year int, month time.Month, day int) (time.Time, bool) {
	if month < time.January || month > time.December || day < 1 || day > 31 {
		return time.Time{}, false
	}
	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if d.Year() != year || d.Month() != month || d.Day() != day {
		return time.Time{}, false
	}
	return d, true
}

// Package timeparse finds a 12-hour clock time such as "3pm" or
// "at 3:30 pm" inside free text.
package timeparse

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var clockPattern = regexp.MustCompile(`(?i)\b(?:at\s+)?(\d{1,2})(?::(\d{2}))?\s*(am|pm)\b`)

// Match is a clock time found in a piece of text.
type Match struct {
	// Time is the parsed clock time on the calendar day of now.
	Time time.Time
	// Start and End are byte offsets of Text[Start:End].
	Start int
	End   int
	// Text is the matched substring, for highlighting.
	Text string
}

// Result is the outcome of parsing a piece of text. Text is always the
// input, unchanged.
type Result struct {
	Text  string
	Match *Match
}

// Found reports whether a valid clock time was detected.
func (r Result) Found() bool { return r.Match != nil }

// Parse looks for the first clock-time expression in text. Only the first
// candidate is considered: when its hour is outside 1-12 or its minutes
// outside 0-59 the result reports no time, even if a later candidate
// would be valid.
//
// The time is always anchored to the calendar day of now, regardless of
// relative date words like "tomorrow" elsewhere in the text.
func Parse(text string, now time.Time) Result {
	res := Result{Text: text}

	loc := clockPattern.FindStringSubmatchIndex(text)
	if loc == nil {
		return res
	}

	hour, err := strconv.Atoi(text[loc[2]:loc[3]])
	if err != nil || hour < 1 || hour > 12 {
		return res
	}
	minute := 0
	if loc[4] >= 0 {
		minute, err = strconv.Atoi(text[loc[4]:loc[5]])
		if err != nil || minute > 59 {
			return res
		}
	}
	hour = to24(hour, strings.ToLower(text[loc[6]:loc[7]]))

	y, m, d := now.Date()
	res.Match = &Match{
		Time:  time.Date(y, m, d, hour, minute, 0, 0, now.Location()),
		Start: loc[0],
		End:   loc[1],
		Text:  text[loc[0]:loc[1]],
	}
	return res
}

// to24 converts a 1-12 hour with meridiem into 0-23. 12am is midnight and
// 12pm is noon.
func to24(hour int, meridiem string) int {
	if hour == 12 {
		hour = 0
	}
	if meridiem == "pm" {
		hour += 12
	}
	return hour
}

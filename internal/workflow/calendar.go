package workflow

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Calendar messages often carry relative time phrases ("tomorrow at 3pm")
// that the external workflow cannot resolve without knowing when the
// message was sent. EnrichCalendarContent appends an absolute date/time
// context block so the workflow works from resolved dates.

var timeOfDayPattern = regexp.MustCompile(`(?i)\b(?:at\s+)?(\d{1,2})(?::(\d{2}))?\s*(am|pm)\b`)

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

func EnrichCalendarContent(content string, now time.Time) string {
	resolved := resolveRelativeDates(content, now)
	if len(resolved) == 0 {
		return content
	}

	var b strings.Builder
	b.WriteString(content)
	b.WriteString("\n\n[Date/Time Context]\n")
	fmt.Fprintf(&b, "Current date/time: %s\n", now.Format("Monday, January 2, 2006 3:04 PM MST"))
	for phrase, abs := range resolved {
		fmt.Fprintf(&b, "%q resolves to %s\n", phrase, abs)
	}

	return b.String()
}

func resolveRelativeDates(content string, now time.Time) map[string]string {
	lowered := strings.ToLower(content)
	resolved := make(map[string]string)

	day := func(t time.Time) string { return t.Format("Monday, January 2, 2006") }

	if strings.Contains(lowered, "today") || strings.Contains(lowered, "tonight") {
		resolved["today"] = day(now)
	}
	if strings.Contains(lowered, "tomorrow") {
		resolved["tomorrow"] = day(now.AddDate(0, 0, 1))
	}
	if strings.Contains(lowered, "next week") {
		resolved["next week"] = "week of " + day(nextWeekday(now, time.Monday))
	}

	for name, wd := range weekdays {
		if strings.Contains(lowered, "next "+name) {
			resolved["next "+name] = day(nextWeekday(now, wd))
		} else if strings.Contains(lowered, name) {
			resolved[name] = day(upcomingWeekday(now, wd))
		}
	}

	if m := timeOfDayPattern.FindStringSubmatch(content); m != nil {
		resolved[strings.TrimSpace(m[0])] = normalizeClockTime(m[1], m[2], m[3])
	}

	return resolved
}

// nextWeekday returns the given weekday strictly after now's week boundary.
func nextWeekday(now time.Time, wd time.Weekday) time.Time {
	days := int(wd-now.Weekday()+7) % 7
	if days == 0 {
		days = 7
	}
	return now.AddDate(0, 0, days)
}

// upcomingWeekday returns the next occurrence of the weekday, today included.
func upcomingWeekday(now time.Time, wd time.Weekday) time.Time {
	days := int(wd-now.Weekday()+7) % 7
	return now.AddDate(0, 0, days)
}

func normalizeClockTime(hour, minute, meridiem string) string {
	if minute == "" {
		minute = "00"
	}
	return fmt.Sprintf("%s:%s %s", hour, minute, strings.ToUpper(meridiem))
}

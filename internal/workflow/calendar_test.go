package workflow_test

import (
	"strings"
	"testing"
	"time"

	"github.com/kendevco/discordant/internal/workflow"
)

func TestEnrichCalendarContentResolvesTomorrow(t *testing.T) {
	// A Tuesday.
	now := time.Date(2025, time.June, 10, 14, 30, 0, 0, time.UTC)

	got := workflow.EnrichCalendarContent("schedule a meeting tomorrow at 3pm", now)

	if !strings.Contains(got, "schedule a meeting tomorrow at 3pm") {
		t.Fatal("original content must be preserved")
	}
	if !strings.Contains(got, "Wednesday, June 11, 2025") {
		t.Fatalf("tomorrow not resolved to an absolute date:\n%s", got)
	}
	if !strings.Contains(got, "3:00 PM") {
		t.Fatalf("clock time not normalized:\n%s", got)
	}
}

func TestEnrichCalendarContentWithoutRelativePhrases(t *testing.T) {
	now := time.Date(2025, time.June, 10, 14, 30, 0, 0, time.UTC)

	content := "add lunch with Sam on June 20th"
	if got := workflow.EnrichCalendarContent(content, now); got != content {
		t.Fatalf("content without relative phrases must pass through unchanged, got:\n%s", got)
	}
}

func TestEnrichCalendarContentNextWeekday(t *testing.T) {
	// A Tuesday; "next friday" is the 13th, the upcoming Friday of the
	// same week counts as the next occurrence.
	now := time.Date(2025, time.June, 10, 9, 0, 0, 0, time.UTC)

	got := workflow.EnrichCalendarContent("set up a review next friday", now)
	if !strings.Contains(got, "Friday, June 13, 2025") {
		t.Fatalf("next friday not resolved:\n%s", got)
	}
}

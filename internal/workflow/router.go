// Package workflow classifies chat messages into a processing route and
// dispatches async routes to the external workflow engine.
package workflow

import "strings"

const (
	ModeSync  = "sync"
	ModeAsync = "async"
)

// Route ids. general-chat is the fall-through conversational route.
const (
	WorkflowGeneralChat   = "general-chat"
	WorkflowCalendar      = "calendar-assistant"
	WorkflowImageAnalysis = "image-analysis"
	WorkflowResearch      = "web-research"
)

type WorkflowRoute struct {
	Mode        string `json:"mode"`
	WorkflowID  string `json:"workflowId"`
	WebhookPath string `json:"webhookPath"`
	Description string `json:"description"`
}

// Rules are checked in order and the first match wins, so the more specific
// categories sit above the generic ones. The set is closed and known at
// compile time; adding a route means adding a rule here.
var rules = []struct {
	match func(content string, hasAttachment bool) bool
	route WorkflowRoute
}{
	{
		match: func(_ string, hasAttachment bool) bool { return hasAttachment },
		route: WorkflowRoute{
			Mode:        ModeAsync,
			WorkflowID:  WorkflowImageAnalysis,
			WebhookPath: "image-analysis",
			Description: "Attachment analysis",
		},
	},
	{
		match: func(content string, _ bool) bool { return containsAny(content, calendarKeywords) },
		route: WorkflowRoute{
			Mode:        ModeAsync,
			WorkflowID:  WorkflowCalendar,
			WebhookPath: "calendar-assistant",
			Description: "Calendar management",
		},
	},
	{
		match: func(content string, _ bool) bool { return containsAny(content, researchKeywords) },
		route: WorkflowRoute{
			Mode:        ModeAsync,
			WorkflowID:  WorkflowResearch,
			WebhookPath: "web-research",
			Description: "Web research",
		},
	},
}

var defaultRoute = WorkflowRoute{
	Mode:        ModeSync,
	WorkflowID:  WorkflowGeneralChat,
	WebhookPath: "general-chat",
	Description: "General conversation",
}

var calendarKeywords = []string{
	"schedule",
	"meeting",
	"calendar",
	"appointment",
	"remind me",
	"reminder",
	"book a",
	"reschedule",
	"availability",
	"what's on my",
	"upcoming events",
}

var researchKeywords = []string{
	"research",
	"look up",
	"search the web",
	"find out about",
	"latest news",
	"market analysis",
}

// Route maps message content plus attachment presence to exactly one route.
// It is total: when nothing matches it returns the default sync
// conversational route, so callers never handle a "no route" case.
func Route(content string, hasAttachment bool) WorkflowRoute {
	lowered := strings.ToLower(content)

	for _, rule := range rules {
		if rule.match(lowered, hasAttachment) {
			return rule.route
		}
	}

	return defaultRoute
}

// DetectIntent returns the workflow id a message would route to, used by the
// orchestrator to decide on calendar date enrichment before dispatch.
func DetectIntent(content string) string {
	return Route(content, false).WorkflowID
}

func containsAny(content string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(content, kw) {
			return true
		}
	}
	return false
}

package orchestrator

import (
	"fmt"
	"strings"
	"time"

	"github.com/kendevco/discordant/internal/domain"
)

// promptContext carries everything the prompt builder needs. A non-empty
// WorkflowError means the primary workflow path already failed and the
// completion runs in recovery mode.
type promptContext struct {
	History       []domain.HistoryEntry
	Now           time.Time
	ChannelName   string
	WorkflowError string
	Degraded      bool
}

func buildSystemPrompt(pc promptContext) string {
	dateString := pc.Now.Format("2006-01-02")
	timeString := pc.Now.Format("3:04:05 PM")

	channel := pc.ChannelName
	if channel == "" {
		channel = "general"
	}

	var b strings.Builder

	b.WriteString("You are Kenneth's Enhanced Site AI Orchestrator for Discordant at discordant.kendev.co.\n\n")
	b.WriteString("**Your Role**: Chief Intelligence Officer for National Registration Group\n")
	b.WriteString("**Current Context**:\n")
	fmt.Fprintf(&b, "- Date: %s\n", dateString)
	fmt.Fprintf(&b, "- Time: %s Eastern\n", timeString)
	fmt.Fprintf(&b, "- Channel: %s\n\n", channel)

	b.WriteString("**Available Capabilities**:\n")
	if pc.Degraded {
		b.WriteString("**System Status**: Advanced workflow temporarily unavailable\n")
		if pc.WorkflowError != "" {
			b.WriteString("- Primary AI tools experiencing connectivity issues\n")
		} else {
			b.WriteString("- Primary AI tools experiencing processing delays\n")
		}
		b.WriteString("- Operating in Site AI mode with full business intelligence capabilities\n")
		b.WriteString("- Can still provide comprehensive analysis and recommendations\n\n")
	} else {
		b.WriteString("**System Status**: All systems operational\n")
		b.WriteString("- Full access to calendar management tools\n")
		b.WriteString("- Message search and conversation analysis\n")
		b.WriteString("- Real-time web research capabilities\n")
		b.WriteString("- Business intelligence and strategic analysis\n\n")
	}

	b.WriteString("**Calendar Management**: Schedule, view, and manage meetings\n")
	b.WriteString("**Message Search**: Find conversations and business discussions\n")
	b.WriteString("**Business Intelligence**: Market research and strategic analysis\n")
	b.WriteString("**Executive Support**: Data-driven recommendations and insights\n\n")

	b.WriteString("**Response Guidelines**:\n")
	b.WriteString("- Provide strategic business insights suitable for executive decision-making\n")
	b.WriteString("- Be conversational and engaging with appropriate humor when requested\n")
	b.WriteString("- Use professional formatting with clear action items\n")
	b.WriteString("- Include relevant timestamps and context\n")
	b.WriteString("- Format responses as proper system messages\n\n")

	if pc.Degraded {
		b.WriteString("**Recovery Mode**:\n")
		b.WriteString("- Acknowledge any system limitations honestly\n")
		b.WriteString("- Provide maximum value with available resources\n")
		b.WriteString("- Suggest alternatives when primary tools unavailable\n\n")
	}

	b.WriteString("**Recent Conversation Context**:\n")
	b.WriteString(formatHistory(pc.History))
	b.WriteString("\n\nRemember: You serve as Kenneth's intelligent business assistant. Provide clear, actionable insights with professional presentation.")

	return b.String()
}

// formatHistory renders oldest-first "Author: content" lines.
func formatHistory(entries []domain.HistoryEntry) string {
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, fmt.Sprintf("%s: %s", e.Author, e.Content))
	}
	return strings.Join(lines, "\n")
}

// statusFooter is appended to every completion so users can tell whether the
// answer came from the full pipeline or the local recovery path.
func statusFooter(now time.Time, degraded bool, workflowError string) string {
	timeString := now.Format("3:04:05 PM")

	if !degraded {
		return fmt.Sprintf("\n\n---\n**System Status**: Full capabilities operational\n**Response Time**: %s", timeString)
	}

	footer := fmt.Sprintf("\n\n---\n**System Status**: Response generated by Site AI Orchestrator\n**Response Time**: %s", timeString)
	if workflowError != "" {
		footer += fmt.Sprintf("\n**Note**: Advanced workflow tools temporarily unavailable - %s", workflowError)
	}
	return footer
}

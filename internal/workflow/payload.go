package workflow

import "time"

// Payload is the body POSTed to the external workflow engine. The
// ProcessingMessageID names the placeholder reply persisted before dispatch:
// whoever finishes the request (the workflow out-of-band, or the local
// fallback) updates that record rather than creating a new one.
type Payload struct {
	Content             string        `json:"content"`
	Route               WorkflowRoute `json:"route"`
	ChannelID           string        `json:"channelId"`
	ServerID            string        `json:"serverId,omitempty"`
	ProcessingMessageID string        `json:"processingMessageId"`
	UserMessageID       string        `json:"userMessageId,omitempty"`
	AuthorName          string        `json:"authorName,omitempty"`
	Timestamp           time.Time     `json:"timestamp"`
}

func NewPayload(content string, route WorkflowRoute, channelID, serverID, processingMessageID string) Payload {
	return Payload{
		Content:             content,
		Route:               route,
		ChannelID:           channelID,
		ServerID:            serverID,
		ProcessingMessageID: processingMessageID,
		Timestamp:           time.Now().UTC(),
	}
}

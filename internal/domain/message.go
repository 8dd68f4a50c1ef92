package domain

import (
	"context"
	"time"
)

const (
	RoleUser   = "user"
	RoleSystem = "system"
)

type Message struct {
	ID        string    `json:"id"`
	ChannelID string    `json:"channelId"`
	MemberID  string    `json:"memberId"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	FileURL   string    `json:"fileUrl,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// HistoryEntry is a message joined with its author's display name, as
// returned by Recent. Author is already normalized: messages whose member
// record cannot be resolved carry "Unknown User".
type HistoryEntry struct {
	Content   string
	Author    string
	Role      string
	CreatedAt time.Time
}

type MessageStore interface {
	Create(ctx context.Context, message *Message) error
	Update(ctx context.Context, id string, content string) (*Message, error)
	GetByID(ctx context.Context, id string) (*Message, error)
	// Recent returns up to limit entries for the channel no older than the
	// window, newest last.
	Recent(ctx context.Context, channelID string, window time.Duration, limit int) ([]HistoryEntry, error)
}

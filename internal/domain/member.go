package domain

import "context"

type Member struct {
	ID        string `json:"id"`
	ProfileID string `json:"profileId"`
	ServerID  string `json:"serverId"`
	Name      string `json:"name"`
	Role      string `json:"role"`
}

// MemberDirectory resolves the designated system actor for a channel's
// parent server, creating the membership record on first use.
type MemberDirectory interface {
	SystemMember(ctx context.Context, channelID string) (*Member, error)
	ServerOf(ctx context.Context, channelID string) (string, error)
}

package repository

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/kendevco/discordant/internal/domain"
)

// MemberDirectory is the in-memory stand-in for the profile/member
// collaborator: it knows which server a channel belongs to, which members
// exist, and lazily creates the system actor's membership per server.
type MemberDirectory struct {
	systemUserID  string
	channels      map[string]string         // channelID -> serverID
	members       map[string]*domain.Member // memberID -> member
	systemMembers map[string]string         // serverID -> system memberID
	mu            sync.RWMutex
}

func NewMemberDirectory(systemUserID string) *MemberDirectory {
	if systemUserID == "" {
		systemUserID = "system-user-9000"
	}
	return &MemberDirectory{
		systemUserID:  systemUserID,
		channels:      make(map[string]string),
		members:       make(map[string]*domain.Member),
		systemMembers: make(map[string]string),
	}
}

// RegisterChannel records which server a channel belongs to.
func (d *MemberDirectory) RegisterChannel(channelID, serverID string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.channels[channelID] = serverID
}

// RegisterMember adds a member record for author-name resolution.
func (d *MemberDirectory) RegisterMember(member *domain.Member) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.members[member.ID] = member
}

func (d *MemberDirectory) ServerOf(ctx context.Context, channelID string) (string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	serverID, ok := d.channels[channelID]
	if !ok {
		return "", domain.ErrChannelNotFound
	}
	return serverID, nil
}

// SystemMember resolves the system actor's membership in the channel's
// server, creating it on first use.
func (d *MemberDirectory) SystemMember(ctx context.Context, channelID string) (*domain.Member, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	serverID, ok := d.channels[channelID]
	if !ok {
		return nil, domain.ErrChannelNotFound
	}

	if id, ok := d.systemMembers[serverID]; ok {
		cpy := *d.members[id]
		return &cpy, nil
	}

	member := &domain.Member{
		ID:        uuid.NewString(),
		ProfileID: d.systemUserID,
		ServerID:  serverID,
		Name:      "System",
		Role:      "GUEST",
	}
	d.members[member.ID] = member
	d.systemMembers[serverID] = member.ID

	cpy := *member
	return &cpy, nil
}

// MemberName satisfies the message store's NameResolver.
func (d *MemberDirectory) MemberName(memberID string) (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	member, ok := d.members[memberID]
	if !ok || member.Name == "" {
		return "", false
	}
	return member.Name, true
}

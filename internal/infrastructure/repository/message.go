package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kendevco/discordant/internal/domain"
)

const unknownAuthor = "Unknown User"

// NameResolver maps a member id to a display name. The in-memory member
// directory satisfies it; a nil resolver leaves every author unknown.
type NameResolver interface {
	MemberName(memberID string) (string, bool)
}

// Oldest messages are evicted when capacity is exceeded.
type messageStore struct {
	messages map[string][]domain.Message // channelID -> []Message
	byID     map[string]*position
	capacity uint
	names    NameResolver
	mu       *sync.RWMutex
}

type position struct {
	channelID string
	index     int
}

func NewMessageStore(capacity uint, names NameResolver) domain.MessageStore {
	if capacity == 0 {
		capacity = 100 // sane default
	}
	return &messageStore{
		messages: make(map[string][]domain.Message),
		byID:     make(map[string]*position),
		capacity: capacity,
		names:    names,
		mu:       &sync.RWMutex{},
	}
}

func (s *messageStore) Create(ctx context.Context, message *domain.Message) error {
	if message == nil || message.ChannelID == "" {
		return domain.ErrInvalidInput
	}

	// Generate ID if not set
	if message.ID == "" {
		message.ID = uuid.NewString()
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}
	message.UpdatedAt = message.CreatedAt

	s.mu.Lock()
	defer s.mu.Unlock()

	channelMsgs := append(s.messages[message.ChannelID], *message)

	// Evict oldest if over capacity
	if len(channelMsgs) > int(s.capacity) {
		excess := len(channelMsgs) - int(s.capacity)
		for _, evicted := range channelMsgs[:excess] {
			delete(s.byID, evicted.ID)
		}
		channelMsgs = channelMsgs[excess:]
	}

	s.messages[message.ChannelID] = channelMsgs
	s.reindexLocked(message.ChannelID)

	return nil
}

func (s *messageStore) Update(ctx context.Context, id string, content string) (*domain.Message, error) {
	if id == "" {
		return nil, domain.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	pos, ok := s.byID[id]
	if !ok {
		return nil, domain.ErrMessageNotFound
	}

	msg := &s.messages[pos.channelID][pos.index]
	msg.Content = content
	msg.UpdatedAt = time.Now()

	cpy := *msg
	return &cpy, nil
}

func (s *messageStore) GetByID(ctx context.Context, id string) (*domain.Message, error) {
	if id == "" {
		return nil, domain.ErrInvalidInput
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	pos, ok := s.byID[id]
	if !ok {
		return nil, domain.ErrMessageNotFound
	}

	cpy := s.messages[pos.channelID][pos.index]
	return &cpy, nil
}

// Recent returns the channel's messages inside the window, oldest first,
// with author names resolved once here. Messages whose member record
// cannot be found carry "Unknown User" rather than failing the query.
func (s *messageStore) Recent(ctx context.Context, channelID string, window time.Duration, limit int) ([]domain.HistoryEntry, error) {
	if channelID == "" {
		return nil, domain.ErrInvalidInput
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	channelMsgs := s.messages[channelID]
	cutoff := time.Now().Add(-window)

	entries := make([]domain.HistoryEntry, 0, limit)
	for i := len(channelMsgs) - 1; i >= 0 && len(entries) < limit; i-- {
		msg := channelMsgs[i]
		if msg.CreatedAt.Before(cutoff) {
			break
		}

		author := unknownAuthor
		if s.names != nil {
			if name, ok := s.names.MemberName(msg.MemberID); ok {
				author = name
			}
		}

		entries = append(entries, domain.HistoryEntry{
			Content:   msg.Content,
			Author:    author,
			Role:      msg.Role,
			CreatedAt: msg.CreatedAt,
		})
	}

	// Collected newest-first; callers want oldest first.
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}

	return entries, nil
}

func (s *messageStore) reindexLocked(channelID string) {
	for i := range s.messages[channelID] {
		msg := &s.messages[channelID][i]
		s.byID[msg.ID] = &position{channelID: channelID, index: i}
	}
}

// Package registry tracks which connections belong to which studio room.
// It is the single owner of membership state: the signaling relay reads and
// mutates rooms only through it, never directly.
package registry

import "sync"

// Session is what the registry knows about one live connection.
type Session struct {
	RoomID   string
	UserID   string
	Username string
}

// Registry is an in-memory map of roomID -> connections and connection ->
// session. Rooms are created implicitly on first join and deleted when the
// last member leaves; nothing survives a process restart.
//
// C is the connection handle type. Handlers register *Client values; tests
// register plain strings.
type Registry[C comparable] struct {
	mu       sync.RWMutex
	rooms    map[string]map[C]struct{} // roomID -> set of connections
	sessions map[C]Session
}

func New[C comparable]() *Registry[C] {
	return &Registry[C]{
		rooms:    make(map[string]map[C]struct{}),
		sessions: make(map[C]Session),
	}
}

// Join registers conn under the session's room, creating the room entry if
// absent. Joining again with the same handle overwrites the session; there
// are no error conditions.
func (r *Registry[C]) Join(conn C, s Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.sessions[conn]; ok && prev.RoomID != s.RoomID {
		r.removeLocked(conn, prev.RoomID)
	}

	room, ok := r.rooms[s.RoomID]
	if !ok {
		room = make(map[C]struct{})
		r.rooms[s.RoomID] = room
	}

	room[conn] = struct{}{}
	r.sessions[conn] = s
}

// Leave removes conn from its room and deletes the room entry if it becomes
// empty. It reports the session the connection held; calling it on an
// unknown connection is a no-op.
func (r *Registry[C]) Leave(conn C) (Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[conn]
	if !ok {
		return Session{}, false
	}

	r.removeLocked(conn, s.RoomID)
	return s, true
}

func (r *Registry[C]) removeLocked(conn C, roomID string) {
	if room, ok := r.rooms[roomID]; ok {
		delete(room, conn)
		if len(room) == 0 {
			delete(r.rooms, roomID)
		}
	}
	delete(r.sessions, conn)
}

// Session returns the session registered for conn.
func (r *Registry[C]) Session(conn C) (Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[conn]
	return s, ok
}

// MembersOf returns the userIds currently in the room, excluding the given
// connection. Pass the zero value to exclude nothing.
func (r *Registry[C]) MembersOf(roomID string, exclude C) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room, ok := r.rooms[roomID]
	if !ok {
		return []string{}
	}

	users := make([]string, 0, len(room))
	for conn := range room {
		if conn == exclude {
			continue
		}
		users = append(users, r.sessions[conn].UserID)
	}
	return users
}

// Peers returns a snapshot of the connections in the room, excluding the
// given connection. Broadcasters iterate the snapshot so that concurrent
// join/leave never mutates a set mid-iteration.
func (r *Registry[C]) Peers(roomID string, exclude C) []C {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room, ok := r.rooms[roomID]
	if !ok {
		return nil
	}

	peers := make([]C, 0, len(room))
	for conn := range room {
		if conn == exclude {
			continue
		}
		peers = append(peers, conn)
	}
	return peers
}

// Find returns a live connection for the given userId. When a user holds
// several connections (multiple tabs) the first one found wins; direct
// signaling assumes one connection per user.
func (r *Registry[C]) Find(userID string) (C, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for conn, s := range r.sessions {
		if s.UserID == userID {
			return conn, true
		}
	}

	var zero C
	return zero, false
}

// Counts reports the number of active rooms and connections, for metrics.
func (r *Registry[C]) Counts() (rooms, connections int) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.rooms), len(r.sessions)
}

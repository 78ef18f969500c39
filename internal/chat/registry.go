package chat

import (
	"sort"
	"sync"
)

type session struct {
	sink   Sink
	status Status
	active string
	joined map[string]struct{}
}

// Registry holds connected sessions keyed by nickname. Each method is safe on
// its own; keeping it consistent with Rooms is the hub's job.
type Registry struct {
	mu          sync.RWMutex
	sessions    map[string]*session
	defaultRoom string
}

func NewRegistry(defaultRoom string) *Registry {
	return &Registry{
		sessions:    make(map[string]*session),
		defaultRoom: defaultRoom,
	}
}

// Register installs an ACTIVE session with no joined rooms.
func (r *Registry) Register(nickname string, sink Sink) error {
	if !validNickname(nickname) {
		return ErrNicknameInvalid
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.sessions[nickname]; exists {
		return ErrNicknameTaken
	}
	r.sessions[nickname] = &session{
		sink:   sink,
		status: StatusActive,
		joined: make(map[string]struct{}),
	}
	ConnectedClients.Set(float64(len(r.sessions)))
	return nil
}

// Unregister removes the session and returns its joined rooms, sorted.
// Unknown nicknames return nil, false.
func (r *Registry) Unregister(nickname string) ([]string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[nickname]
	if !ok {
		return nil, false
	}
	delete(r.sessions, nickname)
	ConnectedClients.Set(float64(len(r.sessions)))
	return sortedKeys(s.joined), true
}

// SetStatus returns the session's joined rooms so the caller can refresh
// their rosters. ok is false for an unknown session or status value.
func (r *Registry) SetStatus(nickname, status string) ([]string, bool) {
	st, valid := ParseStatus(status)
	if !valid {
		return nil, false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[nickname]
	if !ok {
		return nil, false
	}
	s.status = st
	return sortedKeys(s.joined), true
}

func (r *Registry) SetActiveRoom(nickname, room string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[nickname]
	if !ok {
		return false
	}
	s.active = room
	return true
}

// ActiveRoom falls back to the default room when nothing is set.
func (r *Registry) ActiveRoom(nickname string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if s, ok := r.sessions[nickname]; ok && s.active != "" {
		return s.active
	}
	return r.defaultRoom
}

func (r *Registry) AddRoom(nickname, room string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[nickname]
	if !ok {
		return false
	}
	s.joined[room] = struct{}{}
	return true
}

// RemoveRoom reports whether room was in the session's joined set.
func (r *Registry) RemoveRoom(nickname, room string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[nickname]
	if !ok {
		return false
	}
	if _, member := s.joined[room]; !member {
		return false
	}
	delete(s.joined, room)
	return true
}

func (r *Registry) IsMember(nickname, room string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[nickname]
	if !ok {
		return false
	}
	_, member := s.joined[room]
	return member
}

func (r *Registry) JoinedRooms(nickname string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[nickname]
	if !ok {
		return nil
	}
	return sortedKeys(s.joined)
}

func (r *Registry) Status(nickname string) (Status, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[nickname]
	if !ok {
		return "", false
	}
	return s.status, true
}

func (r *Registry) Sink(nickname string) (Sink, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[nickname]
	if !ok {
		return nil, false
	}
	return s.sink, true
}

// Roster resolves nicknames to entries, skipping ones no longer connected.
func (r *Registry) Roster(nicknames []string) []RosterEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]RosterEntry, 0, len(nicknames))
	for _, nick := range nicknames {
		if s, ok := r.sessions[nick]; ok {
			out = append(out, RosterEntry{Nickname: nick, Status: s.status})
		}
	}
	return out
}

// Nicknames returns every connected nickname, sorted.
func (r *Registry) Nicknames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.sessions))
	for nick := range r.sessions {
		names = append(names, nick)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

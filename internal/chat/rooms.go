package chat

import (
	"sort"
	"sync"
)

// Rooms is the room directory: room name -> member nicknames. Rooms are never
// removed, an empty room stays listed.
type Rooms struct {
	mu    sync.RWMutex
	rooms map[string]map[string]struct{}
}

func NewRooms(initial ...string) *Rooms {
	d := &Rooms{rooms: make(map[string]map[string]struct{})}
	for _, name := range initial {
		d.Ensure(name)
	}
	return d
}

// Ensure creates the room if absent and reports whether it was created.
func (d *Rooms) Ensure(room string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.ensureLocked(room)
}

func (d *Rooms) ensureLocked(room string) bool {
	if _, ok := d.rooms[room]; ok {
		return false
	}
	d.rooms[room] = make(map[string]struct{})
	RoomsTotal.Set(float64(len(d.rooms)))
	return true
}

func (d *Rooms) AddMember(room, nickname string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ensureLocked(room)
	d.rooms[room][nickname] = struct{}{}
}

// RemoveMember reports whether nickname was a member.
func (d *Rooms) RemoveMember(room, nickname string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	members, ok := d.rooms[room]
	if !ok {
		return false
	}
	if _, ok := members[nickname]; !ok {
		return false
	}
	delete(members, nickname)
	return true
}

// Members returns a sorted copy; callers may iterate it while others mutate
// the room.
func (d *Rooms) Members(room string) []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	members := d.rooms[room]
	out := make([]string, 0, len(members))
	for nick := range members {
		out = append(out, nick)
	}
	sort.Strings(out)
	return out
}

func (d *Rooms) Exists(room string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.rooms[room]
	return ok
}

// Names returns every room name in lexicographic order.
func (d *Rooms) Names() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	names := make([]string, 0, len(d.rooms))
	for name := range d.rooms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (d *Rooms) Count() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.rooms)
}

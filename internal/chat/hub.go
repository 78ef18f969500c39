package chat

import (
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"
)

type HubConfig struct {
	DefaultRoom      string
	EventBuffer      int
	MaxMessageLength int
	Recorder         Recorder
}

// Hub runs every compound room/session mutation on one goroutine, so join,
// leave and switch are atomic to observers. Sends are non-blocking enqueues.
type Hub struct {
	events chan Event
	stopCh   chan struct{}
	stopOnce sync.Once
	doneCh   chan struct{}
	logger   *slog.Logger

	defaultRoom string
	maxMsgLen   int

	sessions *Registry
	rooms    *Rooms
	dispatch *Dispatcher
}

func NewHub(cfg HubConfig, logger *slog.Logger) *Hub {
	if cfg.EventBuffer <= 0 {
		cfg.EventBuffer = 128
	}
	if cfg.DefaultRoom == "" {
		cfg.DefaultRoom = "Lobby"
	}
	if cfg.MaxMessageLength <= 0 {
		cfg.MaxMessageLength = 512
	}
	if logger == nil {
		logger = slog.Default()
	}
	sessions := NewRegistry(cfg.DefaultRoom)
	rooms := NewRooms(cfg.DefaultRoom)
	return &Hub{
		events:      make(chan Event, cfg.EventBuffer),
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
		logger:      logger,
		defaultRoom: cfg.DefaultRoom,
		maxMsgLen:   cfg.MaxMessageLength,
		sessions:    sessions,
		rooms:       rooms,
		dispatch:    NewDispatcher(sessions, rooms, cfg.Recorder, logger),
	}
}

// Submit hands an event to the run loop. It returns false once the hub is
// stopping.
func (h *Hub) Submit(ev Event) bool {
	select {
	case <-h.stopCh:
		return false
	default:
	}
	select {
	case h.events <- ev:
		return true
	case <-h.stopCh:
		return false
	}
}

// Stop signals the Run loop to exit. Queued events are discarded and every
// still-registered session has its outbound queue closed.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.stopCh) })
}

// Wait blocks until the Run loop has completely finished.
func (h *Hub) Wait() {
	<-h.doneCh
}

// Done is closed once the Run loop has exited.
func (h *Hub) Done() <-chan struct{} { return h.doneCh }

func (h *Hub) DefaultRoom() string { return h.defaultRoom }

func (h *Hub) Sessions() *Registry { return h.sessions }

func (h *Hub) Rooms() *Rooms { return h.rooms }

type Stats struct {
	Sessions int      `json:"sessions"`
	Rooms    []string `json:"rooms"`
}

func (h *Hub) Stats() Stats {
	return Stats{Sessions: h.sessions.Count(), Rooms: h.rooms.Names()}
}

func (h *Hub) Run() {
	defer close(h.doneCh)
	for {
		select {
		case <-h.stopCh:
			h.shutdown()
			return
		default:
		}
		select {
		case ev := <-h.events:
			start := time.Now()
			h.handle(ev)
			eventType := ev.Type.String()
			MessagesTotal.WithLabelValues(eventType).Inc()
			EventProcessingDuration.WithLabelValues(eventType).Observe(time.Since(start).Seconds())
		case <-h.stopCh:
			h.shutdown()
			return
		}
	}
}

// shutdown runs on the loop goroutine once stop is signalled. Pending register
// replies are closed unanswered so no handshake blocks on them.
func (h *Hub) shutdown() {
	dropped := 0
drain:
	for {
		select {
		case ev := <-h.events:
			if ev.ReplyChan != nil {
				close(ev.ReplyChan)
			}
			dropped++
		default:
			break drain
		}
	}
	for _, nick := range h.sessions.Nicknames() {
		if sink, ok := h.sessions.Sink(nick); ok {
			if c, ok := sink.(interface{ CloseOut() }); ok {
				c.CloseOut()
			}
		}
	}
	h.logger.Info("hub stopped", "discarded_events", dropped, "sessions", h.sessions.Count())
}

func (h *Hub) handle(ev Event) {
	if ev.Type == EventRegister {
		h.handleRegister(ev)
		return
	}
	if ev.Client == nil || !h.owns(ev.Client) {
		return
	}
	nick := ev.Client.Nickname
	switch ev.Type {
	case EventUnregister:
		h.handleUnregister(ev.Client)
	case EventChat:
		h.handleChat(nick, ev.Text)
	case EventStatus:
		h.handleStatus(nick, ev.Text)
	case EventCreateRoom:
		h.createRoom(nick, ev.Room)
	case EventJoinRoom:
		h.joinRoom(nick, ev.Room)
	case EventLeaveRoom:
		h.leaveRoom(nick, ev.Room)
	case EventSwitchRoom:
		h.switchRoom(nick, ev.Room)
	case EventListRooms:
		h.dispatch.Snapshot(nick)
	}
}

// owns reports whether c is the live session for its nickname. Events queued
// by a connection that already tore down must not touch a newer session.
func (h *Hub) owns(c *Client) bool {
	if c.Nickname == "" {
		return false
	}
	sink, ok := h.sessions.Sink(c.Nickname)
	return ok && sink == Sink(c)
}

func (h *Hub) handleRegister(ev Event) {
	defer func() {
		// ReplyChan is only used for register.
		if ev.ReplyChan != nil {
			close(ev.ReplyChan)
		}
	}()

	if ev.Client == nil {
		return
	}
	nick := strings.TrimSpace(ev.Nickname)
	if err := h.sessions.Register(nick, ev.Client); err != nil {
		h.logger.Info("nickname rejected", "nickname", nick, "reason", err.Error())
		if ev.ReplyChan != nil {
			ev.ReplyChan <- err
		}
		return
	}
	ev.Client.Nickname = nick

	// Silent join, snapshot first, then tell everyone else.
	h.rooms.AddMember(h.defaultRoom, nick)
	h.sessions.AddRoom(nick, h.defaultRoom)
	h.sessions.SetActiveRoom(nick, h.defaultRoom)
	h.dispatch.Snapshot(nick)

	h.dispatch.RoomRoster(h.defaultRoom)
	h.dispatch.SystemToRoom(h.defaultRoom, nick+" joined "+h.defaultRoom)
	h.dispatch.RoomList()
	h.dispatch.AllUsers()

	h.logger.Info("user registered", "nickname", nick, "connected", h.sessions.Count())
	if ev.ReplyChan != nil {
		ev.ReplyChan <- nil
	}
}

func (h *Hub) handleUnregister(c *Client) {
	nick := c.Nickname
	joined, ok := h.sessions.Unregister(nick)
	if !ok {
		return
	}
	for _, room := range joined {
		h.rooms.RemoveMember(room, nick)
		h.dispatch.RoomRoster(room)
		h.dispatch.SystemToRoom(room, nick+" left "+room)
	}
	h.dispatch.RoomList()
	h.dispatch.AllUsers()

	// Closing Out stops the writer goroutine gracefully.
	c.CloseOut()
	h.logger.Info("user left", "nickname", nick, "connected", h.sessions.Count())
}

func (h *Hub) handleChat(nick, text string) {
	text = strings.TrimRight(text, "\r\n")
	if strings.TrimSpace(text) == "" {
		return
	}
	h.dispatch.Chat(nick, truncate(text, h.maxMsgLen))
}

func (h *Hub) handleStatus(nick, status string) {
	rooms, ok := h.sessions.SetStatus(nick, status)
	if !ok {
		h.logger.Debug("ignored status", "nickname", nick, "status", status)
		return
	}
	for _, room := range rooms {
		h.dispatch.RoomRoster(room)
	}
	h.dispatch.AllUsers()
}

func (h *Hub) createRoom(nick, room string) {
	if room == "" {
		return
	}
	if h.rooms.Ensure(room) {
		h.logger.Info("room created", "room", room, "by", nick)
	}
	h.dispatch.RoomList()
}

func (h *Hub) joinRoom(nick, room string) {
	if room == "" {
		return
	}
	h.rooms.AddMember(room, nick)
	h.sessions.AddRoom(nick, room)
	h.sessions.SetActiveRoom(nick, room)

	h.dispatch.SendTo(nick, h.dispatch.MyRoomsPayload(nick))
	h.dispatch.SendTo(nick, RoomActiveLine(room))
	h.dispatch.RoomRoster(room)
	h.dispatch.SystemToRoom(room, nick+" joined "+room)
	h.dispatch.RoomList()
	h.dispatch.AllUsers()
}

func (h *Hub) leaveRoom(nick, room string) {
	if room == "" || !h.sessions.RemoveRoom(nick, room) {
		return
	}
	h.rooms.RemoveMember(room, nick)
	h.dispatch.RoomRoster(room)
	h.dispatch.SystemToRoom(room, nick+" left "+room)

	if h.sessions.ActiveRoom(nick) == room {
		remaining := h.sessions.JoinedRooms(nick)
		if len(remaining) == 0 {
			// joinRoom re-sends myrooms, roomlist and allusers.
			h.joinRoom(nick, h.defaultRoom)
			return
		}
		next := remaining[0]
		h.sessions.SetActiveRoom(nick, next)
		h.dispatch.SendTo(nick, RoomActiveLine(next))
		h.dispatch.RoomRoster(next)
	}

	h.dispatch.SendTo(nick, h.dispatch.MyRoomsPayload(nick))
	h.dispatch.RoomList()
	h.dispatch.AllUsers()
}

func (h *Hub) switchRoom(nick, room string) {
	if room == "" {
		return
	}
	if !h.sessions.IsMember(nick, room) {
		h.joinRoom(nick, room)
		return
	}
	h.sessions.SetActiveRoom(nick, room)
	h.dispatch.SendTo(nick, RoomActiveLine(room))
	h.dispatch.RoomRoster(room)
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

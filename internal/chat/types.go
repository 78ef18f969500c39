package chat

import (
	"net"
	"strings"
	"sync"
)

// Sink delivers one payload line to a connection. Send must not block; it
// reports false when the line was dropped.
type Sink interface {
	Send(line string) bool
}

type Status string

const (
	StatusActive Status = "ACTIVE"
	StatusAway   Status = "AWAY"
)

// ParseStatus accepts only the two wire values, case-sensitively.
func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusActive, StatusAway:
		return Status(s), true
	}
	return "", false
}

type RosterEntry struct {
	Nickname string
	Status   Status
}

type Client struct {
	ID       string
	Conn     net.Conn
	Nickname string
	Out      chan string // outbound lines, drained by the writer goroutine

	mu     sync.Mutex
	closed bool
}

func NewClient(id string, conn net.Conn, buffer int) *Client {
	if buffer <= 0 {
		buffer = 256
	}
	return &Client{ID: id, Conn: conn, Out: make(chan string, buffer)}
}

// Send enqueues without blocking so a slow peer never stalls the hub. Lines
// sent after CloseOut are dropped.
func (c *Client) Send(line string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.Out <- line:
		return true
	default:
		DroppedLines.Inc()
		return false
	}
}

// CloseOut stops the writer goroutine. It is safe to call more than once.
func (c *Client) CloseOut() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.Out)
	}
}

type EventType int

const (
	EventRegister EventType = iota
	EventUnregister
	EventChat
	EventStatus
	EventCreateRoom
	EventJoinRoom
	EventLeaveRoom
	EventSwitchRoom
	EventListRooms
)

func (t EventType) String() string {
	switch t {
	case EventRegister:
		return "register"
	case EventUnregister:
		return "unregister"
	case EventChat:
		return "chat"
	case EventStatus:
		return "status"
	case EventCreateRoom:
		return "room_create"
	case EventJoinRoom:
		return "room_join"
	case EventLeaveRoom:
		return "room_leave"
	case EventSwitchRoom:
		return "room_switch"
	case EventListRooms:
		return "room_list"
	}
	return "unknown"
}

type Event struct {
	Type      EventType
	Client    *Client
	Nickname  string
	Room      string
	Text      string
	ReplyChan chan error // used by register to ack success/failure
}

// eventFor maps a decoded command onto the hub event that carries it.
func eventFor(c *Client, cmd Command) Event {
	ev := Event{Client: c, Nickname: c.Nickname}
	switch cmd.Kind {
	case CmdStatus:
		ev.Type, ev.Text = EventStatus, cmd.Arg
	case CmdCreateRoom:
		ev.Type, ev.Room = EventCreateRoom, cmd.Arg
	case CmdJoinRoom:
		ev.Type, ev.Room = EventJoinRoom, cmd.Arg
	case CmdLeaveRoom:
		ev.Type, ev.Room = EventLeaveRoom, cmd.Arg
	case CmdSwitchRoom:
		ev.Type, ev.Room = EventSwitchRoom, cmd.Arg
	case CmdListRooms:
		ev.Type = EventListRooms
	default:
		ev.Type, ev.Text = EventChat, cmd.Arg
	}
	return ev
}

var (
	ErrNicknameTaken   = errorString("nickname_taken")
	ErrNicknameInvalid = errorString("nickname_invalid")
)

type errorString string

func (e errorString) Error() string { return string(e) }

func validNickname(nick string) bool {
	return nick != "" && !strings.ContainsAny(nick, ",|\r\n")
}

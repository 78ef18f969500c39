package chat

import (
	"strings"
)

// Client -> server command prefixes.
const (
	prefixStatus = "status:"
	prefixCreate = "room:create:"
	prefixJoin   = "room:join:"
	prefixLeave  = "room:leave:"
	prefixSwitch = "room:switch:"
	cmdList      = "room:list"
	cmdQuit      = "/quit"
)

// Server -> client payload prefixes.
const (
	PrefixChat       = "chat:"
	PrefixSystem     = "system:"
	PrefixRoomList   = "roomlist:"
	PrefixMyRooms    = "myrooms:"
	PrefixRoomActive = "roomactive:"
	PrefixUserList   = "userlist:"
	PrefixAllUsers   = "allusers:"
)

type CommandKind int

const (
	CmdChat CommandKind = iota
	CmdStatus
	CmdCreateRoom
	CmdJoinRoom
	CmdLeaveRoom
	CmdSwitchRoom
	CmdListRooms
	CmdQuit
)

func (k CommandKind) String() string {
	switch k {
	case CmdChat:
		return "chat"
	case CmdStatus:
		return "status"
	case CmdCreateRoom:
		return "room_create"
	case CmdJoinRoom:
		return "room_join"
	case CmdLeaveRoom:
		return "room_leave"
	case CmdSwitchRoom:
		return "room_switch"
	case CmdListRooms:
		return "room_list"
	case CmdQuit:
		return "quit"
	}
	return "unknown"
}

// Command is one decoded client line. Arg holds the room name (trimmed),
// the status value (trimmed) or the raw chat text.
type Command struct {
	Kind CommandKind
	Arg  string
}

// NeedsRoom reports whether the command targets a room by name.
func (c Command) NeedsRoom() bool {
	switch c.Kind {
	case CmdCreateRoom, CmdJoinRoom, CmdLeaveRoom, CmdSwitchRoom:
		return true
	}
	return false
}

// Decode parses a single line (without its terminator). Anything that does not
// match a known command is a chat message.
func Decode(line string) Command {
	line = strings.TrimRight(line, "\r\n")
	switch {
	case line == cmdQuit:
		return Command{Kind: CmdQuit}
	case line == cmdList:
		return Command{Kind: CmdListRooms}
	case strings.HasPrefix(line, prefixStatus):
		return Command{Kind: CmdStatus, Arg: strings.TrimSpace(line[len(prefixStatus):])}
	case strings.HasPrefix(line, prefixCreate):
		return Command{Kind: CmdCreateRoom, Arg: strings.TrimSpace(line[len(prefixCreate):])}
	case strings.HasPrefix(line, prefixJoin):
		return Command{Kind: CmdJoinRoom, Arg: strings.TrimSpace(line[len(prefixJoin):])}
	case strings.HasPrefix(line, prefixLeave):
		return Command{Kind: CmdLeaveRoom, Arg: strings.TrimSpace(line[len(prefixLeave):])}
	case strings.HasPrefix(line, prefixSwitch):
		return Command{Kind: CmdSwitchRoom, Arg: strings.TrimSpace(line[len(prefixSwitch):])}
	}
	return Command{Kind: CmdChat, Arg: line}
}

func ChatLine(nickname, text string) string {
	return PrefixChat + nickname + ": " + text
}

func SystemLine(text string) string {
	return PrefixSystem + text
}

// RoomListLine expects names already sorted.
func RoomListLine(names []string) string {
	return PrefixRoomList + strings.Join(names, ",")
}

func MyRoomsLine(names []string) string {
	return PrefixMyRooms + strings.Join(names, ",")
}

func RoomActiveLine(room string) string {
	return PrefixRoomActive + room
}

func UserListLine(room string, roster []RosterEntry) string {
	return PrefixUserList + room + ":" + encodeRoster(roster)
}

func AllUsersLine(roster []RosterEntry) string {
	return PrefixAllUsers + encodeRoster(roster)
}

func encodeRoster(roster []RosterEntry) string {
	var b strings.Builder
	for i, e := range roster {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(e.Nickname)
		b.WriteByte('|')
		b.WriteString(string(e.Status))
	}
	return b.String()
}

package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecode(t *testing.T) {
	cases := []struct {
		line string
		want Command
	}{
		{"status:AWAY", Command{Kind: CmdStatus, Arg: "AWAY"}},
		{"status: ACTIVE ", Command{Kind: CmdStatus, Arg: "ACTIVE"}},
		{"room:create:Tech", Command{Kind: CmdCreateRoom, Arg: "Tech"}},
		{"room:join:  Tech  ", Command{Kind: CmdJoinRoom, Arg: "Tech"}},
		{"room:leave:Tech\r", Command{Kind: CmdLeaveRoom, Arg: "Tech"}},
		{"room:switch:tech", Command{Kind: CmdSwitchRoom, Arg: "tech"}},
		{"room:join:   ", Command{Kind: CmdJoinRoom, Arg: ""}},
		{"room:list", Command{Kind: CmdListRooms}},
		{"/quit", Command{Kind: CmdQuit}},
		{"room:lists", Command{Kind: CmdChat, Arg: "room:lists"}},
		{"room:unknown:x", Command{Kind: CmdChat, Arg: "room:unknown:x"}},
		{"/quit now", Command{Kind: CmdChat, Arg: "/quit now"}},
		{"hello: world", Command{Kind: CmdChat, Arg: "hello: world"}},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Decode(tc.line), "line %q", tc.line)
	}
}

func TestCommand_NeedsRoom(t *testing.T) {
	assert.True(t, Decode("room:join:x").NeedsRoom())
	assert.True(t, Decode("room:create:x").NeedsRoom())
	assert.False(t, Decode("room:list").NeedsRoom())
	assert.False(t, Decode("status:AWAY").NeedsRoom())
	assert.False(t, Decode("hi").NeedsRoom())
}

func TestPayloadLines(t *testing.T) {
	roster := []RosterEntry{{"alice", StatusActive}, {"bob", StatusAway}}

	assert.Equal(t, "chat:alice: hello", ChatLine("alice", "hello"))
	assert.Equal(t, "system:bye", SystemLine("bye"))
	assert.Equal(t, "roomlist:Lobby,Tech", RoomListLine([]string{"Lobby", "Tech"}))
	assert.Equal(t, "myrooms:", MyRoomsLine(nil))
	assert.Equal(t, "roomactive:Tech", RoomActiveLine("Tech"))
	assert.Equal(t, "userlist:Tech:alice|ACTIVE,bob|AWAY", UserListLine("Tech", roster))
	assert.Equal(t, "userlist:Empty:", UserListLine("Empty", nil))
	assert.Equal(t, "allusers:alice|ACTIVE,bob|AWAY", AllUsersLine(roster))
	assert.Equal(t, "allusers:", AllUsersLine(nil))
}

func TestParseStatus(t *testing.T) {
	st, ok := ParseStatus("AWAY")
	assert.True(t, ok)
	assert.Equal(t, StatusAway, st)

	for _, bad := range []string{"", "away", "Sleeping"} {
		_, ok := ParseStatus(bad)
		assert.False(t, ok, "status %q", bad)
	}
}

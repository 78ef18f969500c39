package chat

import "log/slog"

// Recorder persists chat lines. Record must return promptly; failures are the
// recorder's to log.
type Recorder interface {
	Record(nickname, message, room string)
}

type NopRecorder struct{}

func (NopRecorder) Record(string, string, string) {}

// Dispatcher builds payloads from point-in-time snapshots of the registry and
// the room directory and pushes them to sinks.
type Dispatcher struct {
	sessions *Registry
	rooms    *Rooms
	recorder Recorder
	logger   *slog.Logger
}

func NewDispatcher(sessions *Registry, rooms *Rooms, recorder Recorder, logger *slog.Logger) *Dispatcher {
	if recorder == nil {
		recorder = NopRecorder{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{sessions: sessions, rooms: rooms, recorder: recorder, logger: logger}
}

func (d *Dispatcher) SendTo(nickname, line string) {
	sink, ok := d.sessions.Sink(nickname)
	if !ok {
		return
	}
	if !sink.Send(line) {
		d.logger.Debug("dropped outbound line", "nickname", nickname)
	}
}

func (d *Dispatcher) toRoom(room, line string) {
	for _, nick := range d.rooms.Members(room) {
		d.SendTo(nick, line)
	}
}

func (d *Dispatcher) toAll(line string) {
	for _, nick := range d.sessions.Nicknames() {
		d.SendTo(nick, line)
	}
}

func (d *Dispatcher) RoomListPayload() string {
	return RoomListLine(d.rooms.Names())
}

func (d *Dispatcher) AllUsersPayload() string {
	return AllUsersLine(d.sessions.Roster(d.sessions.Nicknames()))
}

func (d *Dispatcher) UserListPayload(room string) string {
	return UserListLine(room, d.sessions.Roster(d.rooms.Members(room)))
}

func (d *Dispatcher) MyRoomsPayload(nickname string) string {
	return MyRoomsLine(d.sessions.JoinedRooms(nickname))
}

func (d *Dispatcher) RoomActivePayload(nickname string) string {
	return RoomActiveLine(d.sessions.ActiveRoom(nickname))
}

// RoomRoster pushes room's userlist to its members.
func (d *Dispatcher) RoomRoster(room string) {
	d.toRoom(room, d.UserListPayload(room))
}

func (d *Dispatcher) RoomList() {
	d.toAll(d.RoomListPayload())
}

func (d *Dispatcher) AllUsers() {
	d.toAll(d.AllUsersPayload())
}

func (d *Dispatcher) SystemToRoom(room, text string) {
	d.toRoom(room, SystemLine(text))
}

// Snapshot sends the five-line state dump: roomlist, allusers, myrooms,
// roomactive and the active room's userlist.
func (d *Dispatcher) Snapshot(nickname string) {
	active := d.sessions.ActiveRoom(nickname)
	d.SendTo(nickname, d.RoomListPayload())
	d.SendTo(nickname, d.AllUsersPayload())
	d.SendTo(nickname, d.MyRoomsPayload(nickname))
	d.SendTo(nickname, RoomActiveLine(active))
	d.SendTo(nickname, d.UserListPayload(active))
}

// Chat records the line and fans it out to the sender's active room.
func (d *Dispatcher) Chat(sender, text string) {
	room := d.sessions.ActiveRoom(sender)
	d.record(sender, text, room)
	d.toRoom(room, ChatLine(sender, text))
}

// record never lets a recorder failure reach the fan-out.
func (d *Dispatcher) record(sender, text, room string) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("chat recorder panicked", "nickname", sender, "room", room, "panic", r)
		}
	}()
	d.recorder.Record(sender, text, room)
}

package chat

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strings"
	"time"
)

type SessionOptions struct {
	IdleTimeout  time.Duration // 0 disables the read deadline
	WriteTimeout time.Duration
	MaxLineBytes int
}

// writerDrainTimeout bounds how long teardown waits for queued lines to flush.
const writerDrainTimeout = 2 * time.Second

// HandleSession runs one connection: nickname handshake, then a sequential
// read loop feeding the hub. Teardown is submitted exactly once after a
// successful registration, whatever ends the loop.
func HandleSession(c *Client, hub *Hub, opts SessionOptions, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.MaxLineBytes <= 0 {
		opts.MaxLineBytes = 64 * 1024
	}
	logger = logger.With("conn_id", c.ID, "remote", remoteAddr(c.Conn))

	writerDone := StartOutboundWriter(c.Conn, c.Out, opts.WriteTimeout)
	registered := false
	defer func() {
		// Once registered the hub owns Out: either the unregister handler or the
		// hub's own shutdown closes it.
		if registered {
			hub.Submit(Event{Type: EventUnregister, Client: c, Nickname: c.Nickname})
		} else {
			c.CloseOut()
		}
		select {
		case <-writerDone:
		case <-time.After(writerDrainTimeout):
		}
		_ = c.Conn.Close()
	}()

	scanner := bufio.NewScanner(c.Conn)
	scanner.Buffer(make([]byte, 0, 4096), opts.MaxLineBytes)

	// Nickname handshake: rejected names are answered and another line is read.
	for {
		line, err := readLine(scanner, c.Conn, opts.IdleTimeout)
		if err != nil {
			logger.Info("connection closed before registration", "error", err)
			return
		}

		reply := make(chan error, 1)
		if !hub.Submit(Event{Type: EventRegister, Client: c, Nickname: line, ReplyChan: reply}) {
			return
		}
		var regErr error
		select {
		case err, ok := <-reply:
			if !ok {
				logger.Info("hub stopped during registration")
				return
			}
			regErr = err
		case <-hub.Done():
			return
		}
		if regErr == nil {
			break
		}
		switch {
		case errors.Is(regErr, ErrNicknameTaken):
			c.Send(SystemLine("nickname_taken"))
		case errors.Is(regErr, ErrNicknameInvalid):
			c.Send(SystemLine("nickname_invalid"))
		default:
			c.Send(SystemLine("register_failed"))
		}
	}
	registered = true
	logger = logger.With("nickname", c.Nickname)

	for {
		line, err := readLine(scanner, c.Conn, opts.IdleTimeout)
		if err != nil {
			logger.Info("connection closed", "error", err)
			return
		}

		cmd := Decode(line)
		switch {
		case cmd.Kind == CmdQuit:
			c.Send(SystemLine("bye"))
			logger.Info("client quit")
			return
		case cmd.NeedsRoom() && cmd.Arg == "":
			logger.Debug("ignored command without room", "command", cmd.Kind.String())
			continue
		}
		if !hub.Submit(eventFor(c, cmd)) {
			return
		}
	}
}

// readLine returns the next line without its terminator. A final line with no
// newline is still returned.
func readLine(s *bufio.Scanner, conn net.Conn, idle time.Duration) (string, error) {
	if idle > 0 {
		_ = conn.SetReadDeadline(time.Now().Add(idle))
	}
	if s.Scan() {
		return strings.TrimRight(s.Text(), "\r"), nil
	}
	if err := s.Err(); err != nil {
		return "", fmt.Errorf("read: %w", err)
	}
	return "", io.EOF
}

func remoteAddr(conn net.Conn) string {
	if conn == nil || conn.RemoteAddr() == nil {
		return ""
	}
	return conn.RemoteAddr().String()
}

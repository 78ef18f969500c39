package chat

import (
	"bufio"
	"net"
	"time"
)

// StartOutboundWriter drains out onto conn until out is closed or a write
// fails. The returned channel is closed when the writer exits.
func StartOutboundWriter(conn net.Conn, out <-chan string, writeTimeout time.Duration) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		w := bufio.NewWriter(conn)
		for msg := range out {
			if writeTimeout > 0 {
				_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			}
			if _, err := w.WriteString(msg + "\n"); err != nil {
				return
			}
			// Batch whatever is already queued into one flush.
			if len(out) > 0 {
				continue
			}
			if err := w.Flush(); err != nil {
				return
			}
		}
		_ = w.Flush()
	}()
	return done
}

package store

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
)

var persistWrites = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "chat_persist_writes_total",
	Help: "Chat log writes by result",
}, []string{"result"})

func init() {
	prometheus.MustRegister(persistWrites)
}

type writer interface {
	Create(ctx context.Context, entry *ChatLog) error
}

// Recorder writes chat lines in the background. Record never blocks the
// caller and failures are only logged.
type Recorder struct {
	repo    writer
	logger  *slog.Logger
	timeout time.Duration

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

func NewRecorder(repo writer, logger *slog.Logger, timeout time.Duration) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Recorder{repo: repo, logger: logger, timeout: timeout}
}

func (r *Recorder) Record(nickname, message, room string) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		r.logger.Warn("chat log dropped after close", "nickname", nickname, "room", room)
		persistWrites.WithLabelValues("dropped").Inc()
		return
	}
	r.wg.Add(1)
	r.mu.Unlock()

	entry := &ChatLog{
		ID:        uuid.NewString(),
		CreatedAt: time.Now(),
		Nickname:  nickname,
		Room:      room,
		Message:   message,
	}
	go func() {
		defer r.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()
		if err := r.repo.Create(ctx, entry); err != nil {
			r.logger.Warn("chat log write failed", "nickname", nickname, "room", room, "error", err)
			persistWrites.WithLabelValues("error").Inc()
			return
		}
		persistWrites.WithLabelValues("ok").Inc()
	}()
}

// Close rejects further records and waits for in-flight writes or ctx.
func (r *Recorder) Close(ctx context.Context) error {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

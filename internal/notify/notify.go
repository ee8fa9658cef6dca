// Package notify delivers transient user-facing notices. Successes and
// failures travel the same channel and differ only by level and text.
package notify

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Level distinguishes success notices from failures.
type Level string

const (
	LevelInfo  Level = "info"
	LevelError Level = "error"
)

// Notice is a single message shown to the user.
type Notice struct {
	ID      string    `json:"id"`
	Level   Level     `json:"level"`
	Message string    `json:"message"`
	Time    time.Time `json:"time"`
}

// Info builds a success notice.
func Info(format string, args ...any) Notice {
	return newNotice(LevelInfo, fmt.Sprintf(format, args...))
}

// Error builds a failure notice.
func Error(msg string) Notice {
	return newNotice(LevelError, msg)
}

func newNotice(level Level, msg string) Notice {
	return Notice{
		ID:      ulid.Make().String(),
		Level:   level,
		Message: msg,
		Time:    time.Now().UTC(),
	}
}

// Sink receives notices.
type Sink interface {
	Notify(ctx context.Context, n Notice)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, n Notice)

// Notify implements Sink.
func (f SinkFunc) Notify(ctx context.Context, n Notice) { f(ctx, n) }

// Multi fans a notice out to every sink.
type Multi []Sink

// Notify implements Sink.
func (m Multi) Notify(ctx context.Context, n Notice) {
	for _, s := range m {
		if s != nil {
			s.Notify(ctx, n)
		}
	}
}

// LogSink records notices in the structured log.
type LogSink struct {
	Logger *slog.Logger
}

// Notify implements Sink.
func (s LogSink) Notify(ctx context.Context, n Notice) {
	level := slog.LevelInfo
	if n.Level == LevelError {
		level = slog.LevelWarn
	}
	s.Logger.LogAttrs(ctx, level, "notice",
		slog.String("notice_id", n.ID),
		slog.String("message", n.Message))
}

// WriterSink prints notices one per line, for terminal use.
type WriterSink struct {
	mu sync.Mutex
	W  io.Writer
}

// NewWriterSink returns a sink printing to w.
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{W: w}
}

// Notify implements Sink.
func (s *WriterSink) Notify(_ context.Context, n Notice) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, _ = fmt.Fprintln(s.W, n.Message)
}

// Recorder keeps every notice in memory.
type Recorder struct {
	mu      sync.Mutex
	notices []Notice
}

// Notify implements Sink.
func (r *Recorder) Notify(_ context.Context, n Notice) {
	r.mu.Lock()
	r.notices = append(r.notices, n)
	r.mu.Unlock()
}

// Notices returns a copy of what has been recorded.
func (r *Recorder) Notices() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notice(nil), r.notices...)
}

// Last returns the most recent notice, if any.
func (r *Recorder) Last() (Notice, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notices) == 0 {
		return Notice{}, false
	}
	return r.notices[len(r.notices)-1], true
}

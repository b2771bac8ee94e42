package logging

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Message is a single buffered log record. Messages appended by remote
// clients over the log relay carry whatever attributes the client sent.
type Message struct {
	Timestamp time.Time      `json:"timestamp"`
	Level     string         `json:"level"`
	Message   string         `json:"message"`
	Attrs     map[string]any `json:"attrs,omitempty"`
}

// Buffer is an ordered, appendable, clearable collection of messages
// shared process-wide between the logger and the API layer. Insertion
// order is preserved; Clear empties the buffer without affecting future
// appends.
type Buffer struct {
	mu       sync.Mutex
	messages []Message
}

// NewBuffer creates an empty buffer.
func NewBuffer() *Buffer {
	return &Buffer{}
}

// Append adds a message to the end of the buffer.
func (b *Buffer) Append(m Message) {
	b.mu.Lock()
	b.messages = append(b.messages, m)
	b.mu.Unlock()
}

// Messages returns a copy of all buffered messages in insertion order.
func (b *Buffer) Messages() []Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Message, len(b.messages))
	copy(out, b.messages)
	return out
}

// Clear removes all buffered messages.
func (b *Buffer) Clear() {
	b.mu.Lock()
	b.messages = nil
	b.mu.Unlock()
}

// Len returns the number of buffered messages.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.messages)
}

// bufferHandler is a slog.Handler that appends every record to a Buffer
// before forwarding it to the terminal handler. Buffering ignores the
// terminal handler's level filter so the buffer sees everything.
type bufferHandler struct {
	next   slog.Handler
	buffer *Buffer
	attrs  []slog.Attr
}

func newBufferHandler(next slog.Handler, buffer *Buffer) *bufferHandler {
	return &bufferHandler{next: next, buffer: buffer}
}

func (h *bufferHandler) Enabled(ctx context.Context, level slog.Level) bool {
	// Always enabled so every record reaches the buffer; the terminal
	// handler applies its own level filter in Handle.
	return true
}

func (h *bufferHandler) Handle(ctx context.Context, r slog.Record) error {
	m := Message{
		Timestamp: r.Time,
		Level:     LevelName(r.Level),
		Message:   r.Message,
	}
	if r.NumAttrs() > 0 || len(h.attrs) > 0 {
		m.Attrs = make(map[string]any, r.NumAttrs()+len(h.attrs))
		for _, a := range h.attrs {
			m.Attrs[a.Key] = a.Value.Any()
		}
		r.Attrs(func(a slog.Attr) bool {
			m.Attrs[a.Key] = a.Value.Any()
			return true
		})
	}
	h.buffer.Append(m)

	if h.next.Enabled(ctx, r.Level) {
		return h.next.Handle(ctx, r)
	}
	return nil
}

func (h *bufferHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &bufferHandler{next: h.next.WithAttrs(attrs), buffer: h.buffer, attrs: merged}
}

func (h *bufferHandler) WithGroup(name string) slog.Handler {
	return &bufferHandler{next: h.next.WithGroup(name), buffer: h.buffer, attrs: h.attrs}
}

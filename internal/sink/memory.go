package sink

import (
	"bytes"
	"sync"
)

// MemorySink buffers frames in memory. Used by tests and by callers that
// want to hand a finished recording to another process themselves.
type MemorySink struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

// NewMemorySink creates an empty in-memory sink.
func NewMemorySink() *MemorySink { return &MemorySink{} }

// Write appends data to the in-memory buffer.
func (s *MemorySink) Write(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.buf.Write(data)
	return err
}

// Flush is a no-op for memory sinks.
func (s *MemorySink) Flush() error { return nil }

// Close is a no-op for memory sinks; the buffer stays readable.
func (s *MemorySink) Close() error { return nil }

// Type implements Sink.
func (s *MemorySink) Type() string { return "memory" }

// Bytes returns a copy of everything written so far.
func (s *MemorySink) Bytes() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]byte, s.buf.Len())
	copy(out, s.buf.Bytes())
	return out
}

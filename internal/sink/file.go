package sink

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
)

// fileBufferSize is the bufio buffer in front of the file. Frames are small
// (a compressed column each), so 256KB absorbs most Log calls without a
// syscall.
const fileBufferSize = 256 * 1024

// FileSink appends frames to a single recording file.
type FileSink struct {
	path   string
	file   *os.File
	buf    *bufio.Writer
	mu     sync.Mutex
	closed bool
	logger zerolog.Logger
}

// NewFileSink creates the recording file at path, truncating any previous
// recording, and creates parent directories as needed.
func NewFileSink(path string, logger zerolog.Logger) (*FileSink, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create recording directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to create recording file: %w", err)
	}
	return &FileSink{
		path:   path,
		file:   f,
		buf:    bufio.NewWriterSize(f, fileBufferSize),
		logger: logger.With().Str("component", "file-sink").Logger(),
	}, nil
}

// Write appends data to the recording file.
func (s *FileSink) Write(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("sink closed: %s", s.path)
	}
	if _, err := s.buf.Write(data); err != nil {
		return fmt.Errorf("failed to write to %s: %w", s.path, err)
	}
	return nil
}

// Flush flushes buffered frames to the file.
func (s *FileSink) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	if err := s.buf.Flush(); err != nil {
		return fmt.Errorf("failed to flush %s: %w", s.path, err)
	}
	return nil
}

// Close flushes and closes the recording file.
func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if err := s.buf.Flush(); err != nil {
		s.file.Close()
		return fmt.Errorf("failed to flush %s: %w", s.path, err)
	}
	if err := s.file.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", s.path, err)
	}
	s.logger.Debug().Str("path", s.path).Msg("Recording file closed")
	return nil
}

// Type implements Sink.
func (s *FileSink) Type() string { return "file" }

// Path returns the recording file path.
func (s *FileSink) Path() string { return s.path }

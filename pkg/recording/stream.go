package recording

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/datalooms/loom/internal/config"
	"github.com/datalooms/loom/internal/sink"
	"github.com/datalooms/loom/pkg/archetype"
)

// writeOp is one unit of work for the background writer: a contiguous run
// of frames to append, or a flush request, or both.
type writeOp struct {
	data  []byte
	flush chan error
}

// Stream serializes archetypes and appends the framed result to a sink.
// Log calls serialize and encode synchronously but hand the sink write to a
// single background writer, so a slow disk does not stall the caller until
// the queue is full. All frames of one Log call are appended atomically and
// sequence numbers match file order.
type Stream struct {
	appID     string
	recording uuid.UUID
	enc       *Encoder
	snk       sink.Sink

	// mu orders encode+enqueue so sequence numbers are monotone in the file.
	mu     sync.Mutex
	seq    uint64
	closed bool

	queue chan writeOp
	group *errgroup.Group

	errMu    sync.Mutex
	writeErr error

	logger zerolog.Logger
}

// NewStream creates a recording stream writing to snk. The stream owns the
// sink and closes it on Close.
func NewStream(cfg *config.RecordingConfig, appID string, snk sink.Sink, logger zerolog.Logger) (*Stream, error) {
	enc, err := NewEncoder()
	if err != nil {
		return nil, err
	}
	if err := snk.Write([]byte(Magic)); err != nil {
		return nil, fmt.Errorf("failed to write recording magic: %w", err)
	}

	s := &Stream{
		appID:     appID,
		recording: uuid.New(),
		enc:       enc,
		snk:       snk,
		queue:     make(chan writeOp, cfg.FlushQueueSize),
		group:     &errgroup.Group{},
		logger:    logger.With().Str("component", "recording-stream").Str("app_id", appID).Logger(),
	}
	s.group.Go(s.runWriter)

	s.logger.Info().
		Str("recording_id", s.recording.String()).
		Str("sink", snk.Type()).
		Msg("Recording stream started")
	return s, nil
}

// RecordingID returns the stream's unique recording ID.
func (s *Stream) RecordingID() uuid.UUID { return s.recording }

// runWriter drains the queue. Write failures are sticky: the first error is
// kept and returned by the next Flush or Close, and later frames are
// dropped, matching the terminal error model of the sinks.
func (s *Stream) runWriter() error {
	for op := range s.queue {
		if op.data != nil && s.loadErr() == nil {
			if err := s.snk.Write(op.data); err != nil {
				s.storeErr(err)
				s.logger.Error().Err(err).Msg("Sink write failed, recording is truncated")
			}
		}
		if op.flush != nil {
			err := s.loadErr()
			if err == nil {
				err = s.snk.Flush()
			}
			op.flush <- err
		}
	}
	return s.loadErr()
}

func (s *Stream) storeErr(err error) {
	s.errMu.Lock()
	if s.writeErr == nil {
		s.writeErr = err
	}
	s.errMu.Unlock()
}

func (s *Stream) loadErr() error {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	return s.writeErr
}

// Log serializes the archetype and appends its batches under the given
// entity path. Serialization and encoding errors are returned immediately;
// sink errors surface on Flush or Close.
func (s *Stream) Log(entityPath string, a archetype.Archetype) error {
	batches, err := archetype.Serialize(a)
	if err != nil {
		return fmt.Errorf("failed to serialize %s: %w", a.Name(), err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("stream closed")
	}

	var buf bytes.Buffer
	seq := s.seq
	for _, b := range batches {
		frame, err := s.enc.EncodeBatch(s.header(entityPath, seq), b)
		if err != nil {
			return fmt.Errorf("failed to encode %s: %w", a.Name(), err)
		}
		buf.Write(frame)
		seq++
	}

	// Commit sequence numbers only once every frame of the call encoded, so
	// a failed call leaves no gap.
	s.seq = seq
	s.queue <- writeOp{data: buf.Bytes()}
	return nil
}

// LogColumns partitions the archetype into row-disjoint column groups and
// appends one run of frames per group, for multi-timestamp columnar writes.
func (s *Stream) LogColumns(entityPath string, a archetype.Archetype, lengths []int) error {
	groups, err := archetype.Columns(a, lengths)
	if err != nil {
		return fmt.Errorf("failed to partition %s: %w", a.Name(), err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("stream closed")
	}

	var buf bytes.Buffer
	seq := s.seq
	for _, group := range groups {
		for _, b := range group.Batches {
			frame, err := s.enc.EncodeBatch(s.header(entityPath, seq), b)
			if err != nil {
				return fmt.Errorf("failed to encode %s: %w", a.Name(), err)
			}
			buf.Write(frame)
			seq++
		}
	}

	s.seq = seq
	s.queue <- writeOp{data: buf.Bytes()}
	return nil
}

// header builds a frame header. Caller holds s.mu and commits seq to s.seq
// only after its whole run of frames encoded.
func (s *Stream) header(entityPath string, seq uint64) FrameHeader {
	return FrameHeader{
		Recording:  s.recording.String(),
		EntityPath: entityPath,
		Sequence:   seq,
	}
}

// Flush blocks until every queued frame has reached the sink and reports
// any write error encountered so far.
func (s *Stream) Flush() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return s.loadErr()
	}
	ack := make(chan error, 1)
	s.queue <- writeOp{flush: ack}
	s.mu.Unlock()
	return <-ack
}

// Close drains the queue, closes the sink, and returns the first error
// encountered. The stream is unusable afterwards.
func (s *Stream) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.queue)
	s.mu.Unlock()

	err := s.group.Wait()
	if closeErr := s.snk.Close(); err == nil {
		err = closeErr
	}

	s.logger.Info().
		Str("recording_id", s.recording.String()).
		Uint64("frames", s.seq).
		Msg("Recording stream closed")
	return err
}

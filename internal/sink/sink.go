// Package sink provides the byte-level destinations recording streams write
// framed chunks to.
package sink

// Sink is an append-only destination for encoded frames. Implementations
// must allow concurrent Write calls; frame boundaries are the caller's
// responsibility, so each Write must land atomically in order.
type Sink interface {
	// Write appends one or more complete frames.
	Write(data []byte) error
	// Flush forces buffered data to the underlying medium.
	Flush() error
	// Close flushes and releases the sink. The sink is unusable afterwards.
	Close() error
	// Type returns the sink type name for logs and diagnostics.
	Type() string
}

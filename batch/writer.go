package batch

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/cwbudde/algo-storir/synth"
)

// Writer persists finished impulse responses. WriteImpulse is called from
// several I/O workers at once and must be safe for concurrent use.
type Writer interface {
	WriteImpulse(ctx context.Context, buf synth.Buffer) error
}

// WriterFunc adapts a function to the Writer interface.
type WriterFunc func(ctx context.Context, buf synth.Buffer) error

// WriteImpulse implements Writer.
func (f WriterFunc) WriteImpulse(ctx context.Context, buf synth.Buffer) error {
	return f(ctx, buf)
}

// MemoryWriter keeps every written buffer in memory, keyed by draw index.
type MemoryWriter struct {
	mu   sync.Mutex
	bufs map[int]synth.Buffer
}

// WriteImpulse implements Writer.
func (m *MemoryWriter) WriteImpulse(_ context.Context, buf synth.Buffer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.bufs == nil {
		m.bufs = make(map[int]synth.Buffer)
	}
	m.bufs[buf.Index] = buf
	return nil
}

// Buffers returns the written buffers ordered by draw index.
func (m *MemoryWriter) Buffers() []synth.Buffer {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]synth.Buffer, 0, len(m.bufs))
	for _, idx := range slices.Sorted(maps.Keys(m.bufs)) {
		out = append(out, m.bufs[idx])
	}
	return out
}

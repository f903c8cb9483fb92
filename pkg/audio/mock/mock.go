// Package mock provides an in-memory [audio.Stream] that replays a scripted
// chunk sequence, for use in unit tests.
package mock

import (
	"context"
	"io"
	"sync"
)

// Stream replays a scripted sequence of sample chunks. After the script is
// exhausted it returns Err if set, io.EOF otherwise. Safe for concurrent use.
type Stream struct {
	mu sync.Mutex

	// Chunks is the scripted sequence returned by successive ReadChunk calls.
	Chunks [][]int16

	// Err, when set, is returned once the script is exhausted (instead of io.EOF).
	Err error

	// ReadCount records how many times ReadChunk was called.
	ReadCount int

	next int
}

func (s *Stream) ReadChunk(ctx context.Context) ([]int16, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ReadCount++
	if s.next >= len(s.Chunks) {
		if s.Err != nil {
			return nil, s.Err
		}
		return nil, io.EOF
	}
	chunk := s.Chunks[s.next]
	s.next++
	return chunk, nil
}

// Silence returns n chunks of size samples of pure silence.
func Silence(n, size int) [][]int16 {
	chunks := make([][]int16, n)
	for i := range chunks {
		chunks[i] = make([]int16, size)
	}
	return chunks
}

// Tone returns n chunks of size samples at a constant amplitude, loud enough
// to clear any reasonable silence threshold.
func Tone(n, size int, amplitude int16) [][]int16 {
	chunks := make([][]int16, n)
	for i := range chunks {
		chunk := make([]int16, size)
		for j := range chunk {
			chunk[j] = amplitude
		}
		chunks[i] = chunk
	}
	return chunks
}

package capture

import "strings"

// Sink is the output buffer a render attempt appends to. *bytes.Buffer
// satisfies it directly; engines that emit output as a sequence of fragments
// can use ChunkSink. A sink must not be read concurrently with a capture.
type Sink interface {
	WriteString(s string) (int, error)
	Len() int
	Bytes() []byte
	Truncate(n int)
}

// Capture runs block, which appends its output to sink, and returns exactly
// the text the block appended, removed from the sink so it does not appear in
// the final output at its original position. A block that appends nothing
// yields an empty fragment.
//
// If the block fails, the sink is left with the partial appends in place; the
// surrounding render attempt is expected to unwind and discard its output.
func Capture(sink Sink, block func() error) (string, error) {
	mark := sink.Len()
	if err := block(); err != nil {
		return "", err
	}
	fragment := string(sink.Bytes()[mark:])
	sink.Truncate(mark)
	return fragment, nil
}

// ChunkSink accumulates output as a sequence of string fragments and flattens
// them on demand. It serves engines that produce chunked output rather than a
// single contiguous buffer.
type ChunkSink struct {
	chunks []string
	size   int
}

func (s *ChunkSink) WriteString(str string) (int, error) {
	if str != "" {
		s.chunks = append(s.chunks, str)
		s.size += len(str)
	}
	return len(str), nil
}

// Len returns the total byte length across all chunks.
func (s *ChunkSink) Len() int { return s.size }

// Bytes flattens the chunk sequence into a single byte slice.
func (s *ChunkSink) Bytes() []byte {
	var sb strings.Builder
	sb.Grow(s.size)
	for _, chunk := range s.chunks {
		sb.WriteString(chunk)
	}
	return []byte(sb.String())
}

// Truncate discards all but the first n bytes, splitting a chunk if the
// boundary falls inside one.
func (s *ChunkSink) Truncate(n int) {
	if n <= 0 {
		s.chunks = nil
		s.size = 0
		return
	}
	if n >= s.size {
		return
	}
	kept := make([]string, 0, len(s.chunks))
	remaining := n
	for _, chunk := range s.chunks {
		if remaining == 0 {
			break
		}
		if len(chunk) <= remaining {
			kept = append(kept, chunk)
			remaining -= len(chunk)
			continue
		}
		kept = append(kept, chunk[:remaining])
		remaining = 0
	}
	s.chunks = kept
	s.size = n
}

// String returns the flattened content.
func (s *ChunkSink) String() string { return string(s.Bytes()) }

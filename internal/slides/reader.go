package slides

import (
	"bufio"
	"bytes"
	"io"

	"slidecast-go/internal/constants"
)

// Event is one decoded SSE payload from the explain stream.
type Event struct {
	Raw []byte
}

// StreamReader iterates over SSE events from a byte stream. Scanning
// is line based: blank lines delimit events, `data:` lines carry the
// payload, and a `[DONE]` payload ends the stream. Splitting at '\n'
// bytes keeps multi-byte UTF-8 sequences intact even when the
// underlying reader delivers them across read boundaries.
type StreamReader struct {
	scanner *bufio.Scanner
	pending [][]byte
}

// NewStreamReader creates a reader with standard buffer settings.
func NewStreamReader(r io.Reader) *StreamReader {
	scanner := bufio.NewScanner(r)
	buf := make([]byte, 0, constants.SSEScannerInitialBufferSize)
	scanner.Buffer(buf, constants.SSEScannerMaxBufferSize)
	return &StreamReader{scanner: scanner}
}

var doneMarker = []byte("[DONE]")

// Next returns the next event payload. When done is true the stream
// finished, either via the [DONE] marker or EOF.
func (s *StreamReader) Next() (*Event, bool, error) {
	for s.scanner.Scan() {
		line := bytes.TrimRight(s.scanner.Bytes(), "\r")

		if len(line) == 0 {
			// Blank line: event boundary. Flush accumulated data lines.
			if evt := s.flush(); evt != nil {
				return evt, false, nil
			}
			continue
		}

		if !bytes.HasPrefix(line, []byte("data:")) {
			// event:/id:/retry: fields and comments are ignored.
			continue
		}
		data := bytes.TrimPrefix(line[len("data:"):], []byte(" "))
		if bytes.EqualFold(bytes.TrimSpace(data), doneMarker) {
			return nil, true, nil
		}
		s.pending = append(s.pending, append([]byte(nil), data...))
	}
	if err := s.scanner.Err(); err != nil {
		return nil, false, err
	}
	// EOF with a trailing unterminated event still counts.
	if evt := s.flush(); evt != nil {
		return evt, false, nil
	}
	return nil, true, nil
}

func (s *StreamReader) flush() *Event {
	if len(s.pending) == 0 {
		return nil
	}
	raw := bytes.Join(s.pending, []byte("\n"))
	s.pending = s.pending[:0]
	return &Event{Raw: raw}
}

package slides

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func drain(t *testing.T, r *StreamReader) []string {
	t.Helper()
	var out []string
	for {
		evt, done, err := r.Next()
		require.NoError(t, err)
		if done {
			return out
		}
		out = append(out, string(evt.Raw))
	}
}

func TestStreamReaderBasic(t *testing.T) {
	stream := "data: {\"a\":1}\n\ndata: {\"b\":2}\n\ndata: [DONE]\n\n"
	got := drain(t, NewStreamReader(strings.NewReader(stream)))
	require.Equal(t, []string{`{"a":1}`, `{"b":2}`}, got)
}

func TestStreamReaderCRLFAndNoSpace(t *testing.T) {
	stream := "data:{\"a\":1}\r\n\r\ndata: [DONE]\r\n\r\n"
	got := drain(t, NewStreamReader(strings.NewReader(stream)))
	require.Equal(t, []string{`{"a":1}`}, got)
}

func TestStreamReaderIgnoresOtherFields(t *testing.T) {
	stream := "event: chunk\nid: 7\n: comment\ndata: {\"a\":1}\n\n"
	got := drain(t, NewStreamReader(strings.NewReader(stream)))
	require.Equal(t, []string{`{"a":1}`}, got)
}

func TestStreamReaderMultiDataLines(t *testing.T) {
	// Per the SSE spec consecutive data lines join with a newline.
	stream := "data: {\"a\":\ndata: 1}\n\n"
	got := drain(t, NewStreamReader(strings.NewReader(stream)))
	require.Equal(t, []string{"{\"a\":\n1}"}, got)
}

func TestStreamReaderEOFWithoutDone(t *testing.T) {
	stream := "data: {\"a\":1}\n\ndata: {\"b\":2}"
	got := drain(t, NewStreamReader(strings.NewReader(stream)))
	require.Equal(t, []string{`{"a":1}`, `{"b":2}`}, got)
}

// chunkedReader yields the source a few bytes at a time to simulate
// network reads landing in the middle of multi-byte runes.
type chunkedReader struct {
	data []byte
	pos  int
	step int
}

func (c *chunkedReader) Read(p []byte) (int, error) {
	if c.pos >= len(c.data) {
		return 0, io.EOF
	}
	n := c.step
	if c.pos+n > len(c.data) {
		n = len(c.data) - c.pos
	}
	copy(p, c.data[c.pos:c.pos+n])
	c.pos += n
	return n, nil
}

func TestStreamReaderUTF8AcrossReadBoundaries(t *testing.T) {
	payload := `{"text":"日本語のキャプション ✨"}`
	stream := "data: " + payload + "\n\ndata: [DONE]\n\n"
	// step 3 guarantees some reads split inside a UTF-8 sequence
	r := NewStreamReader(&chunkedReader{data: []byte(stream), step: 3})
	got := drain(t, r)
	require.Equal(t, []string{payload}, got)
}

func TestStreamReaderDoneCaseInsensitive(t *testing.T) {
	stream := "data: {\"a\":1}\n\ndata: [done]\n\ndata: {\"b\":2}\n\n"
	got := drain(t, NewStreamReader(strings.NewReader(stream)))
	require.Equal(t, []string{`{"a":1}`}, got)
}

package common

import (
	"bufio"
	"bytes"
	"io"

	"slidecast-go/internal/constants"

	"github.com/tidwall/gjson"
)

// SSEEvent is one parsed upstream SSE payload.
type SSEEvent struct {
	Raw []byte
}

// SSEScanner iterates over data events of an upstream SSE stream.
type SSEScanner struct {
	scanner *bufio.Scanner
}

// NewSSEScanner creates a scanner with standard buffer settings. Scanning
// splits on newline bytes only, so multi-byte characters inside a data
// line are never cut.
func NewSSEScanner(r io.Reader) *SSEScanner {
	scanner := bufio.NewScanner(r)
	buf := make([]byte, 0, constants.SSEScannerInitialBufferSize)
	scanner.Buffer(buf, constants.SSEScannerMaxBufferSize)
	return &SSEScanner{scanner: scanner}
}

// Next returns the next SSE data event. When done is true, the stream
// finished, either via [DONE] or EOF. Lines that are not valid JSON data
// events are skipped.
func (s *SSEScanner) Next() (*SSEEvent, bool, error) {
	for s.scanner.Scan() {
		line := bytes.TrimRight(s.scanner.Bytes(), "\r")
		if !bytes.HasPrefix(line, []byte("data:")) {
			continue
		}
		data := bytes.TrimSpace(line[len("data:"):])
		if len(data) == 0 {
			continue
		}
		if bytes.EqualFold(data, []byte("[DONE]")) {
			return nil, true, nil
		}
		if !gjson.ValidBytes(data) {
			continue
		}
		return &SSEEvent{Raw: append([]byte(nil), data...)}, false, nil
	}
	if err := s.scanner.Err(); err != nil {
		return nil, false, err
	}
	return nil, true, nil
}

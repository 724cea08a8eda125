package common

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSSEWriteEvent(t *testing.T) {
	rec := httptest.NewRecorder()
	require.NoError(t, SSEWriteEvent(rec, nil, "slide", map[string]any{"index": 0}))
	body := rec.Body.String()
	require.True(t, strings.HasPrefix(body, "event: slide\n"))
	require.Contains(t, body, `data: {"index":0}`)
	require.True(t, strings.HasSuffix(body, "\n\n"))
}

func TestSSEWriteDataAndDone(t *testing.T) {
	rec := httptest.NewRecorder()
	require.NoError(t, SSEWriteData(rec, nil, map[string]string{"a": "b"}))
	require.NoError(t, SSEWriteDone(rec, nil))
	require.Equal(t, "data: {\"a\":\"b\"}\n\ndata: [DONE]\n\n", rec.Body.String())
}

func TestSSEScannerSkipsNoise(t *testing.T) {
	stream := strings.Join([]string{
		": comment",
		"event: ping",
		"data: {\"n\":1}",
		"",
		"data: not json",
		"data: {\"n\":2}",
		"",
		"data: [DONE]",
		"data: {\"n\":3}",
		"",
	}, "\n")

	s := NewSSEScanner(strings.NewReader(stream))

	ev, done, err := s.Next()
	require.NoError(t, err)
	require.False(t, done)
	require.JSONEq(t, `{"n":1}`, string(ev.Raw))

	ev, done, err = s.Next()
	require.NoError(t, err)
	require.False(t, done)
	require.JSONEq(t, `{"n":2}`, string(ev.Raw))

	_, done, err = s.Next()
	require.NoError(t, err)
	require.True(t, done)
}

func TestSSEScannerEOFWithoutDone(t *testing.T) {
	s := NewSSEScanner(strings.NewReader("data: {\"n\":1}\n\n"))
	_, done, err := s.Next()
	require.NoError(t, err)
	require.False(t, done)
	_, done, err = s.Next()
	require.NoError(t, err)
	require.True(t, done)
}

package slides

import (
	"encoding/base64"
	"fmt"

	"github.com/tidwall/gjson"
)

// DefaultImageMIME is assumed when an inlineData part omits its mimeType.
const DefaultImageMIME = "image/png"

// ParseChunk extracts fragments from one streamed response payload.
// The payload may be a direct `{"candidates": [...]}` body or the
// `{"response": {...}}` envelope some proxies wrap it in. A chunk with
// no usable parts yields an empty slice, not an error.
func ParseChunk(payload []byte) ([]Fragment, error) {
	if !gjson.ValidBytes(payload) {
		return nil, fmt.Errorf("invalid chunk JSON")
	}
	root := gjson.ParseBytes(payload)
	if r := root.Get("response"); r.Exists() {
		root = r
	}

	parts := root.Get("candidates.0.content.parts")
	if !parts.Exists() {
		return nil, nil
	}

	var frags []Fragment
	var parseErr error
	parts.ForEach(func(_, part gjson.Result) bool {
		if t := part.Get("text"); t.Exists() && t.String() != "" {
			frags = append(frags, Fragment{Text: t.String()})
			return true
		}
		if in := part.Get("inlineData"); in.Exists() {
			data := in.Get("data").String()
			if data == "" {
				return true
			}
			raw, err := base64.StdEncoding.DecodeString(data)
			if err != nil {
				parseErr = fmt.Errorf("decode inline image: %w", err)
				return false
			}
			mime := in.Get("mimeType").String()
			if mime == "" {
				mime = DefaultImageMIME
			}
			frags = append(frags, Fragment{Image: &Image{MIMEType: mime, Data: raw}})
		}
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}
	return frags, nil
}

// FinishReason returns the finishReason of the first candidate, if any.
func FinishReason(payload []byte) string {
	root := gjson.ParseBytes(payload)
	if r := root.Get("response"); r.Exists() {
		root = r
	}
	return root.Get("candidates.0.finishReason").String()
}

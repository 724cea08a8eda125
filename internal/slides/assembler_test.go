package slides

import (
	"encoding/base64"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

var pngByte = []byte{0x89, 0x50, 0x4e, 0x47}

func textChunk(text string) []byte {
	return []byte(fmt.Sprintf(`{"candidates":[{"content":{"parts":[{"text":%q}]}}]}`, text))
}

func imageChunk(data []byte, mime string) []byte {
	b64 := base64.StdEncoding.EncodeToString(data)
	if mime == "" {
		return []byte(fmt.Sprintf(`{"candidates":[{"content":{"parts":[{"inlineData":{"data":%q}}]}}]}`, b64))
	}
	return []byte(fmt.Sprintf(`{"candidates":[{"content":{"parts":[{"inlineData":{"mimeType":%q,"data":%q}}]}}]}`, mime, b64))
}

func collect(asm **Assembler) *[]Slide {
	out := &[]Slide{}
	*asm = NewAssembler(func(s Slide) { *out = append(*out, s) })
	return out
}

func TestAssemblerTextThenImage(t *testing.T) {
	var asm *Assembler
	out := collect(&asm)

	require.NoError(t, asm.PushChunk(textChunk("The sun ")))
	require.NoError(t, asm.PushChunk(textChunk("is a star.")))
	require.Empty(t, *out, "no slide before the image arrives")

	require.NoError(t, asm.PushChunk(imageChunk(pngByte, "image/png")))
	require.Len(t, *out, 1)
	require.Equal(t, 0, (*out)[0].Index)
	require.Equal(t, "The sun is a star.", (*out)[0].Caption)
	require.Equal(t, "image/png", (*out)[0].Image.MIMEType)
	require.Equal(t, pngByte, (*out)[0].Image.Data)
}

func TestAssemblerImageThenText(t *testing.T) {
	var asm *Assembler
	out := collect(&asm)

	require.NoError(t, asm.PushChunk(imageChunk(pngByte, "image/jpeg")))
	require.Empty(t, *out)

	require.NoError(t, asm.PushChunk(textChunk("A caption after the fact.")))
	require.Len(t, *out, 1)
	require.Equal(t, "A caption after the fact.", (*out)[0].Caption)
	require.Equal(t, "image/jpeg", (*out)[0].Image.MIMEType)
}

func TestAssemblerMultipleSlidesKeepOrder(t *testing.T) {
	var asm *Assembler
	out := collect(&asm)

	for i := 0; i < 3; i++ {
		require.NoError(t, asm.PushChunk(textChunk(fmt.Sprintf("slide %d", i))))
		require.NoError(t, asm.PushChunk(imageChunk(pngByte, "")))
	}
	require.Len(t, *out, 3)
	for i, s := range *out {
		require.Equal(t, i, s.Index)
		require.Equal(t, fmt.Sprintf("slide %d", i), s.Caption)
		require.Equal(t, DefaultImageMIME, s.Image.MIMEType)
	}
	require.Equal(t, 3, asm.Count())
}

func TestAssemblerMixedChunkPairsImageWithPrecedingCaption(t *testing.T) {
	// One chunk carrying [image for slide 0, text opening slide 1] must
	// not swallow the new text into slide 0.
	var asm *Assembler
	out := collect(&asm)

	require.NoError(t, asm.PushChunk(textChunk("first caption")))
	b64 := base64.StdEncoding.EncodeToString(pngByte)
	mixed := fmt.Sprintf(`{"candidates":[{"content":{"parts":[{"inlineData":{"mimeType":"image/png","data":%q}},{"text":"second caption"}]}}]}`, b64)
	require.NoError(t, asm.PushChunk([]byte(mixed)))

	require.Len(t, *out, 1)
	require.Equal(t, "first caption", (*out)[0].Caption)

	caption, img := asm.Remainder()
	require.Equal(t, "second caption", caption)
	require.Nil(t, img)
}

func TestAssemblerTrailingCaptionNotEmitted(t *testing.T) {
	var asm *Assembler
	out := collect(&asm)

	require.NoError(t, asm.PushChunk(textChunk("caption")))
	require.NoError(t, asm.PushChunk(imageChunk(pngByte, "")))
	require.NoError(t, asm.PushChunk(textChunk("dangling outro text")))

	require.Len(t, *out, 1)
	caption, img := asm.Remainder()
	require.Equal(t, "dangling outro text", caption)
	require.Nil(t, img)
}

func TestAssemblerWhitespaceOnlyCaptionDoesNotComplete(t *testing.T) {
	var asm *Assembler
	out := collect(&asm)

	require.NoError(t, asm.PushChunk(textChunk("\n\n")))
	require.NoError(t, asm.PushChunk(imageChunk(pngByte, "")))
	require.Empty(t, *out, "whitespace is not a caption")

	require.NoError(t, asm.PushChunk(textChunk("real caption")))
	require.Len(t, *out, 1)
}

func TestAssemblerEmptyAndEnvelopeChunks(t *testing.T) {
	var asm *Assembler
	out := collect(&asm)

	// empty parts / metadata-only chunks are no-ops
	require.NoError(t, asm.PushChunk([]byte(`{"candidates":[{"content":{"parts":[]}}]}`)))
	require.NoError(t, asm.PushChunk([]byte(`{"usageMetadata":{"totalTokenCount":12}}`)))

	// proxy envelope form unwraps
	env := fmt.Sprintf(`{"response":{"candidates":[{"content":{"parts":[{"text":"wrapped"},{"inlineData":{"data":%q}}]}}]}}`,
		base64.StdEncoding.EncodeToString(pngByte))
	require.NoError(t, asm.PushChunk([]byte(env)))

	require.Len(t, *out, 1)
	require.Equal(t, "wrapped", (*out)[0].Caption)
}

func TestPushChunkMalformed(t *testing.T) {
	var asm *Assembler
	out := collect(&asm)

	require.Error(t, asm.PushChunk([]byte(`{not json`)))
	require.Error(t, asm.PushChunk(imageChunkBadBase64()))

	// the assembler keeps working afterwards
	require.NoError(t, asm.PushChunk(textChunk("ok")))
	require.NoError(t, asm.PushChunk(imageChunk(pngByte, "")))
	require.Len(t, *out, 1)
}

func imageChunkBadBase64() []byte {
	return []byte(`{"candidates":[{"content":{"parts":[{"inlineData":{"data":"%%%not-base64%%%"}}]}}]}`)
}

func TestFinishReason(t *testing.T) {
	require.Equal(t, "STOP", FinishReason([]byte(`{"candidates":[{"finishReason":"STOP"}]}`)))
	require.Equal(t, "STOP", FinishReason([]byte(`{"response":{"candidates":[{"finishReason":"STOP"}]}}`)))
	require.Equal(t, "", FinishReason(textChunk("x")))
}

package guard

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"warden/internal/agent/ports"
)

var (
	jpegBytes = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00, 0x01}
	pngBytes  = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0x00, 0x00, 0x00, 0x0D}
	pdfBytes  = []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\n")
)

func imageReadResult(path, declared string, payload []byte) *ports.ToolResult {
	return &ports.ToolResult{
		CallID: "call-1",
		Content: []ports.ContentBlock{
			ports.TextBlock("Read image file [" + declared + "]: " + path),
			ports.ImageBlock(base64.StdEncoding.EncodeToString(payload), declared),
		},
	}
}

func TestNormalizeReadResultNoImageBlock(t *testing.T) {
	res := &ports.ToolResult{Content: []ports.ContentBlock{ports.TextBlock("hello")}}
	out, err := NormalizeReadResult(res, "/tmp/a.txt")
	require.NoError(t, err)
	assert.Same(t, res, out)
}

func TestNormalizeReadResultEmptyPayload(t *testing.T) {
	res := &ports.ToolResult{
		Content: []ports.ContentBlock{ports.ImageBlock("   ", "image/png")},
	}
	_, err := NormalizeReadResult(res, "/tmp/empty.png")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrResultIntegrity)
	assert.Contains(t, err.Error(), "/tmp/empty.png")
	assert.Contains(t, err.Error(), "empty image payload")
}

func TestNormalizeReadResultRewritesMismatchedImageType(t *testing.T) {
	res := imageReadResult("/tmp/photo.png", "image/png", jpegBytes)
	out, err := NormalizeReadResult(res, "/tmp/photo.png")
	require.NoError(t, err)
	require.NotSame(t, res, out)

	assert.Equal(t, "image/jpeg", out.Content[1].MediaType)
	assert.Equal(t, "Read image file [image/jpeg]: /tmp/photo.png", out.Content[0].Text)

	// The original result must stay untouched.
	assert.Equal(t, "image/png", res.Content[1].MediaType)
	assert.Contains(t, res.Content[0].Text, "[image/png]")
}

func TestNormalizeReadResultMatchingTypeUnchanged(t *testing.T) {
	res := imageReadResult("/tmp/photo.png", "image/png", pngBytes)
	out, err := NormalizeReadResult(res, "/tmp/photo.png")
	require.NoError(t, err)
	assert.Same(t, res, out)
}

func TestNormalizeReadResultNonImageContentFails(t *testing.T) {
	res := imageReadResult("/tmp/fake.png", "image/png", pdfBytes)
	_, err := NormalizeReadResult(res, "/tmp/fake.png")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrResultIntegrity)
	assert.Contains(t, err.Error(), "image/png")
	assert.Contains(t, err.Error(), "application/pdf")
}

func TestNormalizeReadResultUndecodablePayloadTrustsDeclared(t *testing.T) {
	res := &ports.ToolResult{
		Content: []ports.ContentBlock{ports.ImageBlock("!!!not-base64!!!", "image/png")},
	}
	out, err := NormalizeReadResult(res, "/tmp/a.png")
	require.NoError(t, err)
	assert.Same(t, res, out)
}

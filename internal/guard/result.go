package guard

import (
	"encoding/base64"
	"regexp"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"warden/internal/agent/ports"
)

// Base64 payload prefix used for content sniffing: 4096 encoded characters
// decode to 3072 bytes, the default detection window of the mimetype library.
// Decoding must stop on a 4-character boundary or the prefix is invalid.
const sniffPrefixChars = 4096

var imageHeaderPattern = regexp.MustCompile(`^(Read image file \[)([^\]]+)(\])`)

// NormalizeReadResult verifies the image content of a completed read result
// against its true binary signature. Declared media types come from file
// extensions and cannot be trusted: a renamed file must not reach the model
// with the wrong type attached. Returns the original result when nothing
// needed fixing, a rewritten copy when the declared type was correctable, and
// an error when the payload is empty or not an image at all.
func NormalizeReadResult(res *ports.ToolResult, path string) (*ports.ToolResult, error) {
	if res == nil {
		return nil, nil
	}

	imageIdx := -1
	for i, block := range res.Content {
		if block.Kind == ports.BlockImage {
			imageIdx = i
			break
		}
	}
	if imageIdx < 0 {
		return res, nil
	}

	payload := res.Content[imageIdx].Data
	if strings.TrimSpace(payload) == "" {
		return nil, &ResultIntegrityError{Path: path, Empty: true}
	}

	detected := sniffMediaType(payload)
	if detected == "" {
		// Signature detection came up empty; trust the declared type.
		return res, nil
	}

	declared := res.Content[imageIdx].MediaType
	if !strings.HasPrefix(detected, "image/") {
		return nil, &ResultIntegrityError{Path: path, Declared: declared, Detected: detected}
	}
	if detected == declared {
		return res, nil
	}

	fixed := ports.CloneResult(res)
	block := fixed.Content[imageIdx]
	block.MediaType = detected
	fixed.Content[imageIdx] = block

	for i, text := range fixed.Content {
		if text.Kind != ports.BlockText {
			continue
		}
		if imageHeaderPattern.MatchString(text.Text) {
			text.Text = imageHeaderPattern.ReplaceAllString(text.Text, "${1}"+detected+"${3}")
			fixed.Content[i] = text
		}
	}
	return fixed, nil
}

// sniffMediaType decodes a bounded prefix of a base64 payload and detects its
// media type. Returns "" when the prefix is too short to decode or when
// detection finds nothing more specific than a generic byte stream.
func sniffMediaType(payload string) string {
	n := len(payload)
	if n > sniffPrefixChars {
		n = sniffPrefixChars
	}
	n -= n % 4
	if n < 4 {
		return ""
	}

	decoded, err := base64.StdEncoding.DecodeString(payload[:n])
	if err != nil || len(decoded) == 0 {
		return ""
	}

	detected := mimetype.Detect(decoded).String()
	if idx := strings.IndexByte(detected, ';'); idx >= 0 {
		detected = strings.TrimSpace(detected[:idx])
	}
	if detected == "application/octet-stream" {
		return ""
	}
	return detected
}

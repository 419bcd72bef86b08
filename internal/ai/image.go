// image.go - Normalizes data-URL / raw base64 images into model-ready payloads

package ai

import (
	"encoding/base64"
	"strings"
)

const base64Marker = ";base64,"

// ImagePayload is one inline image as sent to the model: base64 data plus its MIME type
type ImagePayload struct {
	Data     string `json:"-"`
	MIMEType string `json:"mime_type"`
}

// NormalizeImage accepts either a bare base64 blob or a data URL
// (data:image/<kind>;base64,<payload>). The payload is everything after the first
// ";base64," marker. MIME type is sniffed from the prefix and defaults to image/jpeg.
// The payload itself is not validated.
func NormalizeImage(raw string) ImagePayload {
	data := raw
	if idx := strings.Index(raw, base64Marker); idx >= 0 {
		data = raw[idx+len(base64Marker):]
	}

	mimeType := "image/jpeg"
	if strings.HasPrefix(raw, "data:image/png") {
		mimeType = "image/png"
	}
	if strings.HasPrefix(raw, "data:image/webp") {
		mimeType = "image/webp"
	}

	return ImagePayload{Data: data, MIMEType: mimeType}
}

// EncodeImage builds a payload from raw image bytes
func EncodeImage(data []byte, mimeType string) ImagePayload {
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	return ImagePayload{Data: base64.StdEncoding.EncodeToString(data), MIMEType: mimeType}
}

// IsEmpty reports whether the payload carries no data at all
func (p ImagePayload) IsEmpty() bool {
	return strings.TrimSpace(p.Data) == ""
}

// Bytes decodes the base64 payload. Line breaks and missing padding are tolerated.
func (p ImagePayload) Bytes() ([]byte, error) {
	clean := strings.Map(func(r rune) rune {
		switch r {
		case '\n', '\r', ' ', '\t':
			return -1
		}
		return r
	}, p.Data)

	data, err := base64.StdEncoding.DecodeString(clean)
	if err == nil {
		return data, nil
	}
	if raw, rawErr := base64.RawStdEncoding.DecodeString(strings.TrimRight(clean, "=")); rawErr == nil {
		return raw, nil
	}
	return nil, err
}

// DataURL renders the payload back into data-URL form
func (p ImagePayload) DataURL() string {
	return "data:" + p.MIMEType + base64Marker + p.Data
}

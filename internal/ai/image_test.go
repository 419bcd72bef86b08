package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeImage(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantData string
		wantMIME string
	}{
		{"png data url", "data:image/png;base64,iVBORw0KGgo=", "iVBORw0KGgo=", "image/png"},
		{"webp data url", "data:image/webp;base64,UklGRg==", "UklGRg==", "image/webp"},
		{"jpeg data url", "data:image/jpeg;base64,/9j/4AAQ", "/9j/4AAQ", "image/jpeg"},
		{"bare base64", "/9j/4AAQSkZJRg==", "/9j/4AAQSkZJRg==", "image/jpeg"},
		{"unknown prefix keeps jpeg default", "data:image/gif;base64,R0lGOD", "R0lGOD", "image/jpeg"},
		{"splits at first marker only", "data:image/png;base64,AAA;base64,BBB", "AAA;base64,BBB", "image/png"},
		{"empty", "", "", "image/jpeg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeImage(tt.raw)
			assert.Equal(t, tt.wantData, got.Data)
			assert.Equal(t, tt.wantMIME, got.MIMEType)
		})
	}
}

func TestImagePayload_Bytes(t *testing.T) {
	payload := EncodeImage([]byte("strip-photo"), "image/png")
	assert.Equal(t, "image/png", payload.MIMEType)

	data, err := payload.Bytes()
	require.NoError(t, err)
	assert.Equal(t, []byte("strip-photo"), data)

	// unpadded and line-wrapped input still decodes
	data, err = ImagePayload{Data: "c3RyaXAt\ncGhvdG8"}.Bytes()
	require.NoError(t, err)
	assert.Equal(t, []byte("strip-photo"), data)

	_, err = ImagePayload{Data: "not base64!!"}.Bytes()
	assert.Error(t, err)
}

func TestImagePayload_DataURLRoundTrip(t *testing.T) {
	original := EncodeImage([]byte{0x89, 0x50, 0x4e, 0x47}, "image/png")
	back := NormalizeImage(original.DataURL())
	assert.Equal(t, original, back)
	assert.True(t, ImagePayload{Data: "  "}.IsEmpty())
}

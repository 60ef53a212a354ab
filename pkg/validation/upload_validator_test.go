package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "go-facecraft/internal/errors"
)

func TestUploadValidator_Order(t *testing.T) {
	v := NewUploadValidator(MaxUploadSize)

	tests := []struct {
		name        string
		present     bool
		contentType string
		size        int64
		wantMsg     string
	}{
		{"missing file wins over everything", false, "text/plain", MaxUploadSize * 2, MsgNoFile},
		{"invalid type before size", true, "application/pdf", MaxUploadSize * 2, MsgInvalidType},
		{"oversized allowed type", true, "image/png", MaxUploadSize + 1, "File too large. Maximum size is 10MB."},
		{"exactly at limit", true, "image/png", MaxUploadSize, ""},
		{"small jpeg", true, "image/jpeg", 2048, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.present, tt.contentType, tt.size)
			if tt.wantMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
			assert.Equal(t, tt.wantMsg, apperrors.PublicMessage(err, ""))
		})
	}
}

func TestUploadValidator_AllowedTypes(t *testing.T) {
	v := NewUploadValidator(0)

	for _, ct := range AllowedImageTypes {
		assert.True(t, v.IsAllowedType(ct), ct)
	}
	assert.True(t, v.IsAllowedType("IMAGE/PNG"))
	assert.True(t, v.IsAllowedType("image/jpeg; charset=binary"))

	for _, ct := range []string{"", "image/svg+xml", "image/heic", "application/octet-stream", "text/html", "not a type"} {
		assert.False(t, v.IsAllowedType(ct), ct)
	}
}

func TestUploadValidator_TooLargeMessage(t *testing.T) {
	assert.Equal(t, "File too large. Maximum size is 10MB.", NewUploadValidator(0).TooLargeMessage())
	assert.Equal(t, "File too large. Maximum size is 1.5 KiB.", NewUploadValidator(1536).TooLargeMessage())
}

package validation

import (
	"testing"

	apperrors "go-facecraft/internal/errors"
)

func TestNewURLValidator(t *testing.T) {
	validator := NewURLValidator()
	if validator == nil {
		t.Fatal("Expected non-nil URL validator")
	}

	expectedSchemes := []string{"http", "https"}
	if len(validator.allowedSchemes) != len(expectedSchemes) {
		t.Errorf("Expected %d schemes, got %d", len(expectedSchemes), len(validator.allowedSchemes))
	}
	for i, scheme := range expectedSchemes {
		if validator.allowedSchemes[i] != scheme {
			t.Errorf("Expected scheme %s, got %s", scheme, validator.allowedSchemes[i])
		}
	}
}

func TestValidateImageURL_ValidURLs(t *testing.T) {
	validator := NewURLValidator()

	validURLs := []string{
		"http://example.com/image.jpg",
		"https://example.com/image.png",
		"https://oaidalleapiprodscus.blob.core.windows.net/private/img-abc.png?st=2025&sig=xyz",
		"http://127.0.0.1:8080/blobs/facecraft-avatars/1-anime.png",
	}

	for _, u := range validURLs {
		if err := validator.ValidateImageURL(u); err != nil {
			t.Errorf("Expected valid URL %s to pass validation, got error: %v", u, err)
		}
	}
}

func TestValidateImageURL_InvalidURLs(t *testing.T) {
	validator := NewURLValidator()

	tests := []struct {
		name string
		url  string
	}{
		{"empty", ""},
		{"whitespace", "   "},
		{"ftp scheme", "ftp://example.com/image.jpg"},
		{"file scheme", "file:///etc/passwd"},
		{"no host", "https:///image.jpg"},
		{"relative", "/blobs/image.png"},
		{"bad escape", "https://example.com/%zz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateImageURL(tt.url)
			if err == nil {
				t.Fatalf("Expected error for %q", tt.url)
			}
			if !apperrors.IsType(err, apperrors.ErrorTypeValidation) {
				t.Errorf("Expected validation error, got %v", err)
			}
		})
	}
}

func TestValidateImageURL_HostRestrictions(t *testing.T) {
	validator := NewURLValidatorWithOptions([]string{"https"}, []string{"cdn.example.com"})

	if err := validator.ValidateImageURL("https://cdn.example.com:443/a.png"); err != nil {
		t.Errorf("Expected allowed host to pass, got %v", err)
	}
	if err := validator.ValidateImageURL("https://evil.example.com/a.png"); err == nil {
		t.Error("Expected disallowed host to fail")
	}
	if err := validator.ValidateImageURL("http://cdn.example.com/a.png"); err == nil {
		t.Error("Expected disallowed scheme to fail")
	}
}

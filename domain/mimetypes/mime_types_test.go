package mimetypes

import (
	"testing"
)

func TestMatches(t *testing.T) {
	tests := []struct {
		name     string
		detected string
		expected MIME
		want     bool
	}{
		{"PNG", "image/png", ImagePNG, true},
		{"JPEG", "image/jpeg", ImageJPEG, true},
		{"GIF", "image/gif", ImageGIF, true},
		{"WEBP with parameter", "image/webp; q=1", ImageWEBP, true},

		{"Mismatch", "image/png", ImageJPEG, false},
		{"Text is not an image", "text/plain; charset=utf-8", ImagePNG, false},
		{"Invalid MIME", "not a mime", ImagePNG, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := Matches(tt.detected, tt.expected)
			if ok != tt.want {
				t.Errorf("Matches(%q, %q) = %v; want %v", tt.detected, tt.expected, ok, tt.want)
			}
		})
	}
}

func TestAcceptedImage(t *testing.T) {
	tests := []struct {
		detected string
		want     MIME
		ok       bool
	}{
		{"image/png", ImagePNG, true},
		{"image/heic", ImageHEIC, true},
		{"image/svg+xml", Unknown, false},
		{"application/pdf", Unknown, false},
	}

	for _, tt := range tests {
		t.Run(tt.detected, func(t *testing.T) {
			got, ok := AcceptedImage(tt.detected)
			if ok != tt.ok || got != tt.want {
				t.Errorf("AcceptedImage(%q) = %v, %v; want %v, %v", tt.detected, got, ok, tt.want, tt.ok)
			}
		})
	}
}

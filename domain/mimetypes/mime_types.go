package mimetypes

import "mime"

type MIME string

const (
	Unknown MIME = "unknown"

	ImagePNG  MIME = "image/png"
	ImageJPEG MIME = "image/jpeg"
	ImageGIF  MIME = "image/gif"
	ImageWEBP MIME = "image/webp"
	ImageHEIC MIME = "image/heic"
)

// Accepted lists the image types a chat attachment may have.
var Accepted = []MIME{ImagePNG, ImageJPEG, ImageGIF, ImageWEBP, ImageHEIC}

// Matches compares a detected media type, parameters included, with the expected one.
func Matches(detected string, expected MIME) (MIME, bool) {
	mt, _, err := mime.ParseMediaType(detected)
	if err != nil {
		return Unknown, false
	}
	return expected, mt == string(expected)
}

// AcceptedImage returns the accepted image type detected is, if any.
func AcceptedImage(detected string) (MIME, bool) {
	for _, m := range Accepted {
		if _, ok := Matches(detected, m); ok {
			return m, true
		}
	}
	return Unknown, false
}

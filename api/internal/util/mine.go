package util

import (
	"encoding/base64"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// MIME types a multimodal model accepts as inline image data.
var inlineImageMIME = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// MimeFromName maps a file name suffix to an image MIME type.
// Anything that is not .png or .gif is treated as JPEG.
func MimeFromName(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	default:
		return "image/jpeg"
	}
}

// PickImageMIME sniffs the content first and falls back to the name suffix
// when the bytes are not a recognised image.
func PickImageMIME(name string, data []byte) string {
	if len(data) > 0 {
		mt := mimetype.Detect(data)
		for m := mt; m != nil; m = m.Parent() {
			if inlineImageMIME[m.String()] {
				return m.String()
			}
		}
	}
	return MimeFromName(name)
}

func MakeDataURL(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

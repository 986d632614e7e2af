// Package datauri turns picked image files into base64 data URIs.
package datauri

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// MaxSize bounds the files accepted by [FromFile].
const MaxSize = 5 << 20

var (
	ErrNotImage = errors.New("not an image")
	ErrTooLarge = errors.New("image is too large")
)

// FromFile reads the image at path and encodes it as
// "data:<mime>;base64,<payload>".
func FromFile(path string) (string, error) {
	const op = "datauri.FromFile"

	fi, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if fi.Size() > MaxSize {
		return "", fmt.Errorf("%s: %w: %d bytes", op, ErrTooLarge, fi.Size())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	uri, err := Encode(data)
	if err != nil {
		return "", fmt.Errorf("%s: %s: %w", op, path, err)
	}
	return uri, nil
}

// Encode builds a data URI from raw image bytes.
func Encode(data []byte) (string, error) {
	mime := mimetype.Detect(data).String()
	if !strings.HasPrefix(mime, "image/") {
		return "", fmt.Errorf("%w: %s", ErrNotImage, mime)
	}
	return "data:" + mime + ";base64," +
		base64.StdEncoding.EncodeToString(data), nil
}

// Is reports whether s already is a data URI.
func Is(s string) bool {
	return strings.HasPrefix(s, "data:")
}

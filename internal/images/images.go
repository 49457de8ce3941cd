package images

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

// MaxUploadBytes is the largest accepted upload (10MB).
const MaxUploadBytes = 10 * 1024 * 1024

var (
	ErrNotImage = errors.New("file is not an image")
	ErrTooLarge = errors.New("file too large (max 10MB)")
	ErrEmpty    = errors.New("file is empty")
)

// Info describes an uploaded image.
type Info struct {
	ContentType string
	Format      string
	Width       int
	Height      int
}

// Ext returns the canonical file extension for the format.
func (i Info) Ext() string {
	switch i.Format {
	case "jpeg":
		return ".jpg"
	case "":
		return ".bin"
	}
	return "." + i.Format
}

// ReadLimited reads r up to one byte past MaxUploadBytes, so Inspect can
// tell a file at the limit from an oversized one.
func ReadLimited(r io.Reader) ([]byte, error) {
	return io.ReadAll(io.LimitReader(r, MaxUploadBytes+1))
}

// Inspect sniffs the content type and reads the pixel dimensions of data.
// Formats without a registered decoder (e.g. webp, heic) are accepted with
// zero dimensions.
func Inspect(data []byte) (Info, error) {
	if len(data) == 0 {
		return Info{}, ErrEmpty
	}
	if len(data) > MaxUploadBytes {
		return Info{}, ErrTooLarge
	}

	ct := http.DetectContentType(data)
	if !strings.HasPrefix(ct, "image/") {
		return Info{}, fmt.Errorf("%w: detected %s", ErrNotImage, ct)
	}
	info := Info{
		ContentType: ct,
		Format:      strings.TrimPrefix(ct, "image/"),
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		slog.Warn("Failed to get image dimensions", "content_type", ct, "error", err)
		return info, nil
	}
	info.Format = format
	info.Width = cfg.Width
	info.Height = cfg.Height
	return info, nil
}

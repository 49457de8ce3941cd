package handlers

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"mime/multipart"

	"github.com/davka-nysa/davka/internal/images"
	"github.com/davka-nysa/davka/internal/media"
	"github.com/davka-nysa/davka/internal/models"
)

// maxUploadRequest bounds a whole multipart request.
const maxUploadRequest = 64 << 20

type uploadFile struct {
	Filename string
	Data     []byte
	Info     images.Info
}

// readUploadFile reads and sniffs one multipart file.
func readUploadFile(fh *multipart.FileHeader) (uploadFile, error) {
	f, err := fh.Open()
	if err != nil {
		return uploadFile{}, fmt.Errorf("failed to open %s: %w", fh.Filename, err)
	}
	defer f.Close()

	data, err := images.ReadLimited(f)
	if err != nil {
		return uploadFile{}, fmt.Errorf("failed to read %s: %w", fh.Filename, err)
	}
	info, err := images.Inspect(data)
	if err != nil {
		return uploadFile{}, fmt.Errorf("%s: %w", fh.Filename, err)
	}
	return uploadFile{Filename: fh.Filename, Data: data, Info: info}, nil
}

// dedupeByName keeps the first file of each name and reports how many were
// skipped.
func dedupeByName(files []*multipart.FileHeader) ([]*multipart.FileHeader, int) {
	seen := make(map[string]bool, len(files))
	out := make([]*multipart.FileHeader, 0, len(files))
	skipped := 0
	for _, f := range files {
		if seen[f.Filename] {
			skipped++
			continue
		}
		seen[f.Filename] = true
		out = append(out, f)
	}
	return out, skipped
}

// storeFiles uploads files tagged with today's tag, stopping at the first
// failure. The list cache is invalidated when anything was stored.
func (h *Handler) storeFiles(ctx context.Context, files []uploadFile) ([]models.Asset, error) {
	tag, _ := h.clock.Today()
	stored := make([]models.Asset, 0, len(files))
	defer func() {
		if len(stored) > 0 {
			h.cache.Invalidate()
		}
	}()

	for _, f := range files {
		asset, err := h.store.Upload(ctx, media.UploadRequest{
			Filename: f.Filename,
			Folder:   h.opts.UploadFolder,
			Tags:     []string{tag},
			Body:     bytes.NewReader(f.Data),
		})
		if err != nil {
			return stored, fmt.Errorf("failed to upload %s: %w", f.Filename, err)
		}
		slog.Info("Uploaded daily image", "public_id", asset.PublicID, "tag", tag, "filename", f.Filename)
		stored = append(stored, asset)
	}
	return stored, nil
}

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/davka-nysa/davka/internal/images"
)

// HandleUpload accepts multipart `token` and `files` and stores every file
// under today's tag.
func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadRequest)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "Nieprawidłowe żądanie"})
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	if !h.tokenOK(r.FormValue("token")) {
		h.writeJSON(w, http.StatusUnauthorized, map[string]any{"ok": false, "error": "Unauthorized"})
		return
	}

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		h.writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "Brak plików"})
		return
	}

	files := make([]uploadFile, 0, len(headers))
	for _, fh := range headers {
		f, err := readUploadFile(fh)
		if err != nil {
			msg := "Nieprawidłowy plik"
			switch {
			case errors.Is(err, images.ErrTooLarge):
				msg = "Plik za duży (maks. 10MB)"
			case errors.Is(err, images.ErrNotImage), errors.Is(err, images.ErrEmpty):
				msg = "Plik nie jest obrazem"
			}
			slog.Warn("Rejected upload", "filename", fh.Filename, "err", err)
			h.writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": msg})
			return
		}
		files = append(files, f)
	}

	stored, err := h.storeFiles(r.Context(), files)
	if err != nil {
		slog.Error("Upload failed", "stored", len(stored), "err", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]any{"ok": false, "error": "Błąd uploadu"})
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"ok": true, "count": len(stored)})
}

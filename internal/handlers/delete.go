package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/davka-nysa/davka/internal/media"
	"github.com/davka-nysa/davka/internal/validate"
)

type deleteRequest struct {
	Token    string `json:"token"`
	PublicID string `json:"publicId" validate:"required,max=255"`
}

// HandleDelete removes one image by public id.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req deleteRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, "Nieprawidłowe żądanie", http.StatusBadRequest)
		return
	}
	if !h.tokenOK(req.Token) {
		h.writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	if err := validate.Struct(req); err != nil {
		h.writeError(w, "Brak publicId", http.StatusBadRequest)
		return
	}

	if err := h.deleteAsset(r.Context(), req.PublicID); err != nil {
		slog.Error("Failed to delete image", "public_id", req.PublicID, "err", err)
		h.writeError(w, "Błąd usuwania", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// deleteAsset treats an already missing asset as deleted.
func (h *Handler) deleteAsset(ctx context.Context, publicID string) error {
	err := h.store.Delete(ctx, publicID)
	if errors.Is(err, media.ErrNotFound) {
		slog.Info("Image already gone", "public_id", publicID)
		err = nil
	}
	if err == nil {
		h.cache.Invalidate()
	}
	return err
}

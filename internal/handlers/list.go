package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/davka-nysa/davka/internal/media"
	"github.com/davka-nysa/davka/internal/models"
)

// HandleList serves today's showcase as a Payload.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Cache-Control", "no-store")

	admin := r.URL.Query().Get("admin") == "1"
	if admin && !h.tokenOK(r.Header.Get("x-admin-token")) {
		h.writeJSON(w, http.StatusUnauthorized, models.Payload{
			Status: models.StatusError,
			Images: []models.ImageItem{},
			Error:  "Unauthorized",
		})
		return
	}

	payload, err := h.today(r.Context(), admin)
	if err != nil {
		slog.Error("Failed to list daily images", "err", err)
		h.writeJSON(w, http.StatusInternalServerError, models.Payload{
			Status: models.StatusError,
			Images: []models.ImageItem{},
			Error:  "Błąd pobierania listy",
		})
		return
	}
	h.writeJSON(w, http.StatusOK, payload)
}

// today builds the payload for the current local day. Admin listings ignore
// the closing hour and report an empty day as ok.
func (h *Handler) today(ctx context.Context, admin bool) (models.Payload, error) {
	tag, local := h.clock.Today()
	if !admin && h.clock.IsClosed(local) {
		return models.Payload{Status: models.StatusClosed, Images: []models.ImageItem{}}, nil
	}

	assets, err := h.listTag(ctx, tag)
	if err != nil {
		return models.Payload{}, err
	}

	items := make([]models.ImageItem, 0, len(assets))
	for _, a := range assets {
		items = append(items, a.Item())
	}
	if len(items) == 0 {
		status := models.StatusEmpty
		if admin {
			status = models.StatusOK
		}
		return models.Payload{Status: status, Images: items}, nil
	}
	return models.Payload{Status: models.StatusOK, Images: items}, nil
}

func (h *Handler) listTag(ctx context.Context, tag string) ([]models.Asset, error) {
	if assets, ok := h.cache.Get(tag); ok {
		return assets, nil
	}
	assets, err := h.store.ListByTag(ctx, tag, media.DefaultPageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list tag %s: %w", tag, err)
	}
	h.cache.Set(tag, assets)
	return assets, nil
}

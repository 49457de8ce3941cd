package handlers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/davka-nysa/davka/internal/carousel"
	"github.com/davka-nysa/davka/internal/locale"
	"github.com/davka-nysa/davka/internal/models"
	"github.com/davka-nysa/davka/internal/showcase"
	"github.com/davka-nysa/davka/internal/web"
)

const langCookie = "lang"

type indexPage struct {
	Lang       locale.Lang
	Langs      []locale.Lang
	T          locale.Texts
	Subtitle   string
	Images     []models.ImageItem
	ShowArrows bool
	ListURL    string
}

// HandleIndex renders the landing page with the first frame of the daily
// showcase already in place.
func (h *Handler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	lang := h.requestLang(w, r)
	texts := locale.Lookup(lang)

	payload, err := h.today(r.Context(), false)
	if err != nil {
		slog.Error("Failed to list daily images for landing page", "err", err)
		payload = models.Payload{Status: models.StatusError, Images: []models.ImageItem{}}
	}
	sel := showcase.Select(payload, h.clock.Local())

	h.render(w, http.StatusOK, web.PageIndex, indexPage{
		Lang:       lang,
		Langs:      locale.Langs,
		T:          texts,
		Subtitle:   sel.Subtitle.Text(texts.Showcase),
		Images:     sel.Images,
		ShowArrows: len(sel.Images) > carousel.Layout{}.VisibleSlots(),
		ListURL:    "/api/daily/list",
	})
}

// requestLang resolves ?lang=, then the lang cookie, then Accept-Language.
// An explicit choice is remembered in the cookie.
func (h *Handler) requestLang(w http.ResponseWriter, r *http.Request) locale.Lang {
	if l, ok := locale.Parse(r.URL.Query().Get("lang")); ok {
		http.SetCookie(w, &http.Cookie{
			Name:     langCookie,
			Value:    string(l),
			Path:     "/",
			Expires:  time.Now().AddDate(1, 0, 0),
			SameSite: http.SameSiteLaxMode,
		})
		return l
	}
	if c, err := r.Cookie(langCookie); err == nil {
		if l, ok := locale.Parse(c.Value); ok {
			return l
		}
	}
	for _, part := range strings.Split(r.Header.Get("Accept-Language"), ",") {
		tag, _, _ := strings.Cut(strings.TrimSpace(part), ";")
		base, _, _ := strings.Cut(tag, "-")
		if l, ok := locale.Parse(base); ok {
			return l
		}
	}
	return locale.Default
}

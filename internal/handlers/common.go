package handlers

import (
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/davka-nysa/davka/internal/daily"
	"github.com/davka-nysa/davka/internal/media"
	"github.com/davka-nysa/davka/internal/storage"
	"github.com/davka-nysa/davka/internal/web"
)

// Options carries the settings the handlers need from the configuration.
type Options struct {
	AdminToken   string
	SiteUser     string
	SitePassword string
	UploadFolder string
	// MediaDir is served under /media when the local store is in use.
	MediaDir        string
	StaticDir       string
	ListCacheTTL    time.Duration
	SessionTTL      time.Duration
	VerifyPerMinute int
	// TrustProxy takes the client address from X-Forwarded-For.
	TrustProxy bool
}

type Handler struct {
	store    media.Store
	clock    daily.Clock
	opts     Options
	cache    *storage.ListCache
	sessions *storage.SessionStore
	pages    *web.Pages
	static   fs.FS
	limiter  *ipLimiter
}

func New(store media.Store, clock daily.Clock, opts Options) (*Handler, error) {
	pages, err := web.ParsePages()
	if err != nil {
		return nil, err
	}
	if opts.UploadFolder == "" {
		opts.UploadFolder = media.DefaultFolder
	}
	if opts.VerifyPerMinute <= 0 {
		opts.VerifyPerMinute = 10
	}
	return &Handler{
		store:    store,
		clock:    clock,
		opts:     opts,
		cache:    storage.NewListCache(opts.ListCacheTTL),
		sessions: storage.New(opts.SessionTTL),
		pages:    pages,
		static:   web.Static(opts.StaticDir),
		limiter:  newIPLimiter(opts.VerifyPerMinute),
	}, nil
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	if code >= http.StatusInternalServerError {
		slog.Error(message)
	} else {
		slog.Debug(message, "code", code)
	}
	h.writeJSON(w, code, map[string]any{"error": message})
}

func (h *Handler) render(w http.ResponseWriter, code int, page string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	if err := h.pages.Render(w, page, data); err != nil {
		slog.Error("Unable to render page", "page", page, "err", err)
	}
}

// tokenOK compares the admin token in constant time. An empty configured
// token rejects everything.
func (h *Handler) tokenOK(token string) bool {
	if h.opts.AdminToken == "" || token == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(h.opts.AdminToken)) == 1
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 64<<10))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return nil
}

package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/davka-nysa/davka/internal/locale"
	"github.com/davka-nysa/davka/internal/models"
	"github.com/davka-nysa/davka/internal/web"
)

const adminPath = "/witryna/admin"

type loginPage struct {
	Error string
}

type panelPage struct {
	Today    string
	Images   []models.ImageItem
	Messages []string
	Error    string
}

// HandleAdmin serves the admin panel or its login form.
func (h *Handler) HandleAdmin(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != adminPath && r.URL.Path != adminPath+"/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if _, ok := h.currentSession(r); !ok {
		h.render(w, http.StatusOK, web.PageAdminLogin, loginPage{})
		return
	}
	h.renderPanel(w, r, http.StatusOK, panelPage{})
}

func (h *Handler) HandleAdminLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !h.limiter.Allow(clientIP(r, h.opts.TrustProxy)) {
		h.render(w, http.StatusTooManyRequests, web.PageAdminLogin, loginPage{Error: "Zbyt wiele prób. Spróbuj za chwilę."})
		return
	}

	token := strings.TrimSpace(r.FormValue("token"))
	if token == "" {
		h.render(w, http.StatusBadRequest, web.PageAdminLogin, loginPage{Error: "Podaj hasło."})
		return
	}
	if !h.tokenOK(token) {
		slog.Warn("Admin login rejected", "client", clientIP(r, h.opts.TrustProxy))
		h.render(w, http.StatusUnauthorized, web.PageAdminLogin, loginPage{Error: "Nieprawidłowe hasło"})
		return
	}

	session := h.sessions.Create()
	h.setSessionCookie(w, r, session)
	slog.Info("Admin logged in", "session_id", session.ID)
	http.Redirect(w, r, adminPath, http.StatusSeeOther)
}

func (h *Handler) HandleAdminLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if session, ok := h.currentSession(r); ok {
		h.sessions.Delete(session.ID)
	}
	h.clearSessionCookie(w)
	http.Redirect(w, r, adminPath, http.StatusSeeOther)
}

// HandleAdminUpload stores the picked files, skipping repeated file names.
func (h *Handler) HandleAdminUpload(w http.ResponseWriter, r *http.Request) {
	if !h.requireSession(w, r) {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadRequest)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		h.renderPanel(w, r, http.StatusBadRequest, panelPage{Error: "Wybierz zdjęcia."})
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	headers, dup := dedupeByName(r.MultipartForm.File["files"])
	var page panelPage
	if dup > 0 {
		page.Messages = append(page.Messages, duplicatesMessage(dup))
	}
	if len(headers) == 0 {
		page.Error = "Wybierz zdjęcia."
		h.renderPanel(w, r, http.StatusBadRequest, page)
		return
	}

	files := make([]uploadFile, 0, len(headers))
	for _, fh := range headers {
		f, err := readUploadFile(fh)
		if err != nil {
			slog.Warn("Rejected upload", "filename", fh.Filename, "err", err)
			page.Error = fmt.Sprintf("Pominięto %s: plik nie jest obrazem lub jest za duży.", fh.Filename)
			continue
		}
		files = append(files, f)
	}

	stored, err := h.storeFiles(r.Context(), files)
	if err != nil {
		slog.Error("Upload failed", "stored", len(stored), "err", err)
		page.Error = "Błąd wysyłki"
	}
	page.Messages = append([]string{uploadedMessage(len(stored), len(headers))}, page.Messages...)

	code := http.StatusOK
	if err != nil {
		code = http.StatusInternalServerError
	}
	h.renderPanel(w, r, code, page)
}

func (h *Handler) HandleAdminDelete(w http.ResponseWriter, r *http.Request) {
	if !h.requireSession(w, r) {
		return
	}
	publicID := r.FormValue("publicId")
	if publicID == "" {
		h.renderPanel(w, r, http.StatusBadRequest, panelPage{Error: "Brak publicId"})
		return
	}
	if err := h.deleteAsset(r.Context(), publicID); err != nil {
		slog.Error("Failed to delete image", "public_id", publicID, "err", err)
		h.renderPanel(w, r, http.StatusInternalServerError, panelPage{Error: "Nie udało się usunąć zdjęcia."})
		return
	}
	http.Redirect(w, r, adminPath, http.StatusSeeOther)
}

func (h *Handler) requireSession(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	if _, ok := h.currentSession(r); !ok {
		http.Redirect(w, r, adminPath, http.StatusSeeOther)
		return false
	}
	return true
}

func (h *Handler) renderPanel(w http.ResponseWriter, r *http.Request, code int, page panelPage) {
	_, local := h.clock.Today()
	page.Today = local.Format("02.01.2006")

	payload, err := h.today(r.Context(), true)
	if err != nil {
		slog.Error("Failed to list daily images for panel", "err", err)
		if page.Error == "" {
			page.Error = "Nie udało się pobrać listy."
		}
	}
	page.Images = payload.Images
	h.render(w, code, web.PageAdminPanel, page)
}

func uploadedMessage(ok, total int) string {
	return fmt.Sprintf("Wgrano %d z %d %s.", ok, total, locale.PluralPL(total, "plik", "pliki", "plików"))
}

func duplicatesMessage(n int) string {
	return fmt.Sprintf("Pominięto %d %s nazw.", n, locale.PluralPL(n, "duplikat", "duplikaty", "duplikatów"))
}

package handlers

import (
	"log/slog"
	"net/http"
)

// Routes wires every endpoint behind the request logger and the site gate.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/daily/list", h.HandleList)
	mux.HandleFunc("/api/daily/upload", h.HandleUpload)
	mux.HandleFunc("/api/daily/delete", h.HandleDelete)
	mux.HandleFunc("/api/admin/verify", h.HandleVerify)
	mux.HandleFunc(adminPath, h.HandleAdmin)
	mux.HandleFunc(adminPath+"/", h.HandleAdmin)
	mux.HandleFunc(adminPath+"/login", h.HandleAdminLogin)
	mux.HandleFunc(adminPath+"/logout", h.HandleAdminLogout)
	mux.HandleFunc(adminPath+"/upload", h.HandleAdminUpload)
	mux.HandleFunc(adminPath+"/delete", h.HandleAdminDelete)
	mux.HandleFunc("/static/", h.HandleStatic)
	mux.HandleFunc("/media/", h.HandleMedia)
	mux.HandleFunc("/", h.HandleIndex)
	mux.HandleFunc("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("OK")); err != nil {
			slog.Error("Unable to write healthcheck", "err", err)
		}
	})

	return logRequests(basicAuth(h.opts.SiteUser, h.opts.SitePassword, mux))
}

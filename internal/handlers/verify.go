package handlers

import (
	"net/http"
)

// HandleVerify checks an admin token: {token} -> {ok}.
func (h *Handler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !h.limiter.Allow(clientIP(r, h.opts.TrustProxy)) {
		h.writeJSON(w, http.StatusTooManyRequests, map[string]any{"ok": false})
		return
	}

	var req struct {
		Token string `json:"token"`
	}
	if err := decodeJSON(r, &req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false})
		return
	}
	if !h.tokenOK(req.Token) {
		h.writeJSON(w, http.StatusUnauthorized, map[string]any{"ok": false})
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

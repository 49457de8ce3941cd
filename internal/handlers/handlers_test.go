package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davka-nysa/davka/internal/daily"
	"github.com/davka-nysa/davka/internal/media"
	"github.com/davka-nysa/davka/internal/models"
)

const testToken = "sekret"

type fakeStore struct {
	mu        sync.Mutex
	byTag     map[string][]models.Asset
	listCalls int
	listErr   error
	uploadErr error
	deleteErr error
	uploads   []media.UploadRequest
	deleted   []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{byTag: map[string][]models.Asset{}}
}

func (s *fakeStore) Upload(_ context.Context, req media.UploadRequest) (models.Asset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.uploadErr != nil {
		return models.Asset{}, s.uploadErr
	}
	_, _ = io.Copy(io.Discard, req.Body)
	s.uploads = append(s.uploads, req)
	a := models.Asset{PublicID: req.Folder + "/" + req.Filename, SecureURL: "https://cdn/" + req.Filename, Tags: req.Tags}
	for _, tag := range req.Tags {
		s.byTag[tag] = append(s.byTag[tag], a)
	}
	return a, nil
}

func (s *fakeStore) ListByTag(_ context.Context, tag string, _ int) ([]models.Asset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listCalls++
	if s.listErr != nil {
		return nil, s.listErr
	}
	return append([]models.Asset(nil), s.byTag[tag]...), nil
}

func (s *fakeStore) Delete(_ context.Context, publicID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleteErr != nil {
		return s.deleteErr
	}
	for tag, assets := range s.byTag {
		for i, a := range assets {
			if a.PublicID == publicID {
				s.byTag[tag] = append(assets[:i], assets[i+1:]...)
				s.deleted = append(s.deleted, publicID)
				return nil
			}
		}
	}
	return media.ErrNotFound
}

func (s *fakeStore) Close() error { return nil }

func (s *fakeStore) seed(tag string, ids ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		s.byTag[tag] = append(s.byTag[tag], models.Asset{PublicID: id, SecureURL: "https://cdn/" + id, Width: 10, Height: 10})
	}
}

func (s *fakeStore) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listCalls
}

// warsawAt returns a clock fixed at the given Warsaw wall time on 2025-06-10.
func warsawAt(t *testing.T, hour, min int) daily.Clock {
	t.Helper()
	c, err := daily.NewClock("", "", 21)
	require.NoError(t, err)
	at := time.Date(2025, 6, 10, hour, min, 0, 0, c.Location)
	c.Now = func() time.Time { return at }
	return c
}

const todayTag = "witryna-2025-06-10"

func newTestHandler(t *testing.T, store media.Store, clock daily.Clock, opts Options) *Handler {
	t.Helper()
	if opts.AdminToken == "" {
		opts.AdminToken = testToken
	}
	if opts.ListCacheTTL == 0 {
		opts.ListCacheTTL = time.Minute
	}
	h, err := New(store, clock, opts)
	require.NoError(t, err)
	return h
}

func decodePayload(t *testing.T, rec *httptest.ResponseRecorder) models.Payload {
	t.Helper()
	var p models.Payload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	return p
}

func pngFile(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 4, 3))))
	return buf.Bytes()
}

type part struct {
	name, filename string
	data           []byte
}

func multipartBody(t *testing.T, fields map[string]string, files ...part) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for _, f := range files {
		w, err := mw.CreateFormFile(f.name, f.filename)
		require.NoError(t, err)
		_, err = w.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &body, mw.FormDataContentType()
}

func TestHandleList(t *testing.T) {
	tests := []struct {
		name       string
		hour       int
		seed       []string
		admin      bool
		token      string
		listErr    error
		wantCode   int
		wantStatus models.Status
		wantCount  int
	}{
		{name: "open with images", hour: 10, seed: []string{"a", "b"}, wantCode: 200, wantStatus: models.StatusOK, wantCount: 2},
		{name: "open without images", hour: 10, wantCode: 200, wantStatus: models.StatusEmpty},
		{name: "after closing", hour: 21, seed: []string{"a"}, wantCode: 200, wantStatus: models.StatusClosed},
		{name: "admin after closing", hour: 22, seed: []string{"a"}, admin: true, token: testToken, wantCode: 200, wantStatus: models.StatusOK, wantCount: 1},
		{name: "admin empty day", hour: 10, admin: true, token: testToken, wantCode: 200, wantStatus: models.StatusOK},
		{name: "admin bad token", hour: 10, admin: true, token: "nope", wantCode: 401, wantStatus: models.StatusError},
		{name: "store failure", hour: 10, listErr: errors.New("boom"), wantCode: 500, wantStatus: models.StatusError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			store.seed(todayTag, tt.seed...)
			store.seed("witryna-2025-06-09", "yesterday")
			store.listErr = tt.listErr
			h := newTestHandler(t, store, warsawAt(t, tt.hour, 30), Options{})

			target := "/api/daily/list"
			if tt.admin {
				target += "?admin=1"
			}
			req := httptest.NewRequest(http.MethodGet, target, nil)
			if tt.token != "" {
				req.Header.Set("x-admin-token", tt.token)
			}
			rec := httptest.NewRecorder()
			h.HandleList(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
			p := decodePayload(t, rec)
			assert.Equal(t, tt.wantStatus, p.Status)
			assert.Len(t, p.Images, tt.wantCount)
			assert.NotNil(t, p.Images)
		})
	}
}

func TestHandleListCaches(t *testing.T) {
	store := newFakeStore()
	store.seed(todayTag, "a")
	h := newTestHandler(t, store, warsawAt(t, 10, 0), Options{})

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		h.HandleList(rec, httptest.NewRequest(http.MethodGet, "/api/daily/list", nil))
		require.Equal(t, 200, rec.Code)
	}
	assert.Equal(t, 1, store.calls())

	body, ct := multipartBody(t, map[string]string{"token": testToken}, part{"files", "b.png", pngFile(t)})
	req := httptest.NewRequest(http.MethodPost, "/api/daily/upload", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	h.HandleUpload(rec, req)
	require.Equal(t, 200, rec.Code)

	rec = httptest.NewRecorder()
	h.HandleList(rec, httptest.NewRequest(http.MethodGet, "/api/daily/list", nil))
	assert.Equal(t, 2, store.calls())
	assert.Len(t, decodePayload(t, rec).Images, 2)
}

func TestHandleUpload(t *testing.T) {
	img := pngFile(t)
	tests := []struct {
		name      string
		fields    map[string]string
		files     []part
		uploadErr error
		wantCode  int
		wantCount int
	}{
		{name: "bad token", fields: map[string]string{"token": "x"}, files: []part{{"files", "a.png", img}}, wantCode: 401},
		{name: "no files", fields: map[string]string{"token": testToken}, wantCode: 400},
		{name: "not an image", fields: map[string]string{"token": testToken}, files: []part{{"files", "a.txt", []byte("hello")}}, wantCode: 400},
		{name: "store failure", fields: map[string]string{"token": testToken}, files: []part{{"files", "a.png", img}}, uploadErr: errors.New("down"), wantCode: 500},
		{name: "two files", fields: map[string]string{"token": testToken}, files: []part{{"files", "a.png", img}, {"files", "b.png", img}}, wantCode: 200, wantCount: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			store.uploadErr = tt.uploadErr
			h := newTestHandler(t, store, warsawAt(t, 10, 0), Options{})

			body, ct := multipartBody(t, tt.fields, tt.files...)
			req := httptest.NewRequest(http.MethodPost, "/api/daily/upload", body)
			req.Header.Set("Content-Type", ct)
			rec := httptest.NewRecorder()
			h.HandleUpload(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			var resp struct {
				OK    bool   `json:"ok"`
				Count int    `json:"count"`
				Error string `json:"error"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantCode == 200, resp.OK)
			assert.Equal(t, tt.wantCount, resp.Count)
			if tt.wantCode == 200 {
				require.Len(t, store.uploads, tt.wantCount)
				assert.Equal(t, []string{todayTag}, store.uploads[0].Tags)
				assert.Equal(t, media.DefaultFolder, store.uploads[0].Folder)
			} else {
				assert.NotEmpty(t, resp.Error)
			}
		})
	}
}

func TestHandleDelete(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		deleteErr error
		wantCode  int
	}{
		{name: "malformed", body: "{", wantCode: 400},
		{name: "bad token", body: `{"token":"x","publicId":"a"}`, wantCode: 401},
		{name: "missing id", body: `{"token":"sekret"}`, wantCode: 400},
		{name: "deleted", body: `{"token":"sekret","publicId":"a"}`, wantCode: 200},
		{name: "already gone", body: `{"token":"sekret","publicId":"zzz"}`, wantCode: 200},
		{name: "store failure", body: `{"token":"sekret","publicId":"a"}`, deleteErr: errors.New("down"), wantCode: 500},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			store.seed(todayTag, "a")
			store.deleteErr = tt.deleteErr
			h := newTestHandler(t, store, warsawAt(t, 10, 0), Options{})

			rec := httptest.NewRecorder()
			h.HandleDelete(rec, httptest.NewRequest(http.MethodPost, "/api/daily/delete", strings.NewReader(tt.body)))
			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantCode != 200 {
				var resp map[string]string
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
				assert.NotEmpty(t, resp["error"])
			}
		})
	}
}

func TestHandleVerify(t *testing.T) {
	h := newTestHandler(t, newFakeStore(), warsawAt(t, 10, 0), Options{VerifyPerMinute: 3})

	verify := func(body string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/admin/verify", strings.NewReader(body))
		req.RemoteAddr = "192.0.2.1:1234"
		rec := httptest.NewRecorder()
		h.HandleVerify(rec, req)
		return rec.Code
	}

	assert.Equal(t, 200, verify(`{"token":"sekret"}`))
	assert.Equal(t, 401, verify(`{"token":"wrong"}`))
	assert.Equal(t, 400, verify(`not json`))
	assert.Equal(t, 429, verify(`{"token":"sekret"}`))
}

func TestEmptyAdminTokenRejectsEverything(t *testing.T) {
	h, err := New(newFakeStore(), warsawAt(t, 10, 0), Options{})
	require.NoError(t, err)
	assert.False(t, h.tokenOK(""))
	assert.False(t, h.tokenOK("anything"))
}

func TestBasicAuthGate(t *testing.T) {
	h := newTestHandler(t, newFakeStore(), warsawAt(t, 10, 0), Options{SiteUser: "davka", SitePassword: "kawa"})
	routes := h.Routes()

	rec := httptest.NewRecorder()
	routes.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, `Basic realm="Secure Area"`, rec.Header().Get("WWW-Authenticate"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.SetBasicAuth("davka", "zla")
	rec = httptest.NewRecorder()
	routes.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.SetBasicAuth("davka", "kawa")
	rec = httptest.NewRecorder()
	routes.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	routes.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthcheck", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestBasicAuthDisabledWithoutPassword(t *testing.T) {
	h := newTestHandler(t, newFakeStore(), warsawAt(t, 10, 0), Options{SiteUser: "davka"})
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/style.css", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/css")
}

func TestHandleIndex(t *testing.T) {
	store := newFakeStore()
	h := newTestHandler(t, store, warsawAt(t, 10, 0), Options{})

	rec := httptest.NewRecorder()
	h.HandleIndex(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `lang="pl"`)
	assert.Contains(t, body, "/static/fallback1.svg")
	assert.Contains(t, body, "Nowa witryna się tworzy")

	store.seed(todayTag, "a", "b", "c", "d", "e")
	h.cache.Invalidate()
	req := httptest.NewRequest(http.MethodGet, "/?lang=de", nil)
	rec = httptest.NewRecorder()
	h.HandleIndex(rec, req)
	body = rec.Body.String()
	assert.Contains(t, body, `lang="de"`)
	assert.Contains(t, body, "https://cdn/e")
	assert.NotContains(t, body, "fallback1.svg")
	require.NotEmpty(t, rec.Result().Cookies())
	assert.Equal(t, "de", rec.Result().Cookies()[0].Value)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Language", "en-GB,en;q=0.8")
	rec = httptest.NewRecorder()
	h.HandleIndex(rec, req)
	assert.Contains(t, rec.Body.String(), `lang="en"`)

	rec = httptest.NewRecorder()
	h.HandleIndex(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminPanelFlow(t *testing.T) {
	store := newFakeStore()
	h := newTestHandler(t, store, warsawAt(t, 22, 0), Options{})
	routes := h.Routes()

	rec := httptest.NewRecorder()
	routes.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/witryna/admin", nil))
	assert.Contains(t, rec.Body.String(), "Podaj hasło, aby kontynuować.")

	login := func(token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/witryna/admin/login", strings.NewReader(url.Values{"token": {token}}.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()
		routes.ServeHTTP(rec, req)
		return rec
	}

	rec = login("")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Podaj hasło.")

	rec = login("wrong")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Nieprawidłowe hasło")

	rec = login(testToken)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	session := cookies[0]

	req := httptest.NewRequest(http.MethodGet, "/witryna/admin", nil)
	req.AddCookie(session)
	rec = httptest.NewRecorder()
	routes.ServeHTTP(rec, req)
	assert.Contains(t, rec.Body.String(), "Brak zdjęć na dzisiaj.")
	assert.Contains(t, rec.Body.String(), "10.06.2025")

	img := pngFile(t)
	body, ct := multipartBody(t, nil, part{"files", "a.png", img}, part{"files", "a.png", img})
	req = httptest.NewRequest(http.MethodPost, "/witryna/admin/upload", body)
	req.Header.Set("Content-Type", ct)
	req.AddCookie(session)
	rec = httptest.NewRecorder()
	routes.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Wgrano 1 z 1 plik.")
	assert.Contains(t, rec.Body.String(), "Pominięto 1 duplikat nazw.")
	assert.Contains(t, rec.Body.String(), "https://cdn/a.png")

	form := url.Values{"publicId": {media.DefaultFolder + "/a.png"}}
	req = httptest.NewRequest(http.MethodPost, "/witryna/admin/delete", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(session)
	rec = httptest.NewRecorder()
	routes.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, []string{media.DefaultFolder + "/a.png"}, store.deleted)

	req = httptest.NewRequest(http.MethodPost, "/witryna/admin/logout", nil)
	req.AddCookie(session)
	rec = httptest.NewRecorder()
	routes.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusSeeOther, rec.Code)

	// The old cookie no longer opens the panel.
	body, ct = multipartBody(t, nil, part{"files", "b.png", img})
	req = httptest.NewRequest(http.MethodPost, "/witryna/admin/upload", body)
	req.Header.Set("Content-Type", ct)
	req.AddCookie(session)
	rec = httptest.NewRecorder()
	routes.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Len(t, store.uploads, 1)
}

func TestPanelMessages(t *testing.T) {
	tests := []struct {
		ok, total int
		want      string
	}{
		{1, 1, "Wgrano 1 z 1 plik."},
		{2, 3, "Wgrano 2 z 3 pliki."},
		{5, 5, "Wgrano 5 z 5 plików."},
		{12, 12, "Wgrano 12 z 12 plików."},
		{22, 22, "Wgrano 22 z 22 pliki."},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, uploadedMessage(tt.ok, tt.total))
	}
	assert.Equal(t, "Pominięto 1 duplikat nazw.", duplicatesMessage(1))
	assert.Equal(t, "Pominięto 3 duplikaty nazw.", duplicatesMessage(3))
	assert.Equal(t, "Pominięto 5 duplikatów nazw.", duplicatesMessage(5))
}

func TestIPLimiter(t *testing.T) {
	now := time.Date(2025, 6, 10, 10, 0, 0, 0, time.UTC)
	l := newIPLimiter(2)
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("a"))
	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"))
	assert.True(t, l.Allow("b"))

	now = now.Add(30 * time.Second)
	assert.True(t, l.Allow("a"))

	now = now.Add(time.Hour)
	l.Allow("c")
	assert.Len(t, l.limiters, 1)
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "198.51.100.7:5555"
	assert.Equal(t, "198.51.100.7", clientIP(req, false))
	assert.Equal(t, "198.51.100.7", clientIP(req, true))

	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	assert.Equal(t, "198.51.100.7", clientIP(req, false))
	assert.Equal(t, "10.0.0.1", clientIP(req, true))
}

func TestVerifyLimitIgnoresForwardedFor(t *testing.T) {
	h := newTestHandler(t, newFakeStore(), warsawAt(t, 10, 0), Options{VerifyPerMinute: 2})

	verify := func(i int) int {
		req := httptest.NewRequest(http.MethodPost, "/api/admin/verify", strings.NewReader(`{"token":"guess"}`))
		req.RemoteAddr = "192.0.2.1:1234"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("203.0.113.%d", i))
		rec := httptest.NewRecorder()
		h.HandleVerify(rec, req)
		return rec.Code
	}

	assert.Equal(t, 401, verify(1))
	assert.Equal(t, 401, verify(2))
	for i := 3; i < 10; i++ {
		assert.Equal(t, 429, verify(i))
	}
}

func TestVerifyLimitBehindProxy(t *testing.T) {
	h := newTestHandler(t, newFakeStore(), warsawAt(t, 10, 0), Options{VerifyPerMinute: 1, TrustProxy: true})

	verify := func(fwd string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/admin/verify", strings.NewReader(`{"token":"guess"}`))
		req.RemoteAddr = "10.0.0.1:80"
		req.Header.Set("X-Forwarded-For", fwd)
		rec := httptest.NewRecorder()
		h.HandleVerify(rec, req)
		return rec.Code
	}

	assert.Equal(t, 401, verify("198.51.100.1"))
	// A spoofed leading hop does not change the key the proxy appended.
	assert.Equal(t, 429, verify("1.2.3.4, 198.51.100.1"))
	assert.Equal(t, 401, verify("198.51.100.2"))
}

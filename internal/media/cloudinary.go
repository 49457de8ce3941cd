package media

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/davka-nysa/davka/internal/models"
)

const defaultCloudinaryBaseURL = "https://api.cloudinary.com"

// CloudinaryConfig holds account credentials. URL, when set, has the form
// cloudinary://<api_key>:<api_secret>@<cloud_name> and fills empty fields.
type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
	URL       string
	BaseURL   string
}

// Configured reports whether enough credentials are present to talk to the API.
func (c CloudinaryConfig) Configured() bool {
	r, err := c.resolve()
	return err == nil && r.CloudName != "" && r.APIKey != "" && r.APISecret != ""
}

func (c CloudinaryConfig) resolve() (CloudinaryConfig, error) {
	if c.URL == "" {
		return c, nil
	}
	u, err := url.Parse(c.URL)
	if err != nil {
		return c, fmt.Errorf("invalid CLOUDINARY_URL: %w", err)
	}
	if u.Scheme != "cloudinary" {
		return c, fmt.Errorf("invalid CLOUDINARY_URL scheme %q", u.Scheme)
	}
	if c.CloudName == "" {
		c.CloudName = u.Host
	}
	if c.APIKey == "" {
		c.APIKey = u.User.Username()
	}
	if secret, ok := u.User.Password(); ok && c.APISecret == "" {
		c.APISecret = secret
	}
	return c, nil
}

// Cloudinary talks to the Upload and Admin REST APIs.
type Cloudinary struct {
	cfg        CloudinaryConfig
	baseURL    string
	httpClient *http.Client
	now        func() time.Time
}

type CloudinaryOption func(*Cloudinary)

func WithBaseURL(u string) CloudinaryOption {
	return func(c *Cloudinary) { c.baseURL = strings.TrimRight(u, "/") }
}

func WithHTTPClient(hc *http.Client) CloudinaryOption {
	return func(c *Cloudinary) { c.httpClient = hc }
}

// NewCloudinary creates a client for the configured account.
func NewCloudinary(cfg CloudinaryConfig, opts ...CloudinaryOption) (*Cloudinary, error) {
	resolved, err := cfg.resolve()
	if err != nil {
		return nil, err
	}
	if resolved.CloudName == "" || resolved.APIKey == "" || resolved.APISecret == "" {
		return nil, errors.New("cloudinary requires cloud name, api key and api secret")
	}

	c := &Cloudinary{
		cfg:     resolved,
		baseURL: defaultCloudinaryBaseURL,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		now: time.Now,
	}
	if resolved.BaseURL != "" {
		c.baseURL = strings.TrimRight(resolved.BaseURL, "/")
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type cloudinaryResource struct {
	PublicID  string    `json:"public_id"`
	SecureURL string    `json:"secure_url"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	Format    string    `json:"format"`
	Bytes     int64     `json:"bytes"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"created_at"`
}

func (r cloudinaryResource) asset() models.Asset {
	return models.Asset{
		PublicID:  r.PublicID,
		SecureURL: r.SecureURL,
		Width:     r.Width,
		Height:    r.Height,
		Format:    r.Format,
		Bytes:     r.Bytes,
		Tags:      r.Tags,
		CreatedAt: r.CreatedAt,
	}
}

// Sign returns the hex SHA-1 of the params sorted by key, joined as
// k=v pairs with '&', followed by the secret.
func Sign(params url.Values, secret string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		if k == "file" || k == "api_key" || k == "signature" || k == "resource_type" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(strings.Join(params[k], ","))
	}
	b.WriteString(secret)

	sum := sha1.Sum([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

// Upload sends one file through the signed Upload API.
func (c *Cloudinary) Upload(ctx context.Context, req UploadRequest) (models.Asset, error) {
	folder := req.Folder
	if folder == "" {
		folder = DefaultFolder
	}

	params := url.Values{}
	params.Set("folder", folder)
	if len(req.Tags) > 0 {
		params.Set("tags", strings.Join(req.Tags, ","))
	}
	params.Set("timestamp", strconv.FormatInt(c.now().Unix(), 10))
	signature := Sign(params, c.cfg.APISecret)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k := range params {
		if err := mw.WriteField(k, params.Get(k)); err != nil {
			return models.Asset{}, fmt.Errorf("failed to write form field: %w", err)
		}
	}
	_ = mw.WriteField("api_key", c.cfg.APIKey)
	_ = mw.WriteField("signature", signature)

	filename := req.Filename
	if filename == "" {
		filename = "upload"
	}
	part, err := mw.CreateFormFile("file", path.Base(filename))
	if err != nil {
		return models.Asset{}, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, req.Body); err != nil {
		return models.Asset{}, fmt.Errorf("failed to copy upload body: %w", err)
	}
	if err := mw.Close(); err != nil {
		return models.Asset{}, fmt.Errorf("failed to finish multipart body: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1_1/%s/image/upload", c.baseURL, url.PathEscape(c.cfg.CloudName))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return models.Asset{}, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())

	var res cloudinaryResource
	if err := c.do(httpReq, &res); err != nil {
		return models.Asset{}, fmt.Errorf("cloudinary upload failed: %w", err)
	}
	return res.asset(), nil
}

// ListByTag returns up to max image resources carrying tag. No pagination.
func (c *Cloudinary) ListByTag(ctx context.Context, tag string, max int) ([]models.Asset, error) {
	if max <= 0 {
		max = DefaultPageSize
	}
	q := url.Values{}
	q.Set("max_results", strconv.Itoa(max))
	q.Set("context", "true")
	endpoint := fmt.Sprintf("%s/v1_1/%s/resources/image/tags/%s?%s",
		c.baseURL, url.PathEscape(c.cfg.CloudName), url.PathEscape(tag), q.Encode())

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.SetBasicAuth(c.cfg.APIKey, c.cfg.APISecret)

	var res struct {
		Resources []cloudinaryResource `json:"resources"`
	}
	if err := c.do(httpReq, &res); err != nil {
		return nil, fmt.Errorf("cloudinary list by tag failed: %w", err)
	}

	assets := make([]models.Asset, 0, len(res.Resources))
	for _, r := range res.Resources {
		assets = append(assets, r.asset())
	}
	return assets, nil
}

// Delete removes one uploaded image by public id.
func (c *Cloudinary) Delete(ctx context.Context, publicID string) error {
	q := url.Values{}
	q.Add("public_ids[]", publicID)
	endpoint := fmt.Sprintf("%s/v1_1/%s/resources/image/upload?%s",
		c.baseURL, url.PathEscape(c.cfg.CloudName), q.Encode())

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.SetBasicAuth(c.cfg.APIKey, c.cfg.APISecret)

	var res struct {
		Deleted map[string]string `json:"deleted"`
	}
	if err := c.do(httpReq, &res); err != nil {
		return fmt.Errorf("cloudinary delete failed: %w", err)
	}
	if res.Deleted[publicID] == "not_found" {
		return ErrNotFound
	}
	return nil
}

func (c *Cloudinary) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

func (c *Cloudinary) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		msg := strings.TrimSpace(string(body))
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Message != "" {
			msg = apiErr.Error.Message
		}
		return &RemoteError{StatusCode: resp.StatusCode, Message: msg}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

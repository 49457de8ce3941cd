// Package media stores the daily showcase photos.
//
// Driver values:
//   - "cloudinary": hosted Cloudinary account (Upload and Admin REST APIs)
//   - "local": files on disk indexed in SQLite, served by this process
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/davka-nysa/davka/internal/models"
)

// DefaultFolder groups uploads of the daily showcase.
const DefaultFolder = "witryna-dnia"

// DefaultPageSize is the fixed number of assets returned per listing.
const DefaultPageSize = 100

var (
	ErrNotFound     = errors.New("asset not found")
	ErrUnauthorized = errors.New("media store rejected credentials")
)

// RemoteError wraps non-specific provider errors with the HTTP status code.
type RemoteError struct {
	StatusCode int
	Message    string
}

func (e *RemoteError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("media provider error %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("media provider error %d", e.StatusCode)
}

func (e *RemoteError) Unwrap() error {
	switch e.StatusCode {
	case 401, 403:
		return ErrUnauthorized
	case 404:
		return ErrNotFound
	}
	return nil
}

// UploadRequest carries one file. Bytes pass through unmodified.
type UploadRequest struct {
	Filename string
	Folder   string
	Tags     []string
	Body     io.Reader
}

// Store is the minimal media API used by the handlers.
type Store interface {
	Upload(ctx context.Context, req UploadRequest) (models.Asset, error)
	ListByTag(ctx context.Context, tag string, max int) ([]models.Asset, error)
	Delete(ctx context.Context, publicID string) error
	Close() error
}

// Pruner is implemented by stores that can drop old assets by tag.
type Pruner interface {
	// Tags lists every distinct tag carried by a stored asset.
	Tags(ctx context.Context) ([]string, error)
	// PruneTag deletes every asset carrying tag and reports how many went.
	PruneTag(ctx context.Context, tag string) (int, error)
}

// Config configures the media store.
type Config struct {
	Driver     string
	Cloudinary CloudinaryConfig
	Local      LocalConfig
}

// Open initializes the configured store. With no driver set, Cloudinary is
// used when credentials are present and the local store otherwise.
func Open(cfg Config) (Store, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	if driver == "" {
		driver = "local"
		if cfg.Cloudinary.Configured() {
			driver = "cloudinary"
		}
	}

	switch driver {
	case "cloudinary":
		c, err := NewCloudinary(cfg.Cloudinary)
		if err != nil {
			return nil, err
		}
		return c, nil
	case "local":
		l, err := OpenLocal(cfg.Local)
		if err != nil {
			return nil, err
		}
		return l, nil
	default:
		return nil, errors.New("unknown media driver: " + driver)
	}
}

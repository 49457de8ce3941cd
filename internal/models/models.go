package models

import "time"

// Status is the coarse outcome of a daily list request.
type Status string

const (
	StatusOK     Status = "ok"
	StatusEmpty  Status = "empty"
	StatusClosed Status = "closed"
	StatusError  Status = "error"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusOK, StatusEmpty, StatusClosed, StatusError:
		return true
	}
	return false
}

// ImageItem is one photo of the daily showcase as served to clients.
type ImageItem struct {
	ID     string `json:"id"`
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Payload is the body of GET /api/daily/list.
type Payload struct {
	Status Status      `json:"status"`
	Images []ImageItem `json:"images"`
	Error  string      `json:"error,omitempty"`
}

// Asset is a stored image as reported by a media store.
type Asset struct {
	PublicID  string    `json:"public_id"`
	SecureURL string    `json:"secure_url"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	Format    string    `json:"format,omitempty"`
	Bytes     int64     `json:"bytes,omitempty"`
	Tags      []string  `json:"tags,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Item projects an asset into the public showcase shape.
func (a Asset) Item() ImageItem {
	return ImageItem{
		ID:     a.PublicID,
		URL:    a.SecureURL,
		Width:  a.Width,
		Height: a.Height,
	}
}

// AdminSession represents a logged-in admin panel browser.
type AdminSession struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session is no longer usable at now.
func (s AdminSession) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

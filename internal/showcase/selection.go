// Package showcase turns the daily list into what the carousel displays and
// hosts the carousel scheduler behind a single-goroutine widget.
package showcase

import (
	"time"

	"github.com/davka-nysa/davka/internal/locale"
	"github.com/davka-nysa/davka/internal/models"
)

// Local hours during which a non-empty list is shown with the "closed"
// subtitle instead of the usual one.
const (
	lateWindowStart = 21
	lateWindowEnd   = 23
)

// SubtitleKey selects which showcase subtitle is displayed.
type SubtitleKey string

const (
	SubtitleDefault SubtitleKey = "subtitle"
	SubtitleClosed  SubtitleKey = "closed"
	SubtitleEmpty   SubtitleKey = "empty"
)

// Text resolves the key against a dictionary.
func (k SubtitleKey) Text(t locale.Showcase) string {
	switch k {
	case SubtitleClosed:
		return t.Closed
	case SubtitleEmpty:
		return t.Empty
	}
	return t.Subtitle
}

// FallbackImages is the local set shown whenever live data is unusable.
var FallbackImages = []models.ImageItem{
	{ID: "f1", URL: "/static/fallback1.svg", Width: 1200, Height: 800},
	{ID: "f2", URL: "/static/fallback2.svg", Width: 1200, Height: 800},
	{ID: "f3", URL: "/static/fallback3.svg", Width: 1200, Height: 800},
	{ID: "f4", URL: "/static/fallback4.svg", Width: 1200, Height: 800},
}

// Selection is the list handed to the scheduler plus display metadata.
type Selection struct {
	Status   models.Status
	Images   []models.ImageItem
	Fallback bool
	Subtitle SubtitleKey
}

// Select applies the display rules to a payload. now must be in the café's
// local time. The rules, in order:
//   - from 00:01 to 00:59 the list is treated as empty;
//   - between 21:00 and 23:59 a non-empty list is shown as-is with the
//     "closed" subtitle;
//   - anything that is not ok, or carries no images, falls back.
func Select(p models.Payload, now time.Time) Selection {
	return SelectWith(p, now, FallbackImages)
}

// SelectWith is Select with a custom fallback set.
func SelectWith(p models.Payload, now time.Time, fallback []models.ImageItem) Selection {
	status := p.Status
	count := len(p.Images)
	h, m := now.Hour(), now.Minute()

	late := h >= lateWindowStart && h <= lateWindowEnd
	if h == 0 && m >= 1 {
		status = models.StatusEmpty
	}
	if late && count > 0 {
		status = models.StatusOK
	}

	sel := Selection{Status: status, Images: p.Images, Subtitle: SubtitleDefault}
	if status != models.StatusOK || count == 0 {
		sel.Fallback = true
		sel.Images = fallback
		sel.Subtitle = SubtitleEmpty
		return sel
	}
	if late {
		sel.Subtitle = SubtitleClosed
	}
	return sel
}

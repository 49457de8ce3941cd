// Package daily derives the showcase tag of the current day in the café's
// local time zone.
package daily

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"
)

const (
	DefaultTimezone    = "Europe/Warsaw"
	DefaultPrefix      = "witryna-"
	DefaultClosingHour = 21

	dateLayout = "2006-01-02"
)

// Clock resolves "today" for tagging uploads and gating the public list.
type Clock struct {
	Location    *time.Location
	Prefix      string
	ClosingHour int
	Now         func() time.Time
}

// NewClock loads tz and fills defaults for empty values.
func NewClock(tz, prefix string, closingHour int) (Clock, error) {
	if strings.TrimSpace(tz) == "" {
		tz = DefaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return Clock{}, fmt.Errorf("failed to load timezone %q: %w", tz, err)
	}
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return Clock{Location: loc, Prefix: prefix, ClosingHour: closingHour, Now: time.Now}, nil
}

// Local returns the current time in the café's time zone.
func (c Clock) Local() time.Time {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	loc := c.Location
	if loc == nil {
		loc = time.Local
	}
	return now().In(loc)
}

// Today returns the tag for the current local day along with the local time.
func (c Clock) Today() (string, time.Time) {
	local := c.Local()
	return c.TagFor(local), local
}

// TagFor formats the tag of the day containing t (in the clock's zone).
func (c Clock) TagFor(t time.Time) string {
	if c.Location != nil {
		t = t.In(c.Location)
	}
	return c.prefix() + t.Format(dateLayout)
}

// ParseTag extracts the day from a tag produced by TagFor.
func (c Clock) ParseTag(tag string) (time.Time, bool) {
	rest, ok := strings.CutPrefix(tag, c.prefix())
	if !ok {
		return time.Time{}, false
	}
	loc := c.Location
	if loc == nil {
		loc = time.Local
	}
	d, err := time.ParseInLocation(dateLayout, rest, loc)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// IsClosed reports whether the local time is past the closing hour.
func (c Clock) IsClosed(local time.Time) bool {
	return local.Hour() >= c.ClosingHour
}

func (c Clock) prefix() string {
	if c.Prefix == "" {
		return DefaultPrefix
	}
	return c.Prefix
}

package datefmt

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
)

const (
	// ISOLayout is the stored timestamp format, always UTC with milliseconds.
	ISOLayout = "2006-01-02T15:04:05.000Z"
	// DisplayLayout is the dd/MM/yyyy HH:mm layout shown to users.
	DisplayLayout = "02/01/2006 15:04"
)

var defaultLoc = time.UTC

// SetDefaultLocation sets the location used by Display (fallback UTC).
func SetDefaultLocation(loc *time.Location) {
	if loc != nil {
		defaultLoc = loc
	}
}

// LoadDefaultLocation resolves an IANA zone name (e.g. "America/Sao_Paulo")
// and makes it the display location. An empty name keeps the current one.
func LoadDefaultLocation(name string) error {
	if name == "" {
		return nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return fmt.Errorf("loading timezone %q: %w", name, err)
	}
	SetDefaultLocation(loc)
	return nil
}

// DefaultLocation returns the current display location.
func DefaultLocation() *time.Location {
	return defaultLoc
}

// ISO returns t as a UTC millisecond timestamp, e.g. "2024-03-01T12:30:00.000Z".
func ISO(t time.Time) string {
	return t.UTC().Format(ISOLayout)
}

// ParseISO accepts the ISO layout as well as any RFC 3339 timestamp.
func ParseISO(s string) (time.Time, error) {
	if t, err := time.Parse(ISOLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("timestamp must be ISO-8601: %w", err)
	}
	return t.UTC(), nil
}

// Display formats t as dd/MM/yyyy HH:mm in the default location.
func Display(t time.Time) string {
	return t.In(defaultLoc).Format(DisplayLayout)
}

// DisplayISO is Display for a stored timestamp; unparsable input is returned as is.
func DisplayISO(s string) string {
	t, err := ParseISO(s)
	if err != nil {
		return s
	}
	return Display(t)
}

// Relative describes t relative to now ("3 minutes ago").
func Relative(t, now time.Time) string {
	return humanize.RelTime(t, now, "ago", "from now")
}

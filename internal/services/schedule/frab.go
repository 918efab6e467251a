package schedule

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// Frab is the schedule XML interchange format used by frab, pretalx and the
// c3voc toolchain. Only the fields the importer needs are mapped.

type FrabSchedule struct {
	XMLName    xml.Name       `xml:"schedule"`
	Version    string         `xml:"version"`
	Conference FrabConference `xml:"conference"`
	Days       []FrabDay      `xml:"day"`
}

type FrabConference struct {
	Title   string `xml:"title"`
	Acronym string `xml:"acronym"`
	Start   string `xml:"start"`
	End     string `xml:"end"`
}

type FrabDay struct {
	Index int        `xml:"index,attr"`
	Date  string     `xml:"date,attr"`
	Rooms []FrabRoom `xml:"room"`
}

type FrabRoom struct {
	Name   string      `xml:"name,attr"`
	Events []FrabEvent `xml:"event"`
}

type FrabEvent struct {
	ID          string       `xml:"id,attr"`
	GUID        string       `xml:"guid,attr"`
	Date        string       `xml:"date"`
	Duration    string       `xml:"duration"`
	End         string       `xml:"end"`
	Slug        string       `xml:"slug"`
	Title       string       `xml:"title"`
	Track       string       `xml:"track"`
	Type        string       `xml:"type"`
	Language    string       `xml:"language"`
	Abstract    string       `xml:"abstract"`
	Description string       `xml:"description"`
	Recording   FrabOptout   `xml:"recording"`
	Persons     []FrabPerson `xml:"persons>person"`
}

type FrabOptout struct {
	Optout bool `xml:"optout"`
}

type FrabPerson struct {
	ID   string `xml:"id,attr"`
	Name string `xml:",chardata"`
}

// ParseFrab decodes a frab schedule XML document.
func ParseFrab(r io.Reader) (*FrabSchedule, error) {
	var s FrabSchedule
	if err := xml.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to parse schedule xml: %w", err)
	}
	if s.Version == "" {
		return nil, fmt.Errorf("schedule xml has no version")
	}
	return &s, nil
}

// Start returns the event's start time, accepting both RFC 3339 dates and
// bare dates some exporters emit.
func (e *FrabEvent) Start() (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, e.Date); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised event date %q", e.Date)
}

// EndTime returns the explicit end when the export carries one, otherwise
// start plus duration. Exporters write ends either as full timestamps or as
// clock times on the event's day.
func (e *FrabEvent) EndTime(start time.Time, duration time.Duration) time.Time {
	raw := strings.TrimSpace(e.End)
	if raw == "" {
		return start.Add(duration)
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, raw); err == nil {
			end := time.Date(start.Year(), start.Month(), start.Day(),
				t.Hour(), t.Minute(), t.Second(), 0, start.Location())
			if end.Before(start) {
				// Talk crosses midnight.
				end = end.Add(24 * time.Hour)
			}
			return end
		}
	}
	return start.Add(duration)
}

// ParseDuration converts frab's "HH:MM" or "HH:MM:SS" duration notation.
func ParseDuration(s string) (time.Duration, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("unrecognised duration %q", s)
	}

	var total time.Duration
	units := []time.Duration{time.Hour, time.Minute, time.Second}
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("unrecognised duration %q", s)
		}
		total += time.Duration(n) * units[i]
	}
	if total == 0 {
		return 0, fmt.Errorf("zero duration %q", s)
	}
	return total, nil
}

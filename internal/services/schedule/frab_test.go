package schedule

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const frabFixture = `<?xml version="1.0" encoding="UTF-8"?>
<schedule>
  <version>0.3</version>
  <conference>
    <title>DemoCon 2026</title>
    <acronym>democon26</acronym>
    <start>2026-09-18</start>
    <end>2026-09-19</end>
  </conference>
  <day index="1" date="2026-09-18">
    <room name="Saal 1">
      <event id="413" guid="f0d3-4c09">
        <date>2026-09-18T10:30:00+02:00</date>
        <duration>00:45</duration>
        <end>11:20</end>
        <slug>opening</slug>
        <title>Opening Ceremony</title>
        <track>Culture</track>
        <type>Talk</type>
        <language>en</language>
        <abstract>Welcome everyone.</abstract>
        <description></description>
        <recording>
          <optout>true</optout>
        </recording>
        <persons>
          <person id="7">Jane Speaker</person>
          <person id="8">John Panelist</person>
        </persons>
      </event>
    </room>
    <room name="Saal 2">
      <event id="414" guid="aa91-77bc">
        <date>2026-09-18T11:30:00+02:00</date>
        <duration>01:30:00</duration>
        <slug>workshop</slug>
        <title>Hands-on Workshop</title>
        <track>Workshops</track>
        <type>Workshop</type>
        <language>de</language>
        <abstract></abstract>
        <description>Bring a laptop.</description>
        <recording>
          <optout>false</optout>
        </recording>
        <persons>
          <person id="9">Erika Muster</person>
        </persons>
      </event>
    </room>
  </day>
</schedule>`

func TestParseFrab(t *testing.T) {
	s, err := ParseFrab(strings.NewReader(frabFixture))
	require.NoError(t, err)

	require.Equal(t, "0.3", s.Version)
	require.Equal(t, "DemoCon 2026", s.Conference.Title)
	require.Equal(t, "democon26", s.Conference.Acronym)
	require.Len(t, s.Days, 1)
	require.Len(t, s.Days[0].Rooms, 2)

	room := s.Days[0].Rooms[0]
	require.Equal(t, "Saal 1", room.Name)
	require.Len(t, room.Events, 1)

	ev := room.Events[0]
	require.Equal(t, "413", ev.ID)
	require.Equal(t, "Opening Ceremony", ev.Title)
	require.Equal(t, "Talk", ev.Type)
	require.Equal(t, "en", ev.Language)
	require.Equal(t, "11:20", ev.End)
	require.True(t, ev.Recording.Optout)
	require.Len(t, ev.Persons, 2)
	require.Equal(t, "Jane Speaker", ev.Persons[0].Name)
	require.Equal(t, "7", ev.Persons[0].ID)

	require.False(t, s.Days[0].Rooms[1].Events[0].Recording.Optout)
}

func TestParseFrabRejectsMissingVersion(t *testing.T) {
	_, err := ParseFrab(strings.NewReader(`<schedule><conference><title>x</title></conference></schedule>`))
	require.Error(t, err)
}

func TestParseFrabRejectsGarbage(t *testing.T) {
	_, err := ParseFrab(strings.NewReader(`not xml at all`))
	require.Error(t, err)
}

func TestFrabEventStart(t *testing.T) {
	ev := &FrabEvent{Date: "2026-09-18T10:30:00+02:00"}
	start, err := ev.Start()
	require.NoError(t, err)
	require.Equal(t, 10, start.Hour())

	ev = &FrabEvent{Date: "2026-09-18T10:30:00"}
	start, err = ev.Start()
	require.NoError(t, err)
	require.Equal(t, time.Date(2026, 9, 18, 10, 30, 0, 0, time.UTC), start)

	ev = &FrabEvent{Date: "2026-09-18"}
	start, err = ev.Start()
	require.NoError(t, err)
	require.Equal(t, time.Date(2026, 9, 18, 0, 0, 0, 0, time.UTC), start)

	_, err = (&FrabEvent{Date: "someday"}).Start()
	require.Error(t, err)
}

func TestFrabEventEndTime(t *testing.T) {
	start := time.Date(2026, 9, 18, 10, 30, 0, 0, time.UTC)

	// No explicit end: start plus duration.
	end := (&FrabEvent{}).EndTime(start, 45*time.Minute)
	require.Equal(t, start.Add(45*time.Minute), end)

	// Explicit clock-time end wins over the duration.
	end = (&FrabEvent{End: "11:20"}).EndTime(start, 45*time.Minute)
	require.Equal(t, time.Date(2026, 9, 18, 11, 20, 0, 0, time.UTC), end)

	end = (&FrabEvent{End: "11:20:30"}).EndTime(start, 45*time.Minute)
	require.Equal(t, time.Date(2026, 9, 18, 11, 20, 30, 0, time.UTC), end)

	// Full timestamps are accepted too.
	end = (&FrabEvent{End: "2026-09-18T12:00:00Z"}).EndTime(start, 45*time.Minute)
	require.Equal(t, time.Date(2026, 9, 18, 12, 0, 0, 0, time.UTC), end)

	// A clock time before the start rolls over to the next day.
	end = (&FrabEvent{End: "00:15"}).EndTime(time.Date(2026, 9, 18, 23, 30, 0, 0, time.UTC), time.Hour)
	require.Equal(t, time.Date(2026, 9, 19, 0, 15, 0, 0, time.UTC), end)

	// Unparseable ends fall back to the duration.
	end = (&FrabEvent{End: "whenever"}).EndTime(start, 45*time.Minute)
	require.Equal(t, start.Add(45*time.Minute), end)
}

func TestParseDuration(t *testing.T) {
	d, err := ParseDuration("00:45")
	require.NoError(t, err)
	require.Equal(t, 45*time.Minute, d)

	d, err = ParseDuration("01:30:30")
	require.NoError(t, err)
	require.Equal(t, time.Hour+30*time.Minute+30*time.Second, d)

	d, err = ParseDuration(" 02:00 ")
	require.NoError(t, err)
	require.Equal(t, 2*time.Hour, d)
}

func TestParseDurationRejectsInvalid(t *testing.T) {
	for _, s := range []string{"", "45", "1:2:3:4", "aa:bb", "-1:30", "00:00"} {
		_, err := ParseDuration(s)
		require.Error(t, err, "duration %q must be rejected", s)
	}
}

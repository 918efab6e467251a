package schedule

import (
	"time"

	"github.com/google/uuid"
)

type Room struct {
	ID        uuid.UUID `db:"id" json:"id"`
	EventID   uuid.UUID `db:"event_id" json:"event_id"`
	Name      string    `db:"name" json:"name"`
	Position  int       `db:"position" json:"position"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Schedule is one version of an event's timetable. The row with a nil
// Version is the work-in-progress schedule organisers edit.
type Schedule struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	EventID     uuid.UUID  `db:"event_id" json:"event_id"`
	Version     *string    `db:"version" json:"version"`
	PublishedAt *time.Time `db:"published_at" json:"published_at"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}

func (s *Schedule) IsWIP() bool {
	return s.Version == nil
}

type TalkSlot struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	ScheduleID   uuid.UUID  `db:"schedule_id" json:"schedule_id"`
	SubmissionID uuid.UUID  `db:"submission_id" json:"submission_id"`
	RoomID       *uuid.UUID `db:"room_id" json:"room_id"`
	StartTime    *time.Time `db:"start_time" json:"start_time"`
	EndTime      *time.Time `db:"end_time" json:"end_time"`
	IsVisible    bool       `db:"is_visible" json:"is_visible"`
}

type SlotPlacement struct {
	RoomID    *uuid.UUID `json:"room_id"`
	StartTime *time.Time `json:"start_time"`
	EndTime   *time.Time `json:"end_time"`
}

// ImportResult summarises what a frab import created.
type ImportResult struct {
	ScheduleID  uuid.UUID `json:"schedule_id"`
	Version     string    `json:"version"`
	Rooms       int       `json:"rooms"`
	Submissions int       `json:"submissions"`
	Speakers    int       `json:"speakers"`
	Slots       int       `json:"slots"`
}

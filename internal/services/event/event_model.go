package event

import (
	"time"

	"github.com/google/uuid"
)

type Organiser struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Slug      string    `db:"slug" json:"slug"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type Event struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	OrganiserID     uuid.UUID  `db:"organiser_id" json:"organiser_id"`
	Name            string     `db:"name" json:"name"`
	Slug            string     `db:"slug" json:"slug"`
	Locale          string     `db:"locale" json:"locale"`
	Timezone        string     `db:"timezone" json:"timezone"`
	DateFrom        *time.Time `db:"date_from" json:"date_from"`
	DateTo          *time.Time `db:"date_to" json:"date_to"`
	IsPublic        bool       `db:"is_public" json:"is_public"`
	LandingPageText *string    `db:"landing_page_text" json:"landing_page_text"`
	MailFrom        *string    `db:"mail_from" json:"mail_from"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}

type CreateEventRequest struct {
	OrganiserID uuid.UUID  `json:"organiser_id"`
	Name        string     `json:"name"`
	Slug        string     `json:"slug"`
	Locale      string     `json:"locale"`
	Timezone    string     `json:"timezone"`
	DateFrom    *time.Time `json:"date_from"`
	DateTo      *time.Time `json:"date_to"`
}

type UpdateEventRequest struct {
	Name            *string    `json:"name"`
	Locale          *string    `json:"locale"`
	Timezone        *string    `json:"timezone"`
	DateFrom        *time.Time `json:"date_from"`
	DateTo          *time.Time `json:"date_to"`
	IsPublic        *bool      `json:"is_public"`
	LandingPageText *string    `json:"landing_page_text"`
	MailFrom        *string    `json:"mail_from"`
}

package domain

import "time"

type MediaType string

const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
)

func (m MediaType) Valid() bool {
	return m == MediaImage || m == MediaVideo
}

// TimelineEvent is a milestone on the owner's story page
type TimelineEvent struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Title       string    `json:"title"`
	Year        int       `json:"year"`
	Description string    `json:"description,omitempty"`
	MediaURL    string    `json:"media_url,omitempty"`
	MediaType   MediaType `json:"media_type"`
	HasMedia    bool      `json:"has_media,omitempty"` // set when MediaURL is withheld
	Order       int       `json:"order"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (e TimelineEvent) Key() string { return e.ID }
func (e TimelineEvent) Rank() int   { return e.Order }

func (e TimelineEvent) WithRank(order int) TimelineEvent {
	e.Order = order
	return e
}

type NewTimelineEvent struct {
	Title       string    `json:"title"`
	Year        int       `json:"year"`
	Description string    `json:"description,omitempty"`
	MediaURL    string    `json:"media_url,omitempty"`
	MediaType   MediaType `json:"media_type,omitempty"`
}

type TimelineEventPatch struct {
	Title       *string    `json:"title,omitempty"`
	Year        *int       `json:"year,omitempty"`
	Description *string    `json:"description,omitempty"`
	MediaURL    *string    `json:"media_url,omitempty"`
	MediaType   *MediaType `json:"media_type,omitempty"`
}

func (p TimelineEventPatch) Apply(e *TimelineEvent) {
	if p.Title != nil {
		e.Title = *p.Title
	}
	if p.Year != nil {
		e.Year = *p.Year
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.MediaURL != nil {
		e.MediaURL = *p.MediaURL
	}
	if p.MediaType != nil {
		e.MediaType = *p.MediaType
	}
}

// Media is a timeline event's media, either inline bytes decoded from a
// data URL or an external URL to redirect to.
type Media struct {
	ContentType string
	Data        []byte
	URL         string
}

package domain

import "time"

// User is the Owner of links, groups and timeline events
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Social is an icon link shown under the profile header
type Social struct {
	Icon     string `json:"icon"`
	URL      string `json:"url"`
	Label    string `json:"label"`
	IsActive bool   `json:"is_active"`
}

type TimelineLayout string

const (
	TimelineEditorial TimelineLayout = "editorial"
	TimelineClassic   TimelineLayout = "classic"
)

// Profile holds the display fields of an owner's public page
type Profile struct {
	UserID         string         `json:"user_id"`
	Name           string         `json:"name"`
	Bio            string         `json:"bio"` // Markdown
	ImageURL       string         `json:"image_url,omitempty"`
	ImageObjectFit string         `json:"image_object_fit,omitempty"`
	Socials        []Social       `json:"socials"` // Handled as JSON text in SQLite
	HeroTitle      string         `json:"hero_title,omitempty"`
	HeroSubtitle   string         `json:"hero_subtitle,omitempty"`
	Theme          string         `json:"theme"`
	TimelineLayout TimelineLayout `json:"timeline_layout"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

type ProfilePatch struct {
	Name           *string         `json:"name,omitempty"`
	Bio            *string         `json:"bio,omitempty"`
	ImageURL       *string         `json:"image_url,omitempty"`
	ImageObjectFit *string         `json:"image_object_fit,omitempty"`
	Socials        *[]Social       `json:"socials,omitempty"`
	HeroTitle      *string         `json:"hero_title,omitempty"`
	HeroSubtitle   *string         `json:"hero_subtitle,omitempty"`
	Theme          *string         `json:"theme,omitempty"`
	TimelineLayout *TimelineLayout `json:"timeline_layout,omitempty"`
}

func (p ProfilePatch) Apply(pr *Profile) {
	if p.Name != nil {
		pr.Name = *p.Name
	}
	if p.Bio != nil {
		pr.Bio = *p.Bio
	}
	if p.ImageURL != nil {
		pr.ImageURL = *p.ImageURL
	}
	if p.ImageObjectFit != nil {
		pr.ImageObjectFit = *p.ImageObjectFit
	}
	if p.Socials != nil {
		pr.Socials = *p.Socials
	}
	if p.HeroTitle != nil {
		pr.HeroTitle = *p.HeroTitle
	}
	if p.HeroSubtitle != nil {
		pr.HeroSubtitle = *p.HeroSubtitle
	}
	if p.Theme != nil {
		pr.Theme = *p.Theme
	}
	if p.TimelineLayout != nil {
		pr.TimelineLayout = *p.TimelineLayout
	}
}

// PublicPage is everything a visitor sees on /u/{username}
type PublicPage struct {
	Username string          `json:"username"`
	Profile  Profile         `json:"profile"`
	Groups   []GroupView     `json:"groups"`
	Timeline []TimelineEvent `json:"timeline,omitempty"`
}

package domain

import "time"

// LinkLayout controls how a link button is rendered on the public page
type LinkLayout string

const (
	LayoutClassic  LinkLayout = "classic"
	LayoutFeatured LinkLayout = "featured"
)

func (l LinkLayout) Valid() bool {
	return l == LayoutClassic || l == LayoutFeatured
}

// Link is a button on an owner's public page. Group holds the group name,
// not a row id; the group row may not exist yet.
type Link struct {
	ID        string     `json:"id"`
	OwnerID   string     `json:"owner_id"`
	Title     string     `json:"title"`
	Subtitle  string     `json:"subtitle,omitempty"`
	URL       string     `json:"url"`
	Icon      string     `json:"icon"`
	Group     string     `json:"group"`
	Order     int        `json:"order"`
	IsActive  bool       `json:"is_active"`
	Layout    LinkLayout `json:"layout"`
	Thumbnail string     `json:"thumbnail,omitempty"`
	Clicks    int64      `json:"clicks,omitempty"` // Aggregated count
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (l Link) Key() string   { return l.ID }
func (l Link) Rank() int     { return l.Order }
func (l Link) Scope() string { return l.Group }

func (l Link) WithRank(order int) Link {
	l.Order = order
	return l
}

// NewLink holds the fields accepted when creating a link
type NewLink struct {
	Title     string     `json:"title"`
	Subtitle  string     `json:"subtitle,omitempty"`
	URL       string     `json:"url"`
	Icon      string     `json:"icon,omitempty"`
	Group     string     `json:"group,omitempty"`
	IsActive  *bool      `json:"is_active,omitempty"`
	Layout    LinkLayout `json:"layout,omitempty"`
	Thumbnail string     `json:"thumbnail,omitempty"`
}

// LinkPatch lists the mutable fields of a link. Nil fields are left untouched.
type LinkPatch struct {
	Title     *string     `json:"title,omitempty"`
	Subtitle  *string     `json:"subtitle,omitempty"`
	URL       *string     `json:"url,omitempty"`
	Icon      *string     `json:"icon,omitempty"`
	Group     *string     `json:"group,omitempty"`
	IsActive  *bool       `json:"is_active,omitempty"`
	Layout    *LinkLayout `json:"layout,omitempty"`
	Thumbnail *string     `json:"thumbnail,omitempty"`
}

// Apply copies the provided fields onto link
func (p LinkPatch) Apply(link *Link) {
	if p.Title != nil {
		link.Title = *p.Title
	}
	if p.Subtitle != nil {
		link.Subtitle = *p.Subtitle
	}
	if p.URL != nil {
		link.URL = *p.URL
	}
	if p.Icon != nil {
		link.Icon = *p.Icon
	}
	if p.Group != nil {
		link.Group = *p.Group
	}
	if p.IsActive != nil {
		link.IsActive = *p.IsActive
	}
	if p.Layout != nil {
		link.Layout = *p.Layout
	}
	if p.Thumbnail != nil {
		link.Thumbnail = *p.Thumbnail
	}
}

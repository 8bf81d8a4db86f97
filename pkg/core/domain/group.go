package domain

import "time"

// Group is the metadata row for a group of links (description, position).
type Group struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Order       int       `json:"order"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// GroupView is a group as displayed: either a stored row or a name that
// only exists as a tag on links.
type GroupView struct {
	ID           string `json:"id,omitempty"`
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	Order        int    `json:"order"`
	Materialized bool   `json:"materialized"`
	LinkCount    int    `json:"link_count"`
	Links        []Link `json:"links,omitempty"` // Populated for the public page
}

func (g GroupView) Key() string { return g.Name }
func (g GroupView) Rank() int   { return g.Order }

func (g GroupView) WithRank(order int) GroupView {
	g.Order = order
	return g
}

// GroupPatch lists the mutable fields of a group
type GroupPatch struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

// GroupOrder positions a group by name
type GroupOrder struct {
	Name  string `json:"name"`
	Order int    `json:"order"`
}

// DefaultGroups are seeded for every new account
var DefaultGroups = []Group{
	{Name: "Music", Description: "My latest releases", Order: 1},
	{Name: "Socials", Description: "Connect with me", Order: 2},
	{Name: "Work", Description: "Projects & Portfolio", Order: 3},
}

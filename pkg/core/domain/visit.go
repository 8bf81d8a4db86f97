package domain

import "time"

// Visit represents a click-through on a link of a public page
type Visit struct {
	ID        int64     `json:"id"`
	LinkID    string    `json:"link_id"`
	OwnerID   string    `json:"owner_id"`
	Referer   string    `json:"referer"`
	UserAgent string    `json:"user_agent"`
	IPHash    string    `json:"ip_hash"` // Anonymized IP
	CreatedAt time.Time `json:"created_at"`
}

// LinkStats represents aggregated statistics for a link
type LinkStats struct {
	TotalClicks int64            `json:"total_clicks"`
	Referrers   map[string]int64 `json:"referrers"`    // count by referer
	DailyClicks []DailyClick     `json:"daily_clicks"` // timeline
}

type DailyClick struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Count int64  `json:"count"`
}

// PageView represents a visit to an owner's public page
type PageView struct {
	ID        int64     `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Referer   string    `json:"referer"`
	UserAgent string    `json:"user_agent"`
	IPHash    string    `json:"ip_hash"`
	CreatedAt time.Time `json:"created_at"`
}

type PageViewStats struct {
	TotalViews int64            `json:"total_views"`
	Referrers  map[string]int64 `json:"referrers"`
}

// Dashboard summarizes an owner's views and clicks
type Dashboard struct {
	TopLinks    []Link           `json:"top_links"`
	TotalClicks int64            `json:"total_clicks"`
	Views       int64            `json:"views"`
	CTR         float64          `json:"ctr"` // clicks per view, percent with one decimal
	Referrers   map[string]int64 `json:"referrers"`
}

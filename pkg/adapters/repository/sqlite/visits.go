package sqlite

import (
	"context"
	"database/sql"

	"github.com/wadjakorntonsri/go-link-in-bio/pkg/core/domain"
)

func (r *SQLiteRepository) RecordVisit(ctx context.Context, visit *domain.Visit) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		// 1. Insert Visit Record
		queryVisit := `INSERT INTO visits (link_id, owner_id, referer, user_agent, ip_hash, created_at) VALUES (?, ?, ?, ?, ?, ?)`
		res, err := tx.ExecContext(ctx, queryVisit, visit.LinkID, visit.OwnerID, visit.Referer, visit.UserAgent, visit.IPHash,
			visit.CreatedAt.Format("2006-01-02 15:04:05"))
		if err != nil {
			return err
		}
		if id, err := res.LastInsertId(); err == nil {
			visit.ID = id
		}

		// 2. Increment Link Clicks Counter (Atomic)
		_, err = tx.ExecContext(ctx, `UPDATE links SET clicks = clicks + 1 WHERE id = ?`, visit.LinkID)
		return err
	})
}

func (r *SQLiteRepository) GetLinkStats(ctx context.Context, linkID string) (*domain.LinkStats, error) {
	stats := &domain.LinkStats{
		Referrers:   make(map[string]int64),
		DailyClicks: []domain.DailyClick{},
	}

	// Total Clicks
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM visits WHERE link_id = ?`, linkID).Scan(&stats.TotalClicks)
	if err != nil {
		return nil, err
	}

	// Referrers
	rows, err := r.db.QueryContext(ctx, `SELECT COALESCE(referer, ''), COUNT(*) as c FROM visits WHERE link_id = ? GROUP BY referer ORDER BY c DESC LIMIT 10`, linkID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var ref string
		var count int64
		if err := rows.Scan(&ref, &count); err != nil {
			return nil, err
		}
		if ref == "" {
			ref = "Direct"
		}
		stats.Referrers[ref] += count
	}
	rows.Close()

	// Daily Clicks (Last 30 days)
	rows2, err := r.db.QueryContext(ctx, `
		SELECT strftime('%Y-%m-%d', created_at) as date, COUNT(*)
		FROM visits
		WHERE link_id = ?
		GROUP BY date
		ORDER BY date DESC
		LIMIT 30`, linkID)
	if err != nil {
		return nil, err
	}
	defer rows2.Close()
	for rows2.Next() {
		var dc domain.DailyClick
		if err := rows2.Scan(&dc.Date, &dc.Count); err != nil {
			return nil, err
		}
		stats.DailyClicks = append(stats.DailyClicks, dc)
	}

	return stats, rows2.Err()
}

func (r *SQLiteRepository) GetDashboardStats(ctx context.Context, ownerID string, limit int) ([]domain.Link, int64, error) {
	// Summing the counter column avoids scanning visits
	var total int64
	err := r.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(clicks), 0) FROM links WHERE owner_id = ? AND deleted_at IS NULL`, ownerID).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + linkColumns + ` FROM links WHERE owner_id = ? AND deleted_at IS NULL ORDER BY clicks DESC LIMIT ?`
	rows, err := r.db.QueryContext(ctx, query, ownerID, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	links := []domain.Link{}
	for rows.Next() {
		l, err := scanLink(rows)
		if err != nil {
			return nil, 0, err
		}
		links = append(links, l)
	}
	return links, total, rows.Err()
}

func (r *SQLiteRepository) RecordPageView(ctx context.Context, view *domain.PageView) error {
	query := `INSERT INTO page_views (owner_id, referer, user_agent, ip_hash, created_at) VALUES (?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query, view.OwnerID, view.Referer, view.UserAgent, view.IPHash,
		view.CreatedAt.Format("2006-01-02 15:04:05"))
	if err != nil {
		return err
	}
	if id, err := res.LastInsertId(); err == nil {
		view.ID = id
	}
	return nil
}

func (r *SQLiteRepository) GetPageViewStats(ctx context.Context, ownerID string) (*domain.PageViewStats, error) {
	stats := &domain.PageViewStats{Referrers: make(map[string]int64)}

	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM page_views WHERE owner_id = ?`, ownerID).Scan(&stats.TotalViews)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `SELECT COALESCE(referer, ''), COUNT(*) as c FROM page_views WHERE owner_id = ? GROUP BY referer ORDER BY c DESC LIMIT 5`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var ref string
		var count int64
		if err := rows.Scan(&ref, &count); err != nil {
			return nil, err
		}
		if ref == "" {
			ref = "Direct"
		}
		stats.Referrers[ref] += count
	}
	return stats, rows.Err()
}

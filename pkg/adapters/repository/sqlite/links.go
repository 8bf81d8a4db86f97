package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/wadjakorntonsri/go-link-in-bio/pkg/core/domain"
)

const linkColumns = `id, owner_id, title, subtitle, url, icon, group_name, sort_order, is_active, layout, thumbnail, clicks, created_at, updated_at`

func scanLink(s scanner) (domain.Link, error) {
	var l domain.Link
	var layout string
	var clicks sql.NullInt64
	err := s.Scan(&l.ID, &l.OwnerID, &l.Title, &l.Subtitle, &l.URL, &l.Icon, &l.Group, &l.Order,
		&l.IsActive, &layout, &l.Thumbnail, &clicks, &l.CreatedAt, &l.UpdatedAt)
	l.Layout = domain.LinkLayout(layout)
	l.Clicks = clicks.Int64
	return l, err
}

// PrependLink inserts link at order 0 and moves every other link of the
// owner down by one, regardless of group.
func (r *SQLiteRepository) PrependLink(ctx context.Context, link *domain.Link) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`UPDATE links SET sort_order = sort_order + 1 WHERE owner_id = ? AND deleted_at IS NULL`, link.OwnerID)
		if err != nil {
			return err
		}

		link.Order = 0
		query := `INSERT INTO links (id, owner_id, title, subtitle, url, icon, group_name, sort_order, is_active, layout, thumbnail, created_at, updated_at)
				  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
		_, err = tx.ExecContext(ctx, query, link.ID, link.OwnerID, link.Title, link.Subtitle, link.URL, link.Icon,
			link.Group, link.Order, link.IsActive, string(link.Layout), link.Thumbnail, link.CreatedAt, link.UpdatedAt)
		return err
	})
}

func (r *SQLiteRepository) GetLink(ctx context.Context, ownerID, id string) (*domain.Link, error) {
	query := `SELECT ` + linkColumns + ` FROM links WHERE id = ? AND owner_id = ? AND deleted_at IS NULL`

	l, err := scanLink(r.db.QueryRowContext(ctx, query, id, ownerID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *SQLiteRepository) GetLinkByID(ctx context.Context, id string) (*domain.Link, error) {
	query := `SELECT ` + linkColumns + ` FROM links WHERE id = ? AND deleted_at IS NULL`

	l, err := scanLink(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *SQLiteRepository) UpdateLink(ctx context.Context, link *domain.Link) error {
	query := `UPDATE links SET title = ?, subtitle = ?, url = ?, icon = ?, group_name = ?, is_active = ?, layout = ?, thumbnail = ?, updated_at = ?
			  WHERE id = ? AND owner_id = ? AND deleted_at IS NULL`

	res, err := r.db.ExecContext(ctx, query, link.Title, link.Subtitle, link.URL, link.Icon, link.Group,
		link.IsActive, string(link.Layout), link.Thumbnail, link.UpdatedAt, link.ID, link.OwnerID)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}

func (r *SQLiteRepository) DeleteLink(ctx context.Context, ownerID, id string) (bool, error) {
	query := `UPDATE links SET deleted_at = ? WHERE id = ? AND owner_id = ? AND deleted_at IS NULL`
	res, err := r.db.ExecContext(ctx, query, time.Now(), id, ownerID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *SQLiteRepository) ListLinks(ctx context.Context, ownerID string, activeOnly bool) ([]domain.Link, error) {
	query := `SELECT ` + linkColumns + ` FROM links WHERE owner_id = ? AND deleted_at IS NULL`
	if activeOnly {
		query += " AND is_active = 1"
	}
	query += " ORDER BY sort_order ASC, created_at ASC"

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	links := []domain.Link{}
	for rows.Next() {
		l, err := scanLink(rows)
		if err != nil {
			return nil, err
		}
		links = append(links, l)
	}
	return links, rows.Err()
}

func (r *SQLiteRepository) UpdateLinkOrder(ctx context.Context, ownerID, id string, order int) error {
	query := `UPDATE links SET sort_order = ?, updated_at = ? WHERE id = ? AND owner_id = ? AND deleted_at IS NULL`
	res, err := r.db.ExecContext(ctx, query, order, time.Now(), id, ownerID)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}

// Dump returns every link of the owner, including inactive ones
func (r *SQLiteRepository) Dump(ctx context.Context, ownerID string) ([]domain.Link, error) {
	return r.ListLinks(ctx, ownerID, false)
}

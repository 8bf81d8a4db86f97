package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/wadjakorntonsri/go-link-in-bio/pkg/core/domain"
)

const timelineColumns = `id, owner_id, title, year, description, media_url, media_type, sort_order, created_at, updated_at`

func scanTimelineEvent(s scanner) (domain.TimelineEvent, error) {
	var e domain.TimelineEvent
	var mediaType string
	err := s.Scan(&e.ID, &e.OwnerID, &e.Title, &e.Year, &e.Description, &e.MediaURL, &mediaType, &e.Order, &e.CreatedAt, &e.UpdatedAt)
	e.MediaType = domain.MediaType(mediaType)
	return e, err
}

func insertTimelineEvent(ctx context.Context, tx *sql.Tx, e *domain.TimelineEvent) error {
	query := `INSERT INTO timeline_events (id, owner_id, title, year, description, media_url, media_type, sort_order, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := tx.ExecContext(ctx, query, e.ID, e.OwnerID, e.Title, e.Year, e.Description, e.MediaURL,
		string(e.MediaType), e.Order, e.CreatedAt, e.UpdatedAt)
	return err
}

// AppendTimelineEvent stores event after the owner's last event
func (r *SQLiteRepository) AppendTimelineEvent(ctx context.Context, event *domain.TimelineEvent) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		var maxOrder int
		err := tx.QueryRowContext(ctx,
			`SELECT COALESCE(MAX(sort_order), ?) FROM timeline_events WHERE owner_id = ?`,
			domain.TimelineOrderBase-1, event.OwnerID).Scan(&maxOrder)
		if err != nil {
			return err
		}
		event.Order = maxOrder + 1
		return insertTimelineEvent(ctx, tx, event)
	})
}

func (r *SQLiteRepository) CreateTimelineEvent(ctx context.Context, event *domain.TimelineEvent) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		return insertTimelineEvent(ctx, tx, event)
	})
}

// GetTimelineEventByID looks an event up without an owner, for public media
func (r *SQLiteRepository) GetTimelineEventByID(ctx context.Context, id string) (*domain.TimelineEvent, error) {
	query := `SELECT ` + timelineColumns + ` FROM timeline_events WHERE id = ?`
	e, err := scanTimelineEvent(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *SQLiteRepository) GetTimelineEvent(ctx context.Context, ownerID, id string) (*domain.TimelineEvent, error) {
	query := `SELECT ` + timelineColumns + ` FROM timeline_events WHERE id = ? AND owner_id = ?`
	e, err := scanTimelineEvent(r.db.QueryRowContext(ctx, query, id, ownerID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *SQLiteRepository) UpdateTimelineEvent(ctx context.Context, e *domain.TimelineEvent) error {
	query := `UPDATE timeline_events SET title = ?, year = ?, description = ?, media_url = ?, media_type = ?, updated_at = ?
			  WHERE id = ? AND owner_id = ?`
	res, err := r.db.ExecContext(ctx, query, e.Title, e.Year, e.Description, e.MediaURL, string(e.MediaType), e.UpdatedAt, e.ID, e.OwnerID)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}

func (r *SQLiteRepository) DeleteTimelineEvent(ctx context.Context, ownerID, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM timeline_events WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *SQLiteRepository) ListTimelineEvents(ctx context.Context, ownerID string) ([]domain.TimelineEvent, error) {
	query := `SELECT ` + timelineColumns + ` FROM timeline_events WHERE owner_id = ? ORDER BY sort_order ASC, created_at ASC`
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []domain.TimelineEvent{}
	for rows.Next() {
		e, err := scanTimelineEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// ReorderTimelineEvents applies the whole batch or nothing. An id that does
// not belong to the owner aborts the transaction with domain.ErrNotFound.
func (r *SQLiteRepository) ReorderTimelineEvents(ctx context.Context, ownerID string, items []domain.OrderUpdate) error {
	now := time.Now()
	return r.withTx(ctx, func(tx *sql.Tx) error {
		for _, item := range items {
			res, err := tx.ExecContext(ctx,
				`UPDATE timeline_events SET sort_order = ?, updated_at = ? WHERE id = ? AND owner_id = ?`,
				item.Order, now, item.ID, ownerID)
			if err != nil {
				return err
			}
			if err := expectOneRow(res); err != nil {
				return err
			}
		}
		return nil
	})
}

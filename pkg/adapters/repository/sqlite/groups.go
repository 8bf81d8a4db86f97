package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/wadjakorntonsri/go-link-in-bio/pkg/core/domain"
)

const groupColumns = `id, owner_id, name, description, sort_order, created_at, updated_at`

func scanGroup(s scanner) (domain.Group, error) {
	var g domain.Group
	err := s.Scan(&g.ID, &g.OwnerID, &g.Name, &g.Description, &g.Order, &g.CreatedAt, &g.UpdatedAt)
	return g, err
}

func insertGroup(ctx context.Context, tx *sql.Tx, g *domain.Group) error {
	query := `INSERT INTO link_groups (id, owner_id, name, description, sort_order, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := tx.ExecContext(ctx, query, g.ID, g.OwnerID, g.Name, g.Description, g.Order, g.CreatedAt, g.UpdatedAt)
	return err
}

// AppendGroup stores group after the owner's last group
func (r *SQLiteRepository) AppendGroup(ctx context.Context, group *domain.Group) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		var maxOrder int
		err := tx.QueryRowContext(ctx,
			`SELECT COALESCE(MAX(sort_order), ?) FROM link_groups WHERE owner_id = ?`,
			domain.GroupOrderBase-1, group.OwnerID).Scan(&maxOrder)
		if err != nil {
			return err
		}
		group.Order = maxOrder + 1
		return insertGroup(ctx, tx, group)
	})
}

func (r *SQLiteRepository) CreateGroup(ctx context.Context, group *domain.Group) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		return insertGroup(ctx, tx, group)
	})
}

func (r *SQLiteRepository) GetGroup(ctx context.Context, ownerID, id string) (*domain.Group, error) {
	query := `SELECT ` + groupColumns + ` FROM link_groups WHERE id = ? AND owner_id = ?`
	g, err := scanGroup(r.db.QueryRowContext(ctx, query, id, ownerID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *SQLiteRepository) GetGroupByName(ctx context.Context, ownerID, name string) (*domain.Group, error) {
	query := `SELECT ` + groupColumns + ` FROM link_groups WHERE owner_id = ? AND name = ?`
	g, err := scanGroup(r.db.QueryRowContext(ctx, query, ownerID, name))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// UpdateGroup saves group. When the name changed, the owner's links tagged
// with previousName are relabelled in the same transaction.
func (r *SQLiteRepository) UpdateGroup(ctx context.Context, group *domain.Group, previousName string) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE link_groups SET name = ?, description = ?, updated_at = ? WHERE id = ? AND owner_id = ?`,
			group.Name, group.Description, group.UpdatedAt, group.ID, group.OwnerID)
		if err != nil {
			return err
		}
		if err := expectOneRow(res); err != nil {
			return err
		}

		if previousName == "" || previousName == group.Name {
			return nil
		}
		_, err = tx.ExecContext(ctx,
			`UPDATE links SET group_name = ?, updated_at = ? WHERE owner_id = ? AND group_name = ? AND deleted_at IS NULL`,
			group.Name, group.UpdatedAt, group.OwnerID, previousName)
		return err
	})
}

// DeleteGroup removes the metadata row only. Links keep their group name.
func (r *SQLiteRepository) DeleteGroup(ctx context.Context, ownerID, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM link_groups WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *SQLiteRepository) ListGroups(ctx context.Context, ownerID string) ([]domain.Group, error) {
	query := `SELECT ` + groupColumns + ` FROM link_groups WHERE owner_id = ? ORDER BY sort_order ASC, created_at ASC`
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	groups := []domain.Group{}
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

func (r *SQLiteRepository) UpdateGroupOrder(ctx context.Context, ownerID, id string, order int) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE link_groups SET sort_order = ?, updated_at = ? WHERE id = ? AND owner_id = ?`,
		order, time.Now(), id, ownerID)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}

package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/wadjakorntonsri/go-link-in-bio/pkg/core/domain"
)

// CreateAccount stores a user, its profile and the starter groups together.
func (r *SQLiteRepository) CreateAccount(ctx context.Context, user *domain.User, profile *domain.Profile, groups []domain.Group) error {
	socialsJSON, err := json.Marshal(profile.Socials)
	if err != nil {
		return err
	}

	return r.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO users (id, email, username, password_hash, created_at) VALUES (?, ?, ?, ?, ?)`,
			user.ID, user.Email, user.Username, user.PasswordHash, user.CreatedAt)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO profiles (user_id, name, bio, image_url, image_object_fit, socials, hero_title, hero_subtitle, theme, timeline_layout, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			user.ID, profile.Name, profile.Bio, profile.ImageURL, profile.ImageObjectFit, socialsJSON,
			profile.HeroTitle, profile.HeroSubtitle, profile.Theme, string(profile.TimelineLayout), profile.UpdatedAt)
		if err != nil {
			return err
		}

		for i := range groups {
			g := &groups[i]
			g.OwnerID = user.ID
			if err := insertGroup(ctx, tx, g); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *SQLiteRepository) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	return r.getUser(ctx, `id = ?`, id)
}

func (r *SQLiteRepository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getUser(ctx, `email = ? COLLATE NOCASE`, email)
}

func (r *SQLiteRepository) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.getUser(ctx, `username = ? COLLATE NOCASE`, username)
}

func (r *SQLiteRepository) getUser(ctx context.Context, where string, arg interface{}) (*domain.User, error) {
	query := `SELECT id, email, username, password_hash, created_at FROM users WHERE ` + where

	var u domain.User
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *SQLiteRepository) GetProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	query := `SELECT user_id, name, bio, image_url, image_object_fit, socials, hero_title, hero_subtitle, theme, timeline_layout, updated_at
			  FROM profiles WHERE user_id = ?`

	var p domain.Profile
	var socialsJSON []byte
	var layout string
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&p.UserID, &p.Name, &p.Bio, &p.ImageURL, &p.ImageObjectFit, &socialsJSON,
		&p.HeroTitle, &p.HeroSubtitle, &p.Theme, &layout, &p.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	p.TimelineLayout = domain.TimelineLayout(layout)
	_ = json.Unmarshal(socialsJSON, &p.Socials)
	if p.Socials == nil {
		p.Socials = []domain.Social{}
	}
	return &p, nil
}

func (r *SQLiteRepository) UpdateProfile(ctx context.Context, p *domain.Profile) error {
	socialsJSON, err := json.Marshal(p.Socials)
	if err != nil {
		return err
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = time.Now()
	}

	query := `UPDATE profiles SET name = ?, bio = ?, image_url = ?, image_object_fit = ?, socials = ?,
			  hero_title = ?, hero_subtitle = ?, theme = ?, timeline_layout = ?, updated_at = ?
			  WHERE user_id = ?`
	res, err := r.db.ExecContext(ctx, query, p.Name, p.Bio, p.ImageURL, p.ImageObjectFit, socialsJSON,
		p.HeroTitle, p.HeroSubtitle, p.Theme, string(p.TimelineLayout), p.UpdatedAt, p.UserID)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

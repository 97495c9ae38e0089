package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/orablu/space-adoption/internal/model"
)

// MediaRepo persists the logo and carousel images.  Rows are never
// deleted; replacing the logo and removing a carousel image both clear
// the active flag.
type MediaRepo struct {
	db *sql.DB
}

// NewMediaRepo returns a new MediaRepo bound to the given database.
func NewMediaRepo(db *sql.DB) *MediaRepo { return &MediaRepo{db: db} }

const mediaColumns = `id, type, filename, url, caption, description, position, active, created_at, updated_at`

// ActiveLogo returns the most recent active logo, or nil when none exists.
func (r *MediaRepo) ActiveLogo(ctx context.Context) (*model.Media, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+mediaColumns+` FROM media WHERE type = ? AND active = 1 ORDER BY created_at DESC, id DESC LIMIT 1`,
		string(model.MediaLogo))
	m, err := scanMedia(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// ActiveCarousel returns the active carousel images ordered by position,
// then creation time.
func (r *MediaRepo) ActiveCarousel(ctx context.Context) ([]model.Media, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+mediaColumns+` FROM media WHERE type = ? AND active = 1 ORDER BY position, created_at, id`,
		string(model.MediaCarousel))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Media, 0)
	for rows.Next() {
		m, err := scanMedia(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// ReplaceLogo deactivates every active logo and inserts m as the new active
// logo in one transaction.  The locking read on the active logos
// serialises concurrent replacements so exactly one logo stays active.
func (r *MediaRepo) ReplaceLogo(ctx context.Context, m *model.Media) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	rows, err := tx.QueryContext(ctx, `SELECT id FROM media WHERE type = ? AND active = 1 FOR UPDATE`, string(model.MediaLogo))
	if err != nil {
		return err
	}
	if err := rows.Close(); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE media SET active = 0, updated_at = CURRENT_TIMESTAMP(3) WHERE type = ? AND active = 1`,
		string(model.MediaLogo)); err != nil {
		return err
	}
	m.Type = model.MediaLogo
	m.Position = 0
	if err := r.insertTx(ctx, tx, m); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// AddCarousel inserts an active carousel image.
func (r *MediaRepo) AddCarousel(ctx context.Context, m *model.Media) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	m.Type = model.MediaCarousel
	if err := r.insertTx(ctx, tx, m); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// DeactivateCarousel clears the active flag of a carousel image.  It
// returns ErrNotFound when id is unknown, is not a carousel image or was
// already removed.
func (r *MediaRepo) DeactivateCarousel(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE media SET active = 0, updated_at = CURRENT_TIMESTAMP(3) WHERE id = ? AND type = ? AND active = 1`,
		id, string(model.MediaCarousel))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MediaRepo) insertTx(ctx context.Context, tx *sql.Tx, m *model.Media) error {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO media (type, filename, url, caption, description, position, active) VALUES (?, ?, ?, ?, ?, ?, 1)`,
		string(m.Type), m.Filename, m.URL, toNull(m.Caption), toNull(m.Description), m.Position)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	created, err := scanMedia(tx.QueryRowContext(ctx, `SELECT `+mediaColumns+` FROM media WHERE id = ?`, id))
	if err != nil {
		return err
	}
	*m = created
	return nil
}

func scanMedia(sc rowScanner) (model.Media, error) {
	var m model.Media
	var typ string
	var caption, description sql.NullString
	err := sc.Scan(&m.ID, &typ, &m.Filename, &m.URL, &caption, &description, &m.Position, &m.Active, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return m, err
	}
	m.Type = model.MediaType(typ)
	m.Caption = nullString(caption)
	m.Description = nullString(description)
	return m, nil
}

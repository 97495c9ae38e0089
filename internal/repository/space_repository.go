package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/orablu/space-adoption/internal/model"
)

// SpaceRepo provides read access to the catalog and the two writes the
// application performs on it: setting the image and claiming the space
// for an adoption.  All timestamp fields are stored in UTC.
type SpaceRepo struct {
	db *sql.DB
}

// NewSpaceRepo returns a new SpaceRepo bound to the given database.
func NewSpaceRepo(db *sql.DB) *SpaceRepo { return &SpaceRepo{db: db} }

// DB exposes the underlying sql.DB so callers can begin transactions
// spanning several repositories.
func (r *SpaceRepo) DB() *sql.DB { return r.db }

const spaceWithAdoptionQuery = `SELECT ` + spaceColumns + `, ` + adoptionColumns + `
	FROM spaces s
	LEFT JOIN adoptions a ON a.space_id = s.id AND s.adopted = 1`

// List returns every space ordered by id, each joined with its adoption.
// Spaces without an adoption carry a nil Adoption.
func (r *SpaceRepo) List(ctx context.Context) ([]model.SpaceWithAdoption, error) {
	rows, err := r.db.QueryContext(ctx, spaceWithAdoptionQuery+` ORDER BY s.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.SpaceWithAdoption, 0)
	for rows.Next() {
		sw, err := scanSpaceWithAdoption(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sw)
	}
	return out, rows.Err()
}

// GetByID returns a single space joined with its adoption, or ErrNotFound.
func (r *SpaceRepo) GetByID(ctx context.Context, id uint64) (*model.SpaceWithAdoption, error) {
	row := r.db.QueryRowContext(ctx, spaceWithAdoptionQuery+` WHERE s.id = ?`, id)
	sw, err := scanSpaceWithAdoption(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sw, nil
}

// SetImage overwrites the image url of a space.  It returns ErrNotFound
// when the space does not exist.
func (r *SpaceRepo) SetImage(ctx context.Context, id uint64, url string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE spaces SET image_url = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, url, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// zero rows also happens when nothing changed; tell the two apart
		return r.mustExist(ctx, id)
	}
	return nil
}

// ClaimTx marks a space adopted by sponsorName inside tx.  The update only
// matches a space that is not adopted yet, so of two concurrent claims
// exactly one succeeds.  It returns ErrNotFound for an unknown space and
// ErrConflict for a space that is already adopted.
func (r *SpaceRepo) ClaimTx(ctx context.Context, tx *sql.Tx, id uint64, sponsorName string) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE spaces SET adopted = 1, adopted_by = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND adopted = 0`,
		sponsorName, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}
	var adopted bool
	err = tx.QueryRowContext(ctx, `SELECT adopted FROM spaces WHERE id = ?`, id).Scan(&adopted)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return ErrConflict
}

func (r *SpaceRepo) mustExist(ctx context.Context, id uint64) error {
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM spaces WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func scanSpaceWithAdoption(sc rowScanner) (model.SpaceWithAdoption, error) {
	var sw model.SpaceWithAdoption
	var adoptedBy, imageURL sql.NullString
	var na nullableAdoption
	dest := []any{
		&sw.ID, &sw.Name, &sw.Description, &sw.Cost, &sw.Adopted, &adoptedBy, &imageURL, &sw.CreatedAt, &sw.UpdatedAt,
	}
	if err := sc.Scan(append(dest, na.dest()...)...); err != nil {
		return sw, err
	}
	sw.AdoptedBy = nullString(adoptedBy)
	sw.ImageURL = nullString(imageURL)
	sw.Adoption = na.adoption()
	return sw, nil
}

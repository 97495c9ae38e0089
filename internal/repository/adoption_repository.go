package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/orablu/space-adoption/internal/model"
)

// AdoptionRepo persists adoptions.  Creating an adoption also claims its
// space, so the repository holds a SpaceRepo and runs both writes in one
// transaction.
type AdoptionRepo struct {
	db     *sql.DB
	spaces *SpaceRepo
}

// NewAdoptionRepo returns a new AdoptionRepo bound to the given database.
func NewAdoptionRepo(db *sql.DB, spaces *SpaceRepo) *AdoptionRepo {
	return &AdoptionRepo{db: db, spaces: spaces}
}

// Create claims the space and inserts the adoption in a single
// transaction.  Either both writes commit or neither does.  On success the
// generated ID, status and timestamps are populated on a.  It returns
// ErrNotFound for an unknown space and ErrConflict when the space is
// already adopted, including when a concurrent adoption wins the unique
// key on adoptions.space_id.
func (r *AdoptionRepo) Create(ctx context.Context, a *model.Adoption) error {
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

	if err := r.spaces.ClaimTx(ctx, tx, a.SpaceID, a.SponsorName); err != nil {
		return err
	}
	if err := r.CreateTx(ctx, tx, a); err != nil {
		if isDuplicateKey(err) {
			return ErrConflict
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		if isDuplicateKey(err) {
			return ErrConflict
		}
		return err
	}
	committed = true
	return nil
}

// CreateTx inserts a new adoption within the scope of an existing
// transaction and reads the row back to populate defaults.  The caller
// must commit or rollback the transaction.
func (r *AdoptionRepo) CreateTx(ctx context.Context, tx *sql.Tx, a *model.Adoption) error {
	const q = `INSERT INTO adoptions (space_id, sponsor_name, sponsor_email, sponsor_phone, wants_to_help, payment_proof_url, status)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	status := a.Status
	if status == "" {
		status = model.StatusPending
	}
	res, err := tx.ExecContext(ctx, q, a.SpaceID, a.SponsorName, toNull(a.SponsorEmail), toNull(a.SponsorPhone),
		a.WantsToHelp, toNull(a.PaymentProofURL), string(status))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	row := tx.QueryRowContext(ctx, `SELECT `+adoptionColumns+` FROM adoptions a WHERE a.id = ?`, id)
	created, err := scanAdoption(row)
	if err != nil {
		return err
	}
	*a = created
	return nil
}

// GetByID returns a single adoption or ErrNotFound.
func (r *AdoptionRepo) GetByID(ctx context.Context, id uint64) (*model.Adoption, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+adoptionColumns+` FROM adoptions a WHERE a.id = ?`, id)
	a, err := scanAdoption(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// List returns all adoptions with their space name and cost, newest first.
func (r *AdoptionRepo) List(ctx context.Context) ([]model.AdoptionDetail, error) {
	const q = `SELECT ` + adoptionColumns + `, s.name, s.cost
	           FROM adoptions a
	           JOIN spaces s ON s.id = a.space_id
	           ORDER BY a.created_at DESC, a.id DESC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.AdoptionDetail, 0)
	for rows.Next() {
		var d model.AdoptionDetail
		a, err := scanAdoption(rows, &d.SpaceName, &d.SpaceCost)
		if err != nil {
			return nil, err
		}
		d.Adoption = a
		out = append(out, d)
	}
	return out, rows.Err()
}

// UpdateStatus overwrites the status of an adoption.  The caller is
// responsible for validating the value.
func (r *AdoptionRepo) UpdateStatus(ctx context.Context, id uint64, status model.AdoptionStatus) error {
	return r.update(ctx, id, `UPDATE adoptions SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, string(status))
}

// UpdateNotes overwrites the admin notes of an adoption.  An empty string
// clears them.
func (r *AdoptionRepo) UpdateNotes(ctx context.Context, id uint64, notes string) error {
	return r.update(ctx, id, `UPDATE adoptions SET notes = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, toNull(&notes))
}

func (r *AdoptionRepo) update(ctx context.Context, id uint64, q string, value any) error {
	res, err := r.db.ExecContext(ctx, q, value, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	var one int
	err = r.db.QueryRowContext(ctx, `SELECT 1 FROM adoptions WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

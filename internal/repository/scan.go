package repository

import (
	"database/sql"
	"time"

	"github.com/orablu/space-adoption/internal/model"
)

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func nullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

// toNull stores an empty or nil string as NULL.
func toNull(s *string) sql.NullString {
	if s == nil || *s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

const spaceColumns = `s.id, s.name, s.description, s.cost, s.adopted, s.adopted_by, s.image_url, s.created_at, s.updated_at`

const adoptionColumns = `a.id, a.space_id, a.sponsor_name, a.sponsor_email, a.sponsor_phone, a.wants_to_help, a.payment_proof_url, a.status, a.notes, a.created_at, a.updated_at`

func scanAdoption(sc rowScanner, extra ...any) (model.Adoption, error) {
	var a model.Adoption
	var email, phone, proof, notes sql.NullString
	var status string
	dest := []any{&a.ID, &a.SpaceID, &a.SponsorName, &email, &phone, &a.WantsToHelp, &proof, &status, &notes, &a.CreatedAt, &a.UpdatedAt}
	if err := sc.Scan(append(dest, extra...)...); err != nil {
		return a, err
	}
	a.SponsorEmail = nullString(email)
	a.SponsorPhone = nullString(phone)
	a.PaymentProofURL = nullString(proof)
	a.Notes = nullString(notes)
	a.Status = model.AdoptionStatus(status)
	return a, nil
}

// nullableAdoption holds the right side of a LEFT JOIN on adoptions.
type nullableAdoption struct {
	ID          sql.NullInt64
	SpaceID     sql.NullInt64
	SponsorName sql.NullString
	Email       sql.NullString
	Phone       sql.NullString
	WantsToHelp sql.NullBool
	Proof       sql.NullString
	Status      sql.NullString
	Notes       sql.NullString
	CreatedAt   sql.NullTime
	UpdatedAt   sql.NullTime
}

func (n *nullableAdoption) dest() []any {
	return []any{&n.ID, &n.SpaceID, &n.SponsorName, &n.Email, &n.Phone, &n.WantsToHelp, &n.Proof, &n.Status, &n.Notes, &n.CreatedAt, &n.UpdatedAt}
}

// adoption returns nil when the join found no row.
func (n *nullableAdoption) adoption() *model.Adoption {
	if !n.ID.Valid {
		return nil
	}
	return &model.Adoption{
		ID:              uint64(n.ID.Int64),
		SpaceID:         uint64(n.SpaceID.Int64),
		SponsorName:     n.SponsorName.String,
		SponsorEmail:    nullString(n.Email),
		SponsorPhone:    nullString(n.Phone),
		WantsToHelp:     n.WantsToHelp.Bool,
		PaymentProofURL: nullString(n.Proof),
		Status:          model.AdoptionStatus(n.Status.String),
		Notes:           nullString(n.Notes),
		CreatedAt:       timeOrZero(n.CreatedAt),
		UpdatedAt:       timeOrZero(n.UpdatedAt),
	}
}

func timeOrZero(t sql.NullTime) time.Time {
	if !t.Valid {
		return time.Time{}
	}
	return t.Time
}

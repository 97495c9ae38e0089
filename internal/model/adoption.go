package model

import "time"

// AdoptionStatus is the admin-managed lifecycle state of an adoption.
type AdoptionStatus string

const (
	StatusPending   AdoptionStatus = "pending"
	StatusApproved  AdoptionStatus = "approved"
	StatusConfirmed AdoptionStatus = "confirmed"
	StatusCompleted AdoptionStatus = "completed"
	StatusCancelled AdoptionStatus = "cancelled"
	StatusRejected  AdoptionStatus = "rejected"
)

// AdoptionStatuses lists the accepted status values in display order.
var AdoptionStatuses = []AdoptionStatus{
	StatusPending,
	StatusApproved,
	StatusConfirmed,
	StatusCompleted,
	StatusCancelled,
	StatusRejected,
}

// Valid reports whether s belongs to the status vocabulary.  Any valid
// status may replace any other; there is no transition graph.
func (s AdoptionStatus) Valid() bool {
	for _, v := range AdoptionStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Adoption records a sponsor's claim on a space.  It is created once by
// the sponsor and afterwards only Status and Notes change, by an admin.
// Adoptions are never deleted.
//
// Fields:
//  ID              – primary key identifier.
//  SpaceID         – adopted space.
//  SponsorName     – required display name of the sponsor.
//  SponsorEmail    – optional contact email.
//  SponsorPhone    – optional contact phone.
//  WantsToHelp     – sponsor volunteers to help with the move.
//  PaymentProofURL – optional /uploads/... reference.
//  Status          – lifecycle state, starts as pending.
//  Notes           – admin free text.
//  CreatedAt       – creation timestamp.
//  UpdatedAt       – last update timestamp.
type Adoption struct {
	ID              uint64         `json:"id"`              // adoptions.id
	SpaceID         uint64         `json:"spaceId"`         // adoptions.space_id
	SponsorName     string         `json:"sponsorName"`     // adoptions.sponsor_name
	SponsorEmail    *string        `json:"sponsorEmail"`    // adoptions.sponsor_email (nullable)
	SponsorPhone    *string        `json:"sponsorPhone"`    // adoptions.sponsor_phone (nullable)
	WantsToHelp     bool           `json:"wantsToHelp"`     // adoptions.wants_to_help
	PaymentProofURL *string        `json:"paymentProofUrl"` // adoptions.payment_proof_url (nullable)
	Status          AdoptionStatus `json:"status"`          // adoptions.status
	Notes           *string        `json:"notes"`           // adoptions.notes (nullable)
	CreatedAt       time.Time      `json:"createdAt"`       // adoptions.created_at
	UpdatedAt       time.Time      `json:"updatedAt"`       // adoptions.updated_at
}

// AdoptionDetail is an adoption joined with the name and cost of its space,
// as listed on the admin dashboard.
type AdoptionDetail struct {
	Adoption
	SpaceName string `json:"spaceName"`
	SpaceCost int64  `json:"spaceCost"`
}

package model

import "time"

// Space is a sponsorable part of the shelter (a room, an appliance set,
// the garden) with a fixed furnishing cost.  Adopted and AdoptedBy are a
// denormalized copy of the winning adoption and are only ever written by
// the adoption transaction.
//
// Fields:
//  ID          – primary key identifier.
//  Name        – display name.
//  Description – what the sponsor pays for.
//  Cost        – furnishing cost in whole currency units, fixed at creation.
//  Adopted     – true once an adoption has been committed for the space.
//  AdoptedBy   – sponsor name of the winning adoption.
//  ImageURL    – optional /uploads/... reference.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Space struct {
	ID          uint64    `json:"id"`          // spaces.id
	Name        string    `json:"name"`        // spaces.name
	Description string    `json:"description"` // spaces.description
	Cost        int64     `json:"cost"`        // spaces.cost
	Adopted     bool      `json:"adopted"`     // spaces.adopted
	AdoptedBy   *string   `json:"adoptedBy"`   // spaces.adopted_by (nullable)
	ImageURL    *string   `json:"imageUrl"`    // spaces.image_url (nullable)
	CreatedAt   time.Time `json:"createdAt"`   // spaces.created_at
	UpdatedAt   time.Time `json:"updatedAt"`   // spaces.updated_at
}

// SpaceWithAdoption is a space joined with its adoption.  Adoption is nil
// when the space has not been adopted.
type SpaceWithAdoption struct {
	Space
	Adoption *Adoption `json:"adoption"`
}

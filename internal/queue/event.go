// Package queue defines message payloads exchanged over the message broker
// together with the publisher and the consumer that move them.
package queue

// Routing keys, also used as queue names on the default exchange.
const (
	AdoptionCreatedQueue       = "adoption.created"
	AdoptionStatusChangedQueue = "adoption.status_changed"
)

// AdoptionCreatedEvent is published when a sponsor adopts a space.  It
// carries enough information for downstream consumers to log or notify
// without querying the primary database.
type AdoptionCreatedEvent struct {
	AdoptionID   uint64 `json:"adoption_id"`
	SpaceID      uint64 `json:"space_id"`
	SpaceName    string `json:"space_name"`
	SpaceCost    int64  `json:"space_cost"`
	SponsorName  string `json:"sponsor_name"`
	SponsorEmail string `json:"sponsor_email,omitempty"`
	WantsToHelp  bool   `json:"wants_to_help"`
	CreatedAt    string `json:"created_at"`
}

// AdoptionStatusChangedEvent is published when an admin changes the status
// of an adoption.
type AdoptionStatusChangedEvent struct {
	AdoptionID uint64 `json:"adoption_id"`
	Status     string `json:"status"`
	ChangedAt  string `json:"changed_at"`
}

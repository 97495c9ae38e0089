package model

import "time"

// MediaType distinguishes the singleton logo from carousel images.
type MediaType string

const (
	MediaLogo     MediaType = "logo"
	MediaCarousel MediaType = "carousel"
)

// Media is an uploaded branding asset.  At most one logo row is active at
// a time; carousel rows are independent and sorted by Position, then by
// creation time.  Rows are deactivated rather than deleted.
type Media struct {
	ID          uint64    `json:"id"`          // media.id
	Type        MediaType `json:"type"`        // media.type
	Filename    string    `json:"filename"`    // media.filename
	URL         string    `json:"url"`         // media.url
	Caption     *string   `json:"caption"`     // media.caption (nullable)
	Description *string   `json:"description"` // media.description (nullable)
	Position    int       `json:"position"`    // media.position
	Active      bool      `json:"active"`      // media.active
	CreatedAt   time.Time `json:"createdAt"`   // media.created_at
	UpdatedAt   time.Time `json:"updatedAt"`   // media.updated_at
}

// MediaSet is the public view of the active media.  Logo is the url of the
// active logo or nil.
type MediaSet struct {
	Logo     *string `json:"logo"`
	Carousel []Media `json:"carousel"`
}

// Package service holds the domain operations of the campaign: the space
// catalog, adoptions, media and statistics.  Services depend on the store
// through small interfaces so the MySQL repositories and the in-memory
// store are interchangeable.
package service

import (
	"context"
	"mime/multipart"

	"github.com/orablu/space-adoption/internal/model"
	"github.com/orablu/space-adoption/internal/queue"
	"github.com/orablu/space-adoption/internal/storage"
)

// SpaceStore reads spaces and writes their image.
type SpaceStore interface {
	List(ctx context.Context) ([]model.SpaceWithAdoption, error)
	GetByID(ctx context.Context, id uint64) (*model.SpaceWithAdoption, error)
	SetImage(ctx context.Context, id uint64, url string) error
}

// AdoptionStore persists adoptions.  Create claims the space and inserts
// the adoption in one unit of work.
type AdoptionStore interface {
	Create(ctx context.Context, a *model.Adoption) error
	GetByID(ctx context.Context, id uint64) (*model.Adoption, error)
	List(ctx context.Context) ([]model.AdoptionDetail, error)
	UpdateStatus(ctx context.Context, id uint64, status model.AdoptionStatus) error
	UpdateNotes(ctx context.Context, id uint64, notes string) error
}

// MediaStore persists logo and carousel rows.
type MediaStore interface {
	ActiveLogo(ctx context.Context) (*model.Media, error)
	ActiveCarousel(ctx context.Context) ([]model.Media, error)
	ReplaceLogo(ctx context.Context, m *model.Media) error
	AddCarousel(ctx context.Context, m *model.Media) error
	DeactivateCarousel(ctx context.Context, id uint64) error
}

// StatsStore reads the raw campaign aggregates.
type StatsStore interface {
	Totals(ctx context.Context) (model.Totals, error)
}

// FileStore saves uploaded files and removes them again when the record
// that references them cannot be written.
type FileStore interface {
	Save(field string, fh *multipart.FileHeader, p storage.Policy) (storage.StoredFile, error)
	Remove(f storage.StoredFile) error
}

// EventPublisher receives adoption events.  Implementations must not
// block for long; failures are logged and otherwise ignored.
type EventPublisher interface {
	AdoptionCreated(ctx context.Context, ev queue.AdoptionCreatedEvent) error
	AdoptionStatusChanged(ctx context.Context, ev queue.AdoptionStatusChangedEvent) error
}

// NopPublisher discards events.  It is used when events are disabled.
type NopPublisher struct{}

func (NopPublisher) AdoptionCreated(context.Context, queue.AdoptionCreatedEvent) error { return nil }

func (NopPublisher) AdoptionStatusChanged(context.Context, queue.AdoptionStatusChangedEvent) error {
	return nil
}

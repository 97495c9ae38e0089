package service

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orablu/space-adoption/internal/model"
	"github.com/orablu/space-adoption/internal/queue"
	"github.com/orablu/space-adoption/internal/repository/memory"
	"github.com/orablu/space-adoption/internal/storage"
)

type env struct {
	store   *memory.Store
	uploads *storage.Uploader
	events  *recordingPublisher
	catalog *CatalogService
	adopt   *AdoptionService
	media   *MediaService
	stats   *StatsService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	store := memory.New()
	up, err := storage.NewUploader(t.TempDir(), 1<<20)
	require.NoError(t, err)
	ev := &recordingPublisher{}
	return &env{
		store:   store,
		uploads: up,
		events:  ev,
		catalog: NewCatalogService(store.Spaces, up),
		adopt:   NewAdoptionService(store.Spaces, store.Adoptions, up, ev),
		media:   NewMediaService(store.Media, up),
		stats:   NewStatsService(store.Stats),
	}
}

// files lists everything in the upload dir, temp files included.
func (e *env) files(t *testing.T) []string {
	t.Helper()
	entries, err := os.ReadDir(e.uploads.Dir())
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, en := range entries {
		names = append(names, en.Name())
	}
	return names
}

type recordingPublisher struct {
	mu      sync.Mutex
	created []queue.AdoptionCreatedEvent
	changed []queue.AdoptionStatusChangedEvent
	fail    bool
}

func (p *recordingPublisher) AdoptionCreated(_ context.Context, ev queue.AdoptionCreatedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail {
		return errors.New("broker down")
	}
	p.created = append(p.created, ev)
	return nil
}

func (p *recordingPublisher) AdoptionStatusChanged(_ context.Context, ev queue.AdoptionStatusChangedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail {
		return errors.New("broker down")
	}
	p.changed = append(p.changed, ev)
	return nil
}

// failingAdoptions wraps an AdoptionStore and fails Create.
type failingAdoptions struct {
	AdoptionStore
	err error
}

func (f failingAdoptions) Create(context.Context, *model.Adoption) error { return f.err }

func TestErrorKinds(t *testing.T) {
	assert.Equal(t, KindValidation, KindOf(validationError("x")))
	assert.Equal(t, KindStore, KindOf(errors.New("plain")))
	assert.Equal(t, "internal error", MessageOf(errors.New("plain")))

	wrapped := uploadError(storage.ErrTooLarge)
	assert.Equal(t, KindUpload, wrapped.Kind)
	assert.ErrorIs(t, wrapped, storage.ErrTooLarge)
	assert.Equal(t, KindStore, uploadError(os.ErrPermission).Kind)
}

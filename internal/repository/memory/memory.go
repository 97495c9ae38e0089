// Package memory is an in-memory implementation of the repositories.  It
// backs STORE_DRIVER=memory and gives every test a fresh, isolated store.
// A single mutex makes each operation atomic, which covers the adoption
// and logo-rotation units of work.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/orablu/space-adoption/internal/model"
	"github.com/orablu/space-adoption/internal/repository"
)

// Store holds the three tables.  Use the Spaces, Adoptions, Media and
// Stats views to access them.
type Store struct {
	mu        sync.Mutex
	now       func() time.Time
	spaces    map[uint64]*model.Space
	adoptions map[uint64]*model.Adoption
	bySpace   map[uint64]uint64 // space id -> adoption id, the unique key
	media     map[uint64]*model.Media
	nextID    map[string]uint64

	Spaces    *SpaceRepo
	Adoptions *AdoptionRepo
	Media     *MediaRepo
	Stats     *StatsRepo
}

// Option customises a Store.
type Option func(*Store)

// WithClock replaces time.Now, letting tests control timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New returns an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		now:       func() time.Time { return time.Now().UTC() },
		spaces:    map[uint64]*model.Space{},
		adoptions: map[uint64]*model.Adoption{},
		bySpace:   map[uint64]uint64{},
		media:     map[uint64]*model.Media{},
		nextID:    map[string]uint64{},
	}
	for _, o := range opts {
		o(s)
	}
	s.Spaces = &SpaceRepo{s: s}
	s.Adoptions = &AdoptionRepo{s: s}
	s.Media = &MediaRepo{s: s}
	s.Stats = &StatsRepo{s: s}
	return s
}

func (s *Store) id(table string) uint64 {
	s.nextID[table]++
	return s.nextID[table]
}

// AddSpace inserts a catalog entry and returns it.
func (s *Store) AddSpace(name, description string, cost int64) model.Space {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	sp := &model.Space{
		ID:          s.id("spaces"),
		Name:        name,
		Description: description,
		Cost:        cost,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.spaces[sp.ID] = sp
	return *sp
}

// SpaceCount reports how many spaces exist.
func (s *Store) SpaceCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.spaces)
}

// SpaceRepo is the spaces view of a Store.
type SpaceRepo struct{ s *Store }

// List returns every space ordered by id, joined with its adoption.
func (r *SpaceRepo) List(ctx context.Context) ([]model.SpaceWithAdoption, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]model.SpaceWithAdoption, 0, len(r.s.spaces))
	for _, sp := range r.s.spaces {
		out = append(out, r.s.withAdoption(sp))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// GetByID returns one space joined with its adoption.
func (r *SpaceRepo) GetByID(ctx context.Context, id uint64) (*model.SpaceWithAdoption, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sp, ok := r.s.spaces[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	sw := r.s.withAdoption(sp)
	return &sw, nil
}

// SetImage overwrites the image url of a space.
func (r *SpaceRepo) SetImage(ctx context.Context, id uint64, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sp, ok := r.s.spaces[id]
	if !ok {
		return repository.ErrNotFound
	}
	sp.ImageURL = &url
	sp.UpdatedAt = r.s.now()
	return nil
}

func (s *Store) withAdoption(sp *model.Space) model.SpaceWithAdoption {
	sw := model.SpaceWithAdoption{Space: *sp}
	if aid, ok := s.bySpace[sp.ID]; ok && sp.Adopted {
		a := *s.adoptions[aid]
		sw.Adoption = &a
	}
	return sw
}

// AdoptionRepo is the adoptions view of a Store.
type AdoptionRepo struct{ s *Store }

// Create claims the space and records the adoption atomically.
func (r *AdoptionRepo) Create(ctx context.Context, a *model.Adoption) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sp, ok := r.s.spaces[a.SpaceID]
	if !ok {
		return repository.ErrNotFound
	}
	if _, taken := r.s.bySpace[a.SpaceID]; taken || sp.Adopted {
		return repository.ErrConflict
	}
	now := r.s.now()
	created := *a
	created.ID = r.s.id("adoptions")
	if created.Status == "" {
		created.Status = model.StatusPending
	}
	created.CreatedAt = now
	created.UpdatedAt = now

	sp.Adopted = true
	name := a.SponsorName
	sp.AdoptedBy = &name
	sp.UpdatedAt = now
	r.s.adoptions[created.ID] = &created
	r.s.bySpace[a.SpaceID] = created.ID
	*a = created
	return nil
}

// GetByID returns one adoption.
func (r *AdoptionRepo) GetByID(ctx context.Context, id uint64) (*model.Adoption, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.adoptions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

// List returns adoptions with space name and cost, newest first.
func (r *AdoptionRepo) List(ctx context.Context) ([]model.AdoptionDetail, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]model.AdoptionDetail, 0, len(r.s.adoptions))
	for _, a := range r.s.adoptions {
		sp, ok := r.s.spaces[a.SpaceID]
		if !ok {
			continue
		}
		out = append(out, model.AdoptionDetail{Adoption: *a, SpaceName: sp.Name, SpaceCost: sp.Cost})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

// UpdateStatus overwrites the status of an adoption.
func (r *AdoptionRepo) UpdateStatus(ctx context.Context, id uint64, status model.AdoptionStatus) error {
	return r.update(ctx, id, func(a *model.Adoption) { a.Status = status })
}

// UpdateNotes overwrites the notes of an adoption; empty clears them.
func (r *AdoptionRepo) UpdateNotes(ctx context.Context, id uint64, notes string) error {
	return r.update(ctx, id, func(a *model.Adoption) {
		if notes == "" {
			a.Notes = nil
			return
		}
		a.Notes = &notes
	})
}

func (r *AdoptionRepo) update(ctx context.Context, id uint64, apply func(*model.Adoption)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.adoptions[id]
	if !ok {
		return repository.ErrNotFound
	}
	apply(a)
	a.UpdatedAt = r.s.now()
	return nil
}

// MediaRepo is the media view of a Store.
type MediaRepo struct{ s *Store }

// ActiveLogo returns the newest active logo or nil.
func (r *MediaRepo) ActiveLogo(ctx context.Context) (*model.Media, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var best *model.Media
	for _, m := range r.s.media {
		if m.Type != model.MediaLogo || !m.Active {
			continue
		}
		if best == nil || m.CreatedAt.After(best.CreatedAt) || (m.CreatedAt.Equal(best.CreatedAt) && m.ID > best.ID) {
			best = m
		}
	}
	if best == nil {
		return nil, nil
	}
	cp := *best
	return &cp, nil
}

// ActiveCarousel returns active carousel images by position, then age.
func (r *MediaRepo) ActiveCarousel(ctx context.Context) ([]model.Media, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]model.Media, 0)
	for _, m := range r.s.media {
		if m.Type == model.MediaCarousel && m.Active {
			out = append(out, *m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// ReplaceLogo deactivates all logos and inserts m as the active one.
func (r *MediaRepo) ReplaceLogo(ctx context.Context, m *model.Media) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := r.s.now()
	for _, existing := range r.s.media {
		if existing.Type == model.MediaLogo && existing.Active {
			existing.Active = false
			existing.UpdatedAt = now
		}
	}
	m.Type = model.MediaLogo
	m.Position = 0
	r.s.insertMedia(m, now)
	return nil
}

// AddCarousel inserts an active carousel image.
func (r *MediaRepo) AddCarousel(ctx context.Context, m *model.Media) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m.Type = model.MediaCarousel
	r.s.insertMedia(m, r.s.now())
	return nil
}

// DeactivateCarousel clears the active flag of an active carousel image.
func (r *MediaRepo) DeactivateCarousel(ctx context.Context, id uint64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.media[id]
	if !ok || m.Type != model.MediaCarousel || !m.Active {
		return repository.ErrNotFound
	}
	m.Active = false
	m.UpdatedAt = r.s.now()
	return nil
}

// ActiveLogoCount reports how many logo rows are active.
func (r *MediaRepo) ActiveLogoCount() int {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := 0
	for _, m := range r.s.media {
		if m.Type == model.MediaLogo && m.Active {
			n++
		}
	}
	return n
}

func (s *Store) insertMedia(m *model.Media, now time.Time) {
	row := *m
	row.ID = s.id("media")
	row.Active = true
	row.CreatedAt = now
	row.UpdatedAt = now
	s.media[row.ID] = &row
	*m = row
}

// StatsRepo is the aggregate view of a Store.
type StatsRepo struct{ s *Store }

// Totals aggregates the current contents.
func (r *StatsRepo) Totals(ctx context.Context) (model.Totals, error) {
	t := model.Totals{ByStatus: map[model.AdoptionStatus]int64{}}
	if err := ctx.Err(); err != nil {
		return t, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, sp := range r.s.spaces {
		t.TotalSpaces++
		t.TotalGoal += sp.Cost
		if sp.Adopted {
			t.AdoptedSpaces++
			t.TotalRaised += sp.Cost
		}
	}
	for _, a := range r.s.adoptions {
		t.TotalAdoptions++
		t.ByStatus[a.Status]++
		if a.WantsToHelp {
			t.Volunteers++
		}
	}
	return t, nil
}

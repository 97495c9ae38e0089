package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orablu/space-adoption/internal/model"
	"github.com/orablu/space-adoption/internal/repository"
)

// tick returns a clock that advances one second per call.
func tick() func() time.Time {
	t := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func TestConcurrentAdoptionsSingleWinner(t *testing.T) {
	s := New()
	sp := s.AddSpace("Bagno 1", "desc", 3000)

	const n = 32
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = s.Adoptions.Create(context.Background(), &model.Adoption{SpaceID: sp.ID, SponsorName: "sponsor"})
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
			continue
		}
		assert.ErrorIs(t, err, repository.ErrConflict)
	}
	assert.Equal(t, 1, wins)

	got, err := s.Spaces.GetByID(context.Background(), sp.ID)
	require.NoError(t, err)
	assert.True(t, got.Adopted)
	require.NotNil(t, got.Adoption)
	assert.Equal(t, model.StatusPending, got.Adoption.Status)
}

func TestAdoptionCreateUnknownSpace(t *testing.T) {
	s := New()
	err := s.Adoptions.Create(context.Background(), &model.Adoption{SpaceID: 42, SponsorName: "x"})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestAdoptionListNewestFirst(t *testing.T) {
	s := New(WithClock(tick()))
	a := s.AddSpace("A", "", 1000)
	b := s.AddSpace("B", "", 2000)
	ctx := context.Background()
	require.NoError(t, s.Adoptions.Create(ctx, &model.Adoption{SpaceID: a.ID, SponsorName: "first"}))
	require.NoError(t, s.Adoptions.Create(ctx, &model.Adoption{SpaceID: b.ID, SponsorName: "second", WantsToHelp: true}))

	list, err := s.Adoptions.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "second", list[0].SponsorName)
	assert.Equal(t, "B", list[0].SpaceName)
	assert.Equal(t, int64(2000), list[0].SpaceCost)

	require.NoError(t, s.Adoptions.UpdateNotes(ctx, list[1].ID, "call back"))
	require.NoError(t, s.Adoptions.UpdateStatus(ctx, list[1].ID, model.StatusConfirmed))
	got, err := s.Adoptions.GetByID(ctx, list[1].ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusConfirmed, got.Status)
	require.NotNil(t, got.Notes)
	assert.Equal(t, "call back", *got.Notes)

	require.NoError(t, s.Adoptions.UpdateNotes(ctx, list[1].ID, ""))
	got, _ = s.Adoptions.GetByID(ctx, list[1].ID)
	assert.Nil(t, got.Notes)

	assert.ErrorIs(t, s.Adoptions.UpdateStatus(ctx, 99, model.StatusApproved), repository.ErrNotFound)
}

func TestSetImage(t *testing.T) {
	s := New()
	sp := s.AddSpace("A", "", 1000)
	ctx := context.Background()

	require.NoError(t, s.Spaces.SetImage(ctx, sp.ID, "/uploads/a.png"))
	got, err := s.Spaces.GetByID(ctx, sp.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ImageURL)
	assert.Equal(t, "/uploads/a.png", *got.ImageURL)
	assert.Nil(t, got.Adoption)

	assert.ErrorIs(t, s.Spaces.SetImage(ctx, 7, "/uploads/a.png"), repository.ErrNotFound)
}

func TestLogoRotationKeepsOneActive(t *testing.T) {
	s := New(WithClock(tick()))
	ctx := context.Background()

	for _, name := range []string{"l1.png", "l2.png", "l3.png"} {
		require.NoError(t, s.Media.ReplaceLogo(ctx, &model.Media{Filename: name, URL: "/uploads/" + name}))
	}
	assert.Equal(t, 1, s.Media.ActiveLogoCount())

	logo, err := s.Media.ActiveLogo(ctx)
	require.NoError(t, err)
	require.NotNil(t, logo)
	assert.Equal(t, "/uploads/l3.png", logo.URL)
}

func TestCarouselOrderingAndRemoval(t *testing.T) {
	s := New(WithClock(tick()))
	ctx := context.Background()

	late := &model.Media{Filename: "c.png", URL: "/uploads/c.png", Position: 2}
	first := &model.Media{Filename: "a.png", URL: "/uploads/a.png", Position: 1}
	second := &model.Media{Filename: "b.png", URL: "/uploads/b.png", Position: 1}
	for _, m := range []*model.Media{late, first, second} {
		require.NoError(t, s.Media.AddCarousel(ctx, m))
	}

	car, err := s.Media.ActiveCarousel(ctx)
	require.NoError(t, err)
	require.Len(t, car, 3)
	assert.Equal(t, []string{"a.png", "b.png", "c.png"}, []string{car[0].Filename, car[1].Filename, car[2].Filename})

	require.NoError(t, s.Media.DeactivateCarousel(ctx, first.ID))
	assert.ErrorIs(t, s.Media.DeactivateCarousel(ctx, first.ID), repository.ErrNotFound)

	logo := &model.Media{Filename: "l.png", URL: "/uploads/l.png"}
	require.NoError(t, s.Media.ReplaceLogo(ctx, logo))
	assert.ErrorIs(t, s.Media.DeactivateCarousel(ctx, logo.ID), repository.ErrNotFound)

	car, _ = s.Media.ActiveCarousel(ctx)
	assert.Len(t, car, 2)
}

func TestTotals(t *testing.T) {
	s := New()
	ctx := context.Background()
	a := s.AddSpace("A", "", 3000)
	s.AddSpace("B", "", 5000)
	require.NoError(t, s.Adoptions.Create(ctx, &model.Adoption{SpaceID: a.ID, SponsorName: "x", WantsToHelp: true}))

	tot, err := s.Stats.Totals(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.Totals{
		TotalSpaces:    2,
		AdoptedSpaces:  1,
		TotalRaised:    3000,
		TotalGoal:      8000,
		TotalAdoptions: 1,
		Volunteers:     1,
		ByStatus:       map[model.AdoptionStatus]int64{model.StatusPending: 1},
	}, tot)
}

func TestCancelledContext(t *testing.T) {
	s := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Spaces.List(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

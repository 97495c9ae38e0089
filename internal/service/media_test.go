package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orablu/space-adoption/internal/storage/storagetest"
)

func TestSetLogoKeepsOneActive(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	set, err := e.media.GetMedia(ctx)
	require.NoError(t, err)
	assert.Nil(t, set.Logo)
	assert.NotNil(t, set.Carousel)

	_, err = e.media.SetLogo(ctx, storagetest.FileHeader(t, "logo", "one.png", "image/png", storagetest.PNG))
	require.NoError(t, err)
	second, err := e.media.SetLogo(ctx, storagetest.FileHeader(t, "logo", "two.png", "image/png", storagetest.PNG))
	require.NoError(t, err)

	set, err = e.media.GetMedia(ctx)
	require.NoError(t, err)
	require.NotNil(t, set.Logo)
	assert.Equal(t, second, *set.Logo)
	assert.Equal(t, 1, e.store.Media.ActiveLogoCount())

	_, err = e.media.SetLogo(ctx, nil)
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestCarousel(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	add := func(pos string) uint64 {
		m, err := e.media.AddCarouselImage(ctx, CarouselInput{
			Image:    storagetest.FileHeader(t, "image", "c.png", "image/png", storagetest.PNG),
			Caption:  "caption " + pos,
			Position: pos,
		})
		require.NoError(t, err)
		return m.ID
	}
	idA := add("2")
	idB := add("abc") // invalid, becomes 0
	idC := add("")
	idD := add("1")

	set, err := e.media.GetMedia(ctx)
	require.NoError(t, err)
	ids := make([]uint64, 0, len(set.Carousel))
	for _, m := range set.Carousel {
		ids = append(ids, m.ID)
	}
	assert.Equal(t, []uint64{idB, idC, idD, idA}, ids)
	assert.Equal(t, 0, set.Carousel[0].Position)
	require.NotNil(t, set.Carousel[0].Caption)
	assert.Nil(t, set.Carousel[0].Description)

	require.NoError(t, e.media.RemoveCarouselImage(ctx, idC))
	err = e.media.RemoveCarouselImage(ctx, idC)
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.Equal(t, KindNotFound, KindOf(e.media.RemoveCarouselImage(ctx, 999)))

	set, err = e.media.GetMedia(ctx)
	require.NoError(t, err)
	assert.Len(t, set.Carousel, 3)

	_, err = e.media.AddCarouselImage(ctx, CarouselInput{})
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestRemoveCarouselRejectsLogoID(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	_, err := e.media.SetLogo(ctx, storagetest.FileHeader(t, "logo", "l.png", "image/png", storagetest.PNG))
	require.NoError(t, err)
	assert.Equal(t, KindNotFound, KindOf(e.media.RemoveCarouselImage(ctx, 1)))
	assert.Equal(t, 1, e.store.Media.ActiveLogoCount())
}

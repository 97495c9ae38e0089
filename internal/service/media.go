package service

import (
	"context"
	"mime/multipart"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/orablu/space-adoption/internal/logger"
	"github.com/orablu/space-adoption/internal/model"
	"github.com/orablu/space-adoption/internal/storage"
)

// CarouselInput is an uploaded carousel image with its optional metadata.
// Position is the raw form value; anything that is not an integer becomes 0.
type CarouselInput struct {
	Image       *multipart.FileHeader
	Caption     string
	Description string
	Position    string
}

// MediaService manages the logo and the carousel.
type MediaService struct {
	media MediaStore
	files FileStore
}

func NewMediaService(media MediaStore, files FileStore) *MediaService {
	return &MediaService{media: media, files: files}
}

// GetMedia fetches the active logo and the active carousel concurrently.
func (s *MediaService) GetMedia(ctx context.Context) (model.MediaSet, error) {
	var (
		logo     *model.Media
		carousel []model.Media
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		logo, err = s.media.ActiveLogo(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		carousel, err = s.media.ActiveCarousel(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		logger.ErrorCtx(ctx, err, zap.String("op", "get media"))
		return model.MediaSet{}, storeError("failed to load media", err)
	}

	set := model.MediaSet{Carousel: carousel}
	if logo != nil {
		url := logo.URL
		set.Logo = &url
	}
	if set.Carousel == nil {
		set.Carousel = []model.Media{}
	}
	return set, nil
}

// SetLogo stores the file and makes it the only active logo.
func (s *MediaService) SetLogo(ctx context.Context, fh *multipart.FileHeader) (string, error) {
	if fh == nil {
		return "", validationError("no logo uploaded")
	}
	f, err := s.files.Save("logo", fh, storage.ImagePolicy)
	if err != nil {
		return "", uploadError(err)
	}
	m := &model.Media{Type: model.MediaLogo, Filename: f.Filename, URL: f.URL}
	if err := s.media.ReplaceLogo(ctx, m); err != nil {
		s.discard(ctx, f)
		logger.ErrorCtx(ctx, err, zap.String("op", "replace logo"))
		return "", storeError("failed to save logo", err)
	}
	logger.InfoCtx(ctx, "logo replaced", zap.Uint64("media_id", m.ID), zap.String("url", m.URL))
	return m.URL, nil
}

// AddCarouselImage stores the file as a new active carousel image.
func (s *MediaService) AddCarouselImage(ctx context.Context, in CarouselInput) (*model.Media, error) {
	if in.Image == nil {
		return nil, validationError("no image uploaded")
	}
	f, err := s.files.Save("image", in.Image, storage.ImagePolicy)
	if err != nil {
		return nil, uploadError(err)
	}
	m := &model.Media{
		Type:        model.MediaCarousel,
		Filename:    f.Filename,
		URL:         f.URL,
		Caption:     optional(in.Caption),
		Description: optional(in.Description),
		Position:    parsePosition(in.Position),
	}
	if err := s.media.AddCarousel(ctx, m); err != nil {
		s.discard(ctx, f)
		logger.ErrorCtx(ctx, err, zap.String("op", "add carousel image"))
		return nil, storeError("failed to save carousel image", err)
	}
	return m, nil
}

// RemoveCarouselImage deactivates a carousel image.  Removing an image that
// is already inactive reports not found.
func (s *MediaService) RemoveCarouselImage(ctx context.Context, id uint64) error {
	if err := s.media.DeactivateCarousel(ctx, id); err != nil {
		serr := fromRepo(err, "carousel image not found", "carousel image not found", "failed to remove carousel image")
		if serr.Kind == KindStore {
			logger.ErrorCtx(ctx, err, zap.Uint64("media_id", id))
		}
		return serr
	}
	return nil
}

func (s *MediaService) discard(ctx context.Context, f storage.StoredFile) {
	if err := s.files.Remove(f); err != nil {
		logger.WarnCtx(ctx, "remove orphan upload failed", zap.String("file", f.Filename), zap.Error(err))
	}
}

func parsePosition(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0
	}
	return n
}

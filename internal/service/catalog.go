package service

import (
	"context"
	"mime/multipart"

	"go.uber.org/zap"

	"github.com/orablu/space-adoption/internal/logger"
	"github.com/orablu/space-adoption/internal/model"
	"github.com/orablu/space-adoption/internal/storage"
)

// CatalogService serves the list of spaces.
type CatalogService struct {
	spaces SpaceStore
	files  FileStore
}

func NewCatalogService(spaces SpaceStore, files FileStore) *CatalogService {
	return &CatalogService{spaces: spaces, files: files}
}

// ListSpaces returns every space ordered by id, each with its adoption when
// adopted.
func (s *CatalogService) ListSpaces(ctx context.Context) ([]model.SpaceWithAdoption, error) {
	list, err := s.spaces.List(ctx)
	if err != nil {
		logger.ErrorCtx(ctx, err, zap.String("op", "list spaces"))
		return nil, storeError("failed to load spaces", err)
	}
	if list == nil {
		list = []model.SpaceWithAdoption{}
	}
	return list, nil
}

// GetSpace returns one space.
func (s *CatalogService) GetSpace(ctx context.Context, id uint64) (*model.SpaceWithAdoption, error) {
	sp, err := s.spaces.GetByID(ctx, id)
	if err != nil {
		return nil, fromRepo(err, "space not found", "space not found", "failed to load space")
	}
	return sp, nil
}

// SetSpaceImage stores the uploaded image and points the space at it.  The
// file is removed again when the space does not exist or the write fails.
func (s *CatalogService) SetSpaceImage(ctx context.Context, id uint64, fh *multipart.FileHeader) (string, error) {
	if fh == nil {
		return "", validationError("no image uploaded")
	}
	if _, err := s.spaces.GetByID(ctx, id); err != nil {
		return "", fromRepo(err, "space not found", "space not found", "failed to load space")
	}
	f, err := s.files.Save("image", fh, storage.ImagePolicy)
	if err != nil {
		return "", uploadError(err)
	}
	if err := s.spaces.SetImage(ctx, id, f.URL); err != nil {
		s.discard(ctx, f)
		return "", fromRepo(err, "space not found", "space not found", "failed to update space image")
	}
	logger.InfoCtx(ctx, "space image updated", zap.Uint64("space_id", id), zap.String("url", f.URL))
	return f.URL, nil
}

func (s *CatalogService) discard(ctx context.Context, f storage.StoredFile) {
	if err := s.files.Remove(f); err != nil {
		logger.WarnCtx(ctx, "remove orphan upload failed", zap.String("file", f.Filename), zap.Error(err))
	}
}

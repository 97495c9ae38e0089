package service

import (
	"context"
	"errors"
	"mime/multipart"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/orablu/space-adoption/internal/logger"
	"github.com/orablu/space-adoption/internal/model"
	"github.com/orablu/space-adoption/internal/queue"
	"github.com/orablu/space-adoption/internal/storage"
)

// AdoptionInput is the sponsor's adoption form.  PaymentProof is optional.
type AdoptionInput struct {
	SpaceID      uint64
	SponsorName  string
	SponsorEmail string
	SponsorPhone string
	WantsToHelp  bool
	PaymentProof *multipart.FileHeader
}

// AdoptionService creates adoptions and lets admins manage them.
type AdoptionService struct {
	spaces    SpaceStore
	adoptions AdoptionStore
	files     FileStore
	events    EventPublisher
	now       func() time.Time
}

func NewAdoptionService(spaces SpaceStore, adoptions AdoptionStore, files FileStore, events EventPublisher) *AdoptionService {
	if events == nil {
		events = NopPublisher{}
	}
	return &AdoptionService{
		spaces:    spaces,
		adoptions: adoptions,
		files:     files,
		events:    events,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// CreateAdoption claims the space for the sponsor.  The first adoption of a
// space wins; any later attempt, including a concurrent one that loses at
// commit, is a conflict and leaves the store unchanged.
func (s *AdoptionService) CreateAdoption(ctx context.Context, in AdoptionInput) (*model.Adoption, error) {
	name := strings.TrimSpace(in.SponsorName)
	if name == "" {
		return nil, validationError("sponsor name is required")
	}

	sp, err := s.spaces.GetByID(ctx, in.SpaceID)
	if err != nil {
		return nil, fromRepo(err, "space not found", "space not found", "failed to load space")
	}
	if sp.Adopted {
		return nil, conflictError("space already adopted")
	}

	a := &model.Adoption{
		SpaceID:      in.SpaceID,
		SponsorName:  name,
		SponsorEmail: optional(in.SponsorEmail),
		SponsorPhone: optional(in.SponsorPhone),
		WantsToHelp:  in.WantsToHelp,
		Status:       model.StatusPending,
	}

	var proof *storage.StoredFile
	if in.PaymentProof != nil {
		f, err := s.files.Save("paymentProof", in.PaymentProof, storage.ProofPolicy)
		if err != nil {
			return nil, uploadError(err)
		}
		proof = &f
		a.PaymentProofURL = &f.URL
	}

	if err := s.adoptions.Create(ctx, a); err != nil {
		if proof != nil {
			if rerr := s.files.Remove(*proof); rerr != nil {
				logger.WarnCtx(ctx, "remove orphan upload failed", zap.String("file", proof.Filename), zap.Error(rerr))
			}
		}
		serr := fromRepo(err, "space not found", "space already adopted", "failed to create adoption")
		if serr.Kind == KindStore {
			logger.ErrorCtx(ctx, err, zap.Uint64("space_id", in.SpaceID))
		}
		return nil, serr
	}

	logger.InfoCtx(ctx, "space adopted",
		zap.Uint64("space_id", a.SpaceID),
		zap.Uint64("adoption_id", a.ID),
		zap.String("sponsor", a.SponsorName))

	ev := queue.AdoptionCreatedEvent{
		AdoptionID:  a.ID,
		SpaceID:     a.SpaceID,
		SpaceName:   sp.Name,
		SpaceCost:   sp.Cost,
		SponsorName: a.SponsorName,
		WantsToHelp: a.WantsToHelp,
		CreatedAt:   a.CreatedAt.UTC().Format(time.RFC3339),
	}
	if a.SponsorEmail != nil {
		ev.SponsorEmail = *a.SponsorEmail
	}
	if err := s.events.AdoptionCreated(ctx, ev); err != nil {
		logger.WarnCtx(ctx, "publish adoption.created failed", zap.Uint64("adoption_id", a.ID), zap.Error(err))
	}
	return a, nil
}

// ListAdoptions returns every adoption with its space name and cost,
// newest first.
func (s *AdoptionService) ListAdoptions(ctx context.Context) ([]model.AdoptionDetail, error) {
	list, err := s.adoptions.List(ctx)
	if err != nil {
		logger.ErrorCtx(ctx, err, zap.String("op", "list adoptions"))
		return nil, storeError("failed to load adoptions", err)
	}
	if list == nil {
		list = []model.AdoptionDetail{}
	}
	return list, nil
}

// UpdateStatus sets any status of the vocabulary on an adoption.
func (s *AdoptionService) UpdateStatus(ctx context.Context, id uint64, status string) (model.AdoptionStatus, error) {
	st := model.AdoptionStatus(strings.TrimSpace(status))
	if !st.Valid() {
		return "", validationError("invalid status")
	}
	if err := s.adoptions.UpdateStatus(ctx, id, st); err != nil {
		return "", s.updateError(ctx, id, err)
	}
	logger.InfoCtx(ctx, "adoption status updated", zap.Uint64("adoption_id", id), zap.String("status", string(st)))

	ev := queue.AdoptionStatusChangedEvent{
		AdoptionID: id,
		Status:     string(st),
		ChangedAt:  s.now().Format(time.RFC3339),
	}
	if err := s.events.AdoptionStatusChanged(ctx, ev); err != nil {
		logger.WarnCtx(ctx, "publish adoption.status_changed failed", zap.Uint64("adoption_id", id), zap.Error(err))
	}
	return st, nil
}

// UpdateNotes overwrites the admin notes of an adoption.
func (s *AdoptionService) UpdateNotes(ctx context.Context, id uint64, notes string) error {
	if err := s.adoptions.UpdateNotes(ctx, id, notes); err != nil {
		return s.updateError(ctx, id, err)
	}
	return nil
}

func (s *AdoptionService) updateError(ctx context.Context, id uint64, err error) error {
	serr := fromRepo(err, "adoption not found", "adoption not found", "failed to update adoption")
	if serr.Kind == KindStore && !errors.Is(err, context.Canceled) {
		logger.ErrorCtx(ctx, err, zap.Uint64("adoption_id", id))
	}
	return serr
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

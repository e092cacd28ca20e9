package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/RubachokBoss/knowledge-market/internal/models"
	"github.com/RubachokBoss/knowledge-market/internal/repository"
	"github.com/RubachokBoss/knowledge-market/internal/service/integration"
	"github.com/RubachokBoss/knowledge-market/internal/storage"
)

// SubmissionService manages the teaching material and final report of each group.
type SubmissionService interface {
	SubmitTeachingMaterial(ctx context.Context, group string, req *models.SubmitTeachingRequest) (*models.GroupSubmission, error)
	SubmitReport(ctx context.Context, group string, req *models.SubmitReportRequest) (*models.GroupSubmission, error)
	GetSubmission(ctx context.Context, group string) (*models.GroupSubmission, error)
	GetTeachingImage(ctx context.Context, group string) (*storage.Object, error)
}

type submissionService struct {
	store        repository.MarketStore
	blobs        storage.BlobStore
	publisher    integration.EventPublisher
	maxImageSize int64
	logger       zerolog.Logger
}

func NewSubmissionService(
	store repository.MarketStore,
	blobs storage.BlobStore,
	publisher integration.EventPublisher,
	maxImageSize int64,
	logger zerolog.Logger,
) SubmissionService {
	return &submissionService{
		store:        store,
		blobs:        blobs,
		publisher:    publisher,
		maxImageSize: maxImageSize,
		logger:       logger,
	}
}

// checkTeachingWritable holds every rule for a teaching submission. It runs
// once before the image upload and again inside the commit.
func checkTeachingWritable(st *repository.State, group string) (*models.GroupSubmission, error) {
	sub, err := lookupSubmission(st, group)
	if err != nil {
		return nil, err
	}
	if !st.Market.Phase.Allows(models.ActionSubmitTeaching) {
		return nil, fmt.Errorf("%w: teaching material is accepted only while teaching, phase is %s",
			models.ErrInvalidPhase, st.Market.Phase)
	}
	if sub.TeachingSubmitted {
		return nil, fmt.Errorf("%w: group %q already submitted teaching material", models.ErrAlreadySubmitted, group)
	}
	return sub, nil
}

func (s *submissionService) SubmitTeachingMaterial(ctx context.Context, group string, req *models.SubmitTeachingRequest) (*models.GroupSubmission, error) {
	if cleanString(req.Text) == "" {
		return nil, models.NewValidationError(models.FieldError{Field: "text", Error: "this field is required"})
	}
	if s.maxImageSize > 0 && int64(len(req.Image)) > s.maxImageSize {
		return nil, models.NewValidationError(models.FieldError{
			Field: "image",
			Error: fmt.Sprintf("must be at most %d bytes", s.maxImageSize),
		})
	}

	var marketID string
	err := s.store.View(ctx, func(st *repository.State) error {
		if _, err := checkTeachingWritable(st, group); err != nil {
			return err
		}
		marketID = st.Market.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	var image *models.TeachingImage
	if len(req.Image) > 0 {
		contentType := req.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		image = &models.TeachingImage{
			Key:         marketBlobPrefix(marketID) + "teaching/" + uuid.New().String(),
			ContentType: contentType,
			Size:        int64(len(req.Image)),
		}
		if err := s.blobs.Put(ctx, image.Key, req.Image, contentType); err != nil {
			return nil, fmt.Errorf("failed to store teaching image: %w", err)
		}
	}

	var (
		result *models.GroupSubmission
		market *models.Market
	)
	err = s.store.Update(ctx, func(st *repository.State) error {
		sub, err := checkTeachingWritable(st, group)
		if err != nil {
			return err
		}
		// the market may have been closed and reopened while uploading
		if st.Market.ID != marketID {
			return fmt.Errorf("%w: group %q not found", models.ErrNotFound, group)
		}

		now := time.Now().UTC()
		sub.TeachingText = req.Text
		sub.TeachingImage = image
		sub.TeachingSubmitted = true
		sub.TeachingSubmittedAt = &now

		result = sub.Clone()
		market = st.Market.Clone()
		return nil
	})
	if err != nil {
		if image != nil {
			if delErr := s.blobs.Delete(ctx, image.Key); delErr != nil {
				s.logger.Error().Err(delErr).Str("key", image.Key).Msg("Failed to delete orphaned teaching image")
			}
		}
		return nil, err
	}

	s.logger.Info().
		Str("group", group).
		Bool("has_image", image != nil).
		Msg("Teaching material submitted")

	event := newEvent(models.EventTeachingSubmitted, market)
	event.Group = group
	publish(ctx, s.publisher, s.logger, event)

	return result, nil
}

func (s *submissionService) SubmitReport(ctx context.Context, group string, req *models.SubmitReportRequest) (*models.GroupSubmission, error) {
	if cleanString(req.Text) == "" {
		return nil, models.NewValidationError(models.FieldError{Field: "text", Error: "this field is required"})
	}

	var (
		result *models.GroupSubmission
		market *models.Market
	)
	err := s.store.Update(ctx, func(st *repository.State) error {
		sub, err := lookupSubmission(st, group)
		if err != nil {
			return err
		}
		if !st.Market.Phase.Allows(models.ActionSubmitReport) {
			return fmt.Errorf("%w: reports are accepted only while reporting, phase is %s",
				models.ErrInvalidPhase, st.Market.Phase)
		}
		if sub.ReportSubmitted {
			return fmt.Errorf("%w: group %q already submitted a report", models.ErrAlreadySubmitted, group)
		}

		now := time.Now().UTC()
		sub.ReportText = req.Text
		sub.ReportSubmitted = true
		sub.ReportSubmittedAt = &now

		result = sub.Clone()
		market = st.Market.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("group", group).Msg("Report submitted")

	event := newEvent(models.EventReportSubmitted, market)
	event.Group = group
	publish(ctx, s.publisher, s.logger, event)

	return result, nil
}

func (s *submissionService) GetSubmission(ctx context.Context, group string) (*models.GroupSubmission, error) {
	var result *models.GroupSubmission
	err := s.store.View(ctx, func(st *repository.State) error {
		sub, ok := st.Submissions[group]
		if !ok {
			return fmt.Errorf("%w: group %q not found", models.ErrNotFound, group)
		}
		result = sub.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *submissionService) GetTeachingImage(ctx context.Context, group string) (*storage.Object, error) {
	sub, err := s.GetSubmission(ctx, group)
	if err != nil {
		return nil, err
	}
	if sub.TeachingImage == nil {
		return nil, fmt.Errorf("%w: group %q has no teaching image", models.ErrNotFound, group)
	}

	obj, err := s.blobs.Get(ctx, sub.TeachingImage.Key)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, fmt.Errorf("%w: teaching image of group %q", models.ErrNotFound, group)
		}
		return nil, fmt.Errorf("failed to load teaching image: %w", err)
	}
	if obj.ContentType == "" {
		obj.ContentType = sub.TeachingImage.ContentType
	}
	return obj, nil
}

func lookupSubmission(st *repository.State, group string) (*models.GroupSubmission, error) {
	if !st.IsOpen() {
		return nil, models.ErrMarketClosed
	}
	sub, ok := st.Submissions[group]
	if !ok {
		return nil, fmt.Errorf("%w: group %q not found", models.ErrNotFound, group)
	}
	return sub, nil
}

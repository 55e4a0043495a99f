package services

import (
	"bytes"
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/taskgrade/backend/internal/app/models"
	"github.com/taskgrade/backend/internal/app/models/dto"
	"github.com/taskgrade/backend/internal/app/repositories"
	"github.com/taskgrade/backend/internal/pkg/apperrors"
	"github.com/taskgrade/backend/internal/pkg/filestorage"
	"github.com/taskgrade/backend/internal/pkg/metrics"
	"github.com/taskgrade/backend/internal/pkg/validation"
)

// SubmissionService stores submission files and tracks their rows
type SubmissionService interface {
	Upload(ctx context.Context, req *dto.UploadSubmissionRequest) (*dto.UploadSubmissionResponse, error)
	Download(ctx context.Context, key string) (io.ReadCloser, *filestorage.ObjectInfo, error)
	FindByFilePath(ctx context.Context, path string) (*dto.SubmissionLookupResponse, error)
}

type submissionServiceImpl struct {
	submissionRepo repositories.ISubmissionRepository
	store          filestorage.ObjectStore
	tx             TxRunner
	logger         zerolog.Logger
}

// NewSubmissionService creates a new SubmissionService
func NewSubmissionService(
	submissionRepo repositories.ISubmissionRepository,
	store filestorage.ObjectStore,
	tx TxRunner,
	logger zerolog.Logger,
) SubmissionService {
	return &submissionServiceImpl{
		submissionRepo: submissionRepo,
		store:          store,
		tx:             tx,
		logger:         logger,
	}
}

// Upload stores the file under a fresh key and marks the student's submission
// for the task as submitted. If the row update does not commit the stored
// object is removed again.
func (s *submissionServiceImpl) Upload(ctx context.Context, req *dto.UploadSubmissionRequest) (*dto.UploadSubmissionResponse, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	key := uuid.NewString()
	var (
		stored   *filestorage.ObjectInfo
		updated  *models.Submission
		replaced string
	)

	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		sub, err := s.submissionRepo.GetByTaskAndStudentForUpdate(ctx, req.TaskID, req.StudentID)
		if err != nil {
			return err
		}
		if sub.Status == models.SubmissionGraded {
			return apperrors.NewConflictError("submission has already been graded")
		}
		replaced = sub.FilePath

		stored, err = s.store.Put(ctx, key, bytes.NewReader(req.Content), req.ContentType, req.FileName)
		if err != nil {
			return err
		}

		updated, err = s.submissionRepo.MarkSubmitted(ctx, sub.ID, key, time.Now().UTC())
		return err
	})
	if err != nil {
		metrics.Uploads.WithLabelValues("failed").Inc()
		if stored != nil {
			if delErr := s.store.Delete(context.WithoutCancel(ctx), key); delErr != nil {
				s.logger.Error().Err(delErr).Str("key", key).Msg("Failed to remove object of failed upload")
			}
		}
		return nil, err
	}

	if replaced != "" && replaced != key {
		if delErr := s.store.Delete(ctx, replaced); delErr != nil {
			s.logger.Warn().Err(delErr).Str("key", replaced).Msg("Failed to remove replaced submission file")
		}
	}

	metrics.Uploads.WithLabelValues("stored").Inc()
	s.logger.Info().Str("submissionID", updated.ID).Str("key", key).Int64("size", stored.Size).Msg("Submission uploaded")
	return &dto.UploadSubmissionResponse{Key: key, Size: stored.Size, Submission: updated}, nil
}

// Download opens a stored submission file. The caller closes the reader.
func (s *submissionServiceImpl) Download(ctx context.Context, key string) (io.ReadCloser, *filestorage.ObjectInfo, error) {
	if key == "" {
		return nil, nil, apperrors.NewValidationError("key", "key is required")
	}
	return s.store.Get(ctx, key)
}

// FindByFilePath resolves a stored file path back to its submission
func (s *submissionServiceImpl) FindByFilePath(ctx context.Context, path string) (*dto.SubmissionLookupResponse, error) {
	if path == "" {
		return nil, apperrors.NewValidationError("filePath", "filePath is required")
	}

	sub, err := s.submissionRepo.GetByFilePath(ctx, path)
	if err != nil {
		return nil, err
	}
	return &dto.SubmissionLookupResponse{
		ID:             sub.ID,
		TaskID:         sub.TaskID,
		StudentID:      sub.StudentID,
		Status:         sub.Status,
		SubmissionDate: sub.SubmissionDate,
	}, nil
}

package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/taskgrade/backend/internal/app/models"
	"github.com/taskgrade/backend/internal/app/models/dto"
	"github.com/taskgrade/backend/internal/app/repositories"
	"github.com/taskgrade/backend/internal/pkg/apperrors"
	"github.com/taskgrade/backend/internal/pkg/metrics"
	"github.com/taskgrade/backend/internal/pkg/validation"
)

// GradingService records per-question marks for submissions
type GradingService interface {
	SaveMarks(ctx context.Context, req *dto.SaveMarksRequest) ([]models.Mark, error)
}

type gradingServiceImpl struct {
	submissionRepo repositories.ISubmissionRepository
	taskRepo       repositories.ITaskRepository
	userRepo       repositories.IUserRepository
	markRepo       repositories.IMarkRepository
	tx             TxRunner
	logger         zerolog.Logger
}

// NewGradingService creates a new GradingService
func NewGradingService(
	submissionRepo repositories.ISubmissionRepository,
	taskRepo repositories.ITaskRepository,
	userRepo repositories.IUserRepository,
	markRepo repositories.IMarkRepository,
	tx TxRunner,
	logger zerolog.Logger,
) GradingService {
	return &gradingServiceImpl{
		submissionRepo: submissionRepo,
		taskRepo:       taskRepo,
		userRepo:       userRepo,
		markRepo:       markRepo,
		tx:             tx,
		logger:         logger,
	}
}

// SaveMarks replaces every mark of one submission with the given entries and
// marks the submission graded. Questions missing from entries lose their
// previous marks.
func (s *gradingServiceImpl) SaveMarks(ctx context.Context, req *dto.SaveMarksRequest) ([]models.Mark, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	submissionID := req.Marks[0].SubmissionID
	questions := make(map[int]struct{}, len(req.Marks))
	teachers := make(map[string]struct{})
	var (
		teacherIDs []string
		total      float64
	)
	for _, m := range req.Marks {
		if m.SubmissionID != submissionID {
			return nil, apperrors.NewValidationError("submissionId", "all marks must belong to the same submission")
		}
		if _, dup := questions[m.QuestionNumber]; dup {
			return nil, apperrors.NewValidationError("questionNumber",
				fmt.Sprintf("question %d appears more than once", m.QuestionNumber))
		}
		questions[m.QuestionNumber] = struct{}{}
		if _, seen := teachers[m.MarkedBy]; !seen {
			teachers[m.MarkedBy] = struct{}{}
			teacherIDs = append(teacherIDs, m.MarkedBy)
		}
		total += *m.MarksObtained
	}

	sub, err := s.submissionRepo.GetByID(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	missing, err := s.userRepo.MissingTeacherIDs(ctx, teacherIDs)
	if err != nil {
		return nil, fmt.Errorf("error checking markers: %w", err)
	}
	if len(missing) > 0 {
		return nil, apperrors.NewResourceNotFoundError("teacher not found: " + strings.Join(missing, ", "))
	}
	task, err := s.taskRepo.GetTaskByID(ctx, sub.TaskID)
	if err != nil {
		return nil, err
	}
	if total > float64(task.TotalMarks) {
		return nil, apperrors.NewValidationError("marksObtained",
			fmt.Sprintf("marks total %g exceeds the task maximum of %d", total, task.TotalMarks))
	}

	now := time.Now().UTC()
	marks := make([]*models.Mark, 0, len(req.Marks))
	for _, m := range req.Marks {
		marks = append(marks, &models.Mark{
			SubmissionID:   submissionID,
			QuestionNumber: m.QuestionNumber,
			MarksObtained:  *m.MarksObtained,
			Comments:       m.Comments,
			MarkedBy:       m.MarkedBy,
			MarkedAt:       now,
		})
	}

	var saved []models.Mark
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		// Serialises concurrent grading of the same submission.
		if _, err := s.submissionRepo.GetByIDForUpdate(ctx, submissionID); err != nil {
			return err
		}
		previous, err := s.markRepo.ListBySubmission(ctx, submissionID)
		if err != nil {
			return err
		}
		if _, err := s.markRepo.DeleteBySubmission(ctx, submissionID); err != nil {
			return err
		}
		if len(previous) > 0 {
			var previousTotal float64
			for _, m := range previous {
				previousTotal += m.MarksObtained
			}
			s.logger.Info().
				Str("submissionID", submissionID).
				Int("previousQuestions", len(previous)).
				Float64("previousTotal", previousTotal).
				Msg("Replacing previous marks")
		}
		if saved, err = s.markRepo.InsertMarks(ctx, marks); err != nil {
			return err
		}
		return s.submissionRepo.SetStatus(ctx, submissionID, models.SubmissionGraded)
	})
	if err != nil {
		return nil, err
	}

	metrics.MarksSaved.Add(float64(len(saved)))
	s.logger.Info().Str("submissionID", submissionID).Int("questions", len(saved)).Float64("total", total).Msg("Marks saved")
	return saved, nil
}

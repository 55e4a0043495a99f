package services

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskgrade/backend/internal/app/models"
	"github.com/taskgrade/backend/internal/app/models/dto"
	"github.com/taskgrade/backend/internal/pkg/apperrors"
)

func newSubmissionFixture(t *testing.T) (*fakeSubmissionRepo, *fakeStore, SubmissionService) {
	t.Helper()
	subs := newFakeSubmissionRepo()
	_, err := subs.CreatePending(context.Background(), "task-1", []string{"st-1", "st-2"})
	require.NoError(t, err)
	store := newFakeStore()
	return subs, store, NewSubmissionService(subs, store, &fakeTx{}, zerolog.Nop())
}

func uploadRequest(studentID string) *dto.UploadSubmissionRequest {
	return &dto.UploadSubmissionRequest{
		TaskID:    "task-1",
		StudentID: studentID,
		FileName:  "answer.pdf",
		Content:   []byte("%PDF-1.7 answer"),
	}
}

func TestUpload_MarksOnlyMatchingSubmission(t *testing.T) {
	subs, store, svc := newSubmissionFixture(t)

	resp, err := svc.Upload(context.Background(), uploadRequest("st-1"))
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Key)
	assert.Equal(t, int64(15), resp.Size)
	assert.Equal(t, models.SubmissionSubmitted, resp.Submission.Status)
	assert.Equal(t, resp.Key, resp.Submission.FilePath)
	assert.NotNil(t, resp.Submission.SubmissionDate)

	other := subs.find("task-1", "st-2")
	assert.Equal(t, models.SubmissionPending, other.Status)
	assert.Empty(t, other.FilePath)

	rc, info, err := svc.Download(context.Background(), resp.Key)
	require.NoError(t, err)
	defer rc.Close()
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7 answer", string(body))
	assert.Equal(t, "application/pdf", info.ContentType)
	assert.Len(t, store.objects, 1)
}

func TestUpload_ResubmissionReplacesPreviousFile(t *testing.T) {
	_, store, svc := newSubmissionFixture(t)
	ctx := context.Background()

	first, err := svc.Upload(ctx, uploadRequest("st-1"))
	require.NoError(t, err)
	second, err := svc.Upload(ctx, uploadRequest("st-1"))
	require.NoError(t, err)

	assert.NotEqual(t, first.Key, second.Key)
	assert.Contains(t, store.deleted, first.Key)
	_, _, err = svc.Download(ctx, first.Key)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
}

func TestUpload_RowUpdateFailureRemovesBlob(t *testing.T) {
	subs, store, svc := newSubmissionFixture(t)
	subs.markErr = errors.New("update failed")

	_, err := svc.Upload(context.Background(), uploadRequest("st-1"))
	require.Error(t, err)
	assert.Empty(t, store.objects)
	assert.Len(t, store.deleted, 1)
	assert.Equal(t, models.SubmissionPending, subs.find("task-1", "st-1").Status)
}

func TestUpload_Rejections(t *testing.T) {
	subs, store, svc := newSubmissionFixture(t)
	ctx := context.Background()

	_, err := svc.Upload(ctx, uploadRequest("st-unknown"))
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)

	req := uploadRequest("st-1")
	req.Content = nil
	_, err = svc.Upload(ctx, req)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	subs.find("task-1", "st-2").Status = models.SubmissionGraded
	_, err = svc.Upload(ctx, uploadRequest("st-2"))
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	assert.Empty(t, store.objects)
}

func TestDownload_Missing(t *testing.T) {
	_, _, svc := newSubmissionFixture(t)

	_, _, err := svc.Download(context.Background(), "does-not-exist")
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)

	_, _, err = svc.Download(context.Background(), "")
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestFindByFilePath(t *testing.T) {
	_, _, svc := newSubmissionFixture(t)
	ctx := context.Background()

	up, err := svc.Upload(ctx, uploadRequest("st-2"))
	require.NoError(t, err)

	found, err := svc.FindByFilePath(ctx, up.Key)
	require.NoError(t, err)
	assert.Equal(t, up.Submission.ID, found.ID)
	assert.Equal(t, "st-2", found.StudentID)
	assert.Equal(t, models.SubmissionSubmitted, found.Status)

	_, err = svc.FindByFilePath(ctx, "unknown-key")
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
}

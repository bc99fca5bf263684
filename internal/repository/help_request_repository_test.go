package repository_test

import (
	"context"
	"testing"
	"time"

	"tasktracker/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

const answerUpsert = `INSERT INTO "help_answers" .* ON CONFLICT \("help_request_id"\) DO UPDATE SET .*"answer"="excluded"."answer"`

func TestHelpRequestRepository_SaveAnswer(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	repo := repository.NewHelpRequestRepository(gormDB)
	requestID, adminID := uuid.New(), uuid.New()
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectExec(answerUpsert).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "help_requests" SET "status"=.* WHERE id = `).
		WithArgs("answered", sqlmock.AnyArg(), requestID.String()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT \* FROM "help_answers" WHERE help_request_id = `).
		WillReturnRows(sqlmock.NewRows([]string{"id", "help_request_id", "admin_id", "answer", "created_at", "updated_at"}).
			AddRow(uuid.NewString(), requestID.String(), adminID.String(), "Use the staging token", now, now))
	mock.ExpectCommit()

	// Act
	answer, err := repo.SaveAnswer(context.Background(), requestID, adminID, "Use the staging token")

	// Assert
	assert.NoError(t, err)
	if assert.NotNil(t, answer) {
		assert.Equal(t, requestID, answer.HelpRequestID)
		assert.Equal(t, "Use the staging token", answer.Answer)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHelpRequestRepository_SaveAnswer_MissingRequestRollsBack(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	repo := repository.NewHelpRequestRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(answerUpsert).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "help_requests" SET "status"=`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	// Act
	answer, err := repo.SaveAnswer(context.Background(), uuid.New(), uuid.New(), "text")

	// Assert
	assert.ErrorIs(t, err, repository.ErrHelpRequestNotFound)
	assert.Nil(t, answer)
	assert.NoError(t, mock.ExpectationsWereMet())
}

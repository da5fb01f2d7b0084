package repository_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"runclub-backend/models"
	"runclub-backend/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestUpsert_NewEndpointInserts(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormSubscriptionRepo(gormDB)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "push_subscriptions"`)).
		WillReturnRows(sqlmock.NewRows([]string{}))

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "push_subscriptions"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.New()))
	mock.ExpectCommit()

	err := repo.Upsert(context.Background(), uuid.New(), "https://push.example/1",
		models.SubscriptionKeys{P256dh: "key1", Auth: "auth1"})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsert_KnownEndpointUpdatesKeys(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormSubscriptionRepo(gormDB)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "user_id", "endpoint", "p256dh", "auth", "created_at", "updated_at"}).
		AddRow(uuid.New(), uuid.New(), "https://push.example/1", "old-key", "old-auth", now, now)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "push_subscriptions"`)).
		WillReturnRows(rows)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "push_subscriptions"`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	// Resubscribe with rotated keys must update the row, not add a second.
	err := repo.Upsert(context.Background(), uuid.New(), "https://push.example/1",
		models.SubscriptionKeys{P256dh: "new-key", Auth: "new-auth"})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRemove_AbsentRowIsNotAnError(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormSubscriptionRepo(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "push_subscriptions"`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := repo.Remove(context.Background(), uuid.New(), "https://push.example/gone")
	assert.NoError(t, err)
}

func TestExists(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormSubscriptionRepo(gormDB)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "push_subscriptions"`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	exists, err := repo.Exists(context.Background(), uuid.New(), "https://push.example/1")
	assert.NoError(t, err)
	assert.True(t, exists)
}

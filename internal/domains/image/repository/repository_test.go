package repository_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"lodge/infras/otel/mocks"
	"lodge/infras/postgres"
	"lodge/internal/domains/image/model"
	"lodge/internal/domains/image/repository"
	gModel "lodge/shared/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const propertyID = "5a4b3c2d-1e0f-4a9b-8c7d-6e5f4a3b2c1d"

var (
	owner = model.Owner{Type: model.EntityProperty, ID: propertyID}

	lockQuery  = regexp.QuoteMeta("SELECT pg_advisory_xact_lock(hashtext($1))")
	nextQuery  = regexp.QuoteMeta("SELECT COALESCE(MAX(sort_order), 0) + 1 FROM images WHERE entity_type = $1 AND entity_id = $2")
	clearQuery = regexp.QuoteMeta("UPDATE images SET is_cover = FALSE")
	setQuery   = regexp.QuoteMeta("UPDATE images SET is_cover = TRUE")
	insertStmt = regexp.QuoteMeta("INSERT INTO images (")
)

func newRepository(t *testing.T) (repository.Image, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	t.Cleanup(func() { _ = db.Close() })

	conn := sqlx.NewDb(db, "postgres")

	return repository.New(&postgres.Connection{Read: conn, Write: conn}, mocks.NewOtel()), mock
}

func newImage(isCover bool, sortOrder int) model.Image {
	at := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	return model.Image{
		ID:         "img-new",
		EntityType: owner.Type,
		EntityID:   owner.ID,
		PublicID:   "lodge/property/new.png",
		Format:     "png",
		IsCover:    isCover,
		SortOrder:  sortOrder,
		Metadata:   gModel.NewMetadata("admin-1", at),
	}
}

func TestImageRepository_CreateWithPlacement(t *testing.T) {
	t.Run("cover allocates the next slot and clears the old cover", func(t *testing.T) {
		repo, mock := newRepository(t)
		img := newImage(true, 0)

		mock.ExpectBegin()
		mock.ExpectExec(lockQuery).WithArgs(owner.String()).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(nextQuery).WithArgs("property", propertyID).
			WillReturnRows(sqlmock.NewRows([]string{"next"}).AddRow(4))
		mock.ExpectExec(clearQuery).WithArgs("property", propertyID, img.ModifiedAt, "admin-1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(insertStmt).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		saved, err := repo.CreateWithPlacement(context.Background(), img)

		require.NoError(t, err)
		assert.Equal(t, 4, saved.SortOrder)
		assert.True(t, saved.IsCover)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("explicit order and no cover touch nothing else", func(t *testing.T) {
		repo, mock := newRepository(t)

		mock.ExpectBegin()
		mock.ExpectExec(lockQuery).WithArgs(owner.String()).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(insertStmt).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		saved, err := repo.CreateWithPlacement(context.Background(), newImage(false, 3))

		require.NoError(t, err)
		assert.Equal(t, 3, saved.SortOrder)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("failed allocation rolls back before insert", func(t *testing.T) {
		repo, mock := newRepository(t)

		mock.ExpectBegin()
		mock.ExpectExec(lockQuery).WithArgs(owner.String()).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(nextQuery).WillReturnError(errors.New("connection reset"))
		mock.ExpectRollback()

		_, err := repo.CreateWithPlacement(context.Background(), newImage(true, 0))

		require.Error(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("failed insert rolls back the cleared cover", func(t *testing.T) {
		repo, mock := newRepository(t)

		mock.ExpectBegin()
		mock.ExpectExec(lockQuery).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(clearQuery).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(insertStmt).WillReturnError(errors.New("unique violation"))
		mock.ExpectRollback()

		_, err := repo.CreateWithPlacement(context.Background(), newImage(true, 2))

		require.Error(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestImageRepository_SetCover(t *testing.T) {
	t.Run("locks, clears then sets in one transaction", func(t *testing.T) {
		repo, mock := newRepository(t)

		mock.ExpectBegin()
		mock.ExpectExec(lockQuery).WithArgs(owner.String()).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(clearQuery).WithArgs("property", propertyID, sqlmock.AnyArg(), "admin-1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(setQuery).WithArgs("img-2", "property", propertyID, sqlmock.AnyArg(), "admin-1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, repo.SetCover(context.Background(), owner, "img-2", "admin-1"))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("image of another owner rolls back the cleared cover", func(t *testing.T) {
		repo, mock := newRepository(t)

		mock.ExpectBegin()
		mock.ExpectExec(lockQuery).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(clearQuery).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(setQuery).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := repo.SetCover(context.Background(), owner, "img-other", "admin-1")

		require.ErrorIs(t, err, repository.ErrImageNotOwned)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("lock failure changes nothing", func(t *testing.T) {
		repo, mock := newRepository(t)

		mock.ExpectBegin()
		mock.ExpectExec(lockQuery).WillReturnError(errors.New("lock timeout"))
		mock.ExpectRollback()

		require.Error(t, repo.SetCover(context.Background(), owner, "img-2", "admin-1"))
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestImageRepository_ListByOwner(t *testing.T) {
	repo, mock := newRepository(t)

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY is_cover DESC, sort_order ASC, created_at ASC")).
		WithArgs("property", propertyID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "is_cover", "sort_order"}).
			AddRow("img-1", true, 2).
			AddRow("img-2", false, 1))

	images, err := repo.ListByOwner(context.Background(), owner)

	require.NoError(t, err)
	require.Len(t, images, 2)
	assert.Equal(t, "img-1", images[0].ID)
	assert.True(t, images[0].IsCover)
	require.NoError(t, mock.ExpectationsWereMet())
}

package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"lodge/infras/otel"
	"lodge/infras/postgres"
	"lodge/internal/domains/image/model"
	"lodge/shared/constant"
	gDto "lodge/shared/dto"
	"lodge/shared/logger"
	gRepo "lodge/shared/repository"
	"lodge/shared/timezone"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var ErrImageNotOwned = errors.New("image does not belong to owner")

type Image interface {
	Insert(ctx context.Context, model model.Image) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Image, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Image, error)
	Exist(ctx context.Context, filter gDto.FilterGroup) (bool, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	Update(ctx context.Context, req map[string]any, filter gDto.FilterGroup) error
	Delete(ctx context.Context, filter gDto.FilterGroup) error

	// ListByOwner returns the cover first, then the rest by ascending sort order.
	ListByOwner(ctx context.Context, owner model.Owner) ([]model.Image, error)
	ListCovers(ctx context.Context, entityType model.EntityType, entityIDs []string) ([]model.Image, error)
	CreateWithPlacement(ctx context.Context, image model.Image) (model.Image, error)
	SetCover(ctx context.Context, owner model.Owner, id, user string) error
	DeleteByOwnersTx(ctx context.Context, tx *sqlx.Tx, entityType model.EntityType, entityIDs []string) ([]model.Image, error)
}

const (
	queryLockOwner     = "SELECT pg_advisory_xact_lock(hashtext($1))"
	queryNextSortOrder = "SELECT COALESCE(MAX(sort_order), 0) + 1 FROM images WHERE entity_type = $1 AND entity_id = $2"
	queryClearCover    = "UPDATE images SET is_cover = FALSE, modified_at = $3, modified_by = $4 WHERE entity_type = $1 AND entity_id = $2 AND is_cover"
	querySetCover      = "UPDATE images SET is_cover = TRUE, modified_at = $4, modified_by = $5 WHERE id = $1 AND entity_type = $2 AND entity_id = $3"
)

type repositoryImpl struct {
	gRepo.Repository[model.Image]
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Image {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Image](model.EntityName, model.TableName, model.FieldID, db, otel),
		db:         db,
		otel:       otel,
	}
}

func (r *repositoryImpl) columns() string {
	return strings.Join(r.InsertColumns, ", ")
}

func (r *repositoryImpl) ListByOwner(ctx context.Context, owner model.Owner) ([]model.Image, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".image.ListByOwner")
	defer scope.End()

	query := fmt.Sprintf("SELECT %s FROM %s WHERE entity_type = $1 AND entity_id = $2 ORDER BY is_cover DESC, sort_order ASC, created_at ASC", r.columns(), model.TableName)
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	images := []model.Image{}
	if err := r.db.Read.SelectContext(ctx, &images, query, owner.Type, owner.ID); err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return nil, fmt.Errorf("failed to list images of %s: %w", owner, err)
	}

	return images, nil
}

func (r *repositoryImpl) ListCovers(ctx context.Context, entityType model.EntityType, entityIDs []string) ([]model.Image, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".image.ListCovers")
	defer scope.End()

	images := []model.Image{}
	if len(entityIDs) == 0 {
		return images, nil
	}

	query := fmt.Sprintf("SELECT %s FROM %s WHERE entity_type = $1 AND entity_id = ANY($2) AND is_cover", r.columns(), model.TableName)
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	if err := r.db.Read.SelectContext(ctx, &images, query, entityType, pq.Array(entityIDs)); err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return nil, fmt.Errorf("failed to list cover images: %w", err)
	}

	return images, nil
}

// CreateWithPlacement inserts image under a per-owner advisory lock. A non-positive sort
// order is replaced by the next free slot, and a cover image clears any previous cover.
func (r *repositoryImpl) CreateWithPlacement(ctx context.Context, image model.Image) (model.Image, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".image.CreateWithPlacement")
	defer scope.End()

	err := r.db.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		if err := lockOwner(ctx, tx, image.Owner()); err != nil {
			return err
		}

		if image.SortOrder <= 0 {
			if err := tx.GetContext(ctx, &image.SortOrder, queryNextSortOrder, image.EntityType, image.EntityID); err != nil {
				return fmt.Errorf("failed to allocate sort order: %w", err)
			}
		}

		if image.IsCover {
			if _, err := tx.ExecContext(ctx, queryClearCover, image.EntityType, image.EntityID, image.ModifiedAt, image.ModifiedBy); err != nil {
				return fmt.Errorf("failed to clear previous cover: %w", err)
			}
		}

		return r.InsertTx(ctx, tx, image)
	})
	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return image, err
	}

	return image, nil
}

// SetCover clears the owner's current cover and marks id as cover in one transaction.
func (r *repositoryImpl) SetCover(ctx context.Context, owner model.Owner, id, user string) error {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".image.SetCover")
	defer scope.End()

	now := timezone.Now()

	err := r.db.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		if err := lockOwner(ctx, tx, owner); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, queryClearCover, owner.Type, owner.ID, now, user); err != nil {
			return fmt.Errorf("failed to clear previous cover: %w", err)
		}

		result, err := tx.ExecContext(ctx, querySetCover, id, owner.Type, owner.ID, now, user)
		if err != nil {
			return fmt.Errorf("failed to set cover: %w", err)
		}

		if affected, _ := result.RowsAffected(); affected == 0 {
			return ErrImageNotOwned
		}

		return nil
	})
	if err != nil && !errors.Is(err, ErrImageNotOwned) {
		logger.ErrorWithStack(err)
		scope.TraceError(err)
	}

	return err
}

func (r *repositoryImpl) DeleteByOwnersTx(ctx context.Context, tx *sqlx.Tx, entityType model.EntityType, entityIDs []string) ([]model.Image, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".image.DeleteByOwnersTx")
	defer scope.End()

	images := []model.Image{}
	if len(entityIDs) == 0 {
		return images, nil
	}

	query := fmt.Sprintf("DELETE FROM %s WHERE entity_type = $1 AND entity_id = ANY($2) RETURNING %s", model.TableName, r.columns())
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	if err := tx.SelectContext(ctx, &images, query, entityType, pq.Array(entityIDs)); err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return nil, fmt.Errorf("failed to delete images of %s: %w", entityType, err)
	}

	return images, nil
}

func lockOwner(ctx context.Context, tx *sqlx.Tx, owner model.Owner) error {
	if _, err := tx.ExecContext(ctx, queryLockOwner, owner.String()); err != nil {
		return fmt.Errorf("failed to lock %s: %w", owner, err)
	}

	return nil
}

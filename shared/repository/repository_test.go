package repository

import (
	"context"
	"testing"

	"lodge/infras/otel/mocks"
	"lodge/infras/postgres"
	"lodge/shared/dto"
	"lodge/shared/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type listingRow struct {
	ID        string `db:"id"`
	Name      string `db:"name"`
	OwnerName string `column:"name" db:"owner_name" table:"owners"`
	Ignored   string
	Skipped   string `db:"-"`
	model.Metadata
}

func (listingRow) GetJoinQuery() string {
	return "LEFT JOIN owners ON owners.id = properties.owner_id"
}

func TestNewRepository(t *testing.T) {
	repo := NewRepository[listingRow]("property", "properties", "id", nil, mocks.NewOtel())

	assert.Equal(t, []string{"id", "name", "created_at", "modified_at", "created_by", "modified_by"}, repo.InsertColumns)
	assert.Equal(t, "LEFT JOIN owners ON owners.id = properties.owner_id", repo.join)
	assert.Equal(t,
		"properties.id, properties.name, owners.name AS owner_name, properties.created_at, properties.modified_at, properties.created_by, properties.modified_by",
		repo.selectList(nil))
}

func TestRepository_selectList(t *testing.T) {
	repo := NewRepository[listingRow]("property", "properties", "id", nil, mocks.NewOtel())

	assert.Equal(t, "properties.id, properties.modified_at", repo.selectList([]string{"id", "modified_at"}))
}

func TestRepository_BuildWhereClause(t *testing.T) {
	repo := NewRepository[listingRow]("property", "properties", "id", nil, mocks.NewOtel())

	where, args := repo.BuildWhereClause(dto.FilterGroup{})
	assert.Empty(t, where)
	assert.Empty(t, args)

	filter := dto.FilterGroup{}
	filter.AppendIfPresent("status", dto.FilterOperatorEq, "active", "properties")

	where, args = repo.BuildWhereClause(filter)
	assert.Contains(t, where, "WHERE")
	assert.Contains(t, where, "properties.status")
	assert.Equal(t, "active", args["status"])
}

func TestRepository_RequiresFilter(t *testing.T) {
	repo := NewRepository[listingRow]("property", "properties", "id", &postgres.Connection{}, mocks.NewOtel())
	ctx := context.Background()

	_, err := repo.Exist(ctx, dto.FilterGroup{})
	require.ErrorIs(t, err, errRequiredFilter)

	require.ErrorIs(t, repo.Delete(ctx, dto.FilterGroup{}), errRequiredFilter)
	require.ErrorIs(t, repo.Update(ctx, map[string]any{"name": "x"}, dto.FilterGroup{}), errRequiredFilter)
	require.ErrorIs(t, repo.Update(ctx, nil, dto.FilterGroup{}), errEmptyUpdate)
}

package dto_test

import (
	"net/http/httptest"
	"testing"
	"time"

	"lodge/shared/constant"
	"lodge/shared/dto"
	"lodge/shared/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetadata_FromModel(t *testing.T) {
	created := time.Date(2024, 1, 3, 9, 0, 0, 0, time.UTC)

	var metadata dto.Metadata
	metadata.FromModel(model.Metadata{
		CreatedAt:  created,
		ModifiedAt: created.Add(time.Hour),
		CreatedBy:  "admin-1",
		ModifiedBy: "admin-2",
	})

	assert.NotEmpty(t, metadata.CreatedAt)
	assert.NotEqual(t, metadata.CreatedAt, metadata.ModifiedAt)
	assert.Equal(t, "admin-1", metadata.CreatedBy)
	assert.Equal(t, "admin-2", metadata.ModifiedBy)
}

func TestQueryParams_FromRequest(t *testing.T) {
	tests := []struct {
		name         string
		query        string
		withDefaults bool
		expected     dto.QueryParams
	}{
		{
			name:     "all parameters",
			query:    "page=2&limit=20&sort_by=name&sort_dir=asc",
			expected: dto.QueryParams{Page: 2, Limit: 20, SortBy: "name", SortDir: dto.SortDirAsc},
		},
		{
			name:     "nothing without defaults",
			expected: dto.QueryParams{},
		},
		{
			name:         "defaults",
			withDefaults: true,
			expected:     dto.QueryParams{Page: constant.DefaultValuePage, Limit: constant.DefaultValueLimit},
		},
		{
			name:         "malformed numbers fall back",
			query:        "page=first&limit=-5",
			withDefaults: true,
			expected:     dto.QueryParams{Page: constant.DefaultValuePage, Limit: constant.DefaultValueLimit},
		},
		{
			name:     "limit is capped",
			query:    "limit=5000",
			expected: dto.QueryParams{Limit: constant.MaxValueLimit},
		},
		{
			name:     "unknown direction ignored",
			query:    "sort_by=rating&sort_dir=sideways",
			expected: dto.QueryParams{SortBy: "rating"},
		},
		{
			name:         "sort column gets default direction",
			query:        "sort_by=rating",
			withDefaults: true,
			expected: dto.QueryParams{
				Page: constant.DefaultValuePage, Limit: constant.DefaultValueLimit,
				SortBy: "rating", SortDir: constant.DefaultValueSortDir,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/v1/properties?"+tt.query, nil)

			var params dto.QueryParams
			params.FromRequest(req, tt.withDefaults)

			assert.Equal(t, tt.expected, params)
		})
	}
}

func TestQueryParams_AllowSortBy(t *testing.T) {
	tests := []struct {
		name     string
		sortBy   string
		expected string
	}{
		{name: "allowed column kept", sortBy: "name", expected: "name"},
		{name: "unknown column replaced", sortBy: "name; DROP TABLE users", expected: constant.DefaultValueSortBy},
		{name: "empty stays empty", sortBy: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := dto.QueryParams{SortBy: tt.sortBy}
			params.AllowSortBy("name", "created_at")

			assert.Equal(t, tt.expected, params.SortBy)
		})
	}
}

func TestFilterGroup_AppendIfPresent(t *testing.T) {
	group := dto.FilterGroup{Operator: dto.FilterGroupOperatorAnd}

	group.AppendIfPresent("email", dto.FilterOperatorEq, "", "users")
	group.AppendIfPresent("role", dto.FilterOperatorEq, "admin", "users")
	group.AppendIfPresent("full_name", dto.FilterOperatorLike, "ann", "users")

	require.Len(t, group.Filters, 2)

	clause, args := group.GetWhereClause()
	assert.Equal(t, "admin", args["role"])
	assert.Equal(t, "%ann%", args["full_name"])
	assert.Contains(t, clause, " AND ")
	assert.NotContains(t, clause, "email")
}

func TestFilterGroup_Nested(t *testing.T) {
	search := dto.FilterGroup{Operator: dto.FilterGroupOperatorOr}
	search.AppendIfPresent("name", dto.FilterOperatorLike, "pine", "properties")
	search.AppendIfPresent("city", dto.FilterOperatorLike, "pine", "properties")

	group := dto.FilterGroup{Operator: dto.FilterGroupOperatorAnd}
	group.AppendIfPresent("status", dto.FilterOperatorEq, "active", "properties")
	group.Filters = append(group.Filters, search)

	clause, _ := group.GetWhereClause()
	assert.Contains(t, clause, " OR ")
	assert.Contains(t, clause, " AND ")
}

func TestFilter_GetWhereClause(t *testing.T) {
	tests := []struct {
		name     string
		filter   dto.Filter
		clause   string
		expected map[string]any
	}{
		{
			name:     "eq",
			filter:   dto.Filter{Field: "status", Operator: dto.FilterOperatorEq, Value: "active", Table: "properties"},
			clause:   "properties.status = :status",
			expected: map[string]any{"status": "active"},
		},
		{
			name:     "greater or equal with arg name",
			filter:   dto.Filter{ArgName: "min_guests", Field: "max_guests", Operator: dto.FilterOperatorGreaterEq, Value: 4},
			clause:   "max_guests >= :min_guests",
			expected: map[string]any{"min_guests": 4},
		},
		{
			name:     "like",
			filter:   dto.Filter{Field: "title", Operator: dto.FilterOperatorLike, Value: "fjord"},
			clause:   "LOWER(title) LIKE LOWER(:title)",
			expected: map[string]any{"title": "%fjord%"},
		},
		{
			name:     "in slice",
			filter:   dto.Filter{Field: "type", Operator: dto.FilterOperatorIn, Value: []string{"cabin", "loft"}},
			clause:   "type IN (:type_0, :type_1)",
			expected: map[string]any{"type_0": "cabin", "type_1": "loft"},
		},
		{
			name:     "in scalar",
			filter:   dto.Filter{Field: "type", Operator: dto.FilterOperatorIn, Value: "villa"},
			clause:   "type = :type",
			expected: map[string]any{"type": "villa"},
		},
		{
			name:     "in empty",
			filter:   dto.Filter{Field: "type", Operator: dto.FilterOperatorIn, Value: []string{}},
			clause:   "FALSE",
			expected: map[string]any{},
		},
		{
			name:     "is null",
			filter:   dto.Filter{Field: "published_at", Operator: dto.FilterIsNull, Table: "articles"},
			clause:   "articles.published_at IS NULL",
			expected: map[string]any{},
		},
		{
			name:     "unknown operator",
			filter:   dto.Filter{Field: "x", Operator: "raw", Value: "1=1"},
			clause:   "",
			expected: map[string]any{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clause, args := tt.filter.GetWhereClause()

			assert.Equal(t, tt.clause, clause)
			assert.Equal(t, tt.expected, args)
		})
	}
}

func TestNewMetadata(t *testing.T) {
	at := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	meta := model.NewMetadata("owner-1", at)

	assert.Equal(t, model.Metadata{CreatedAt: at, ModifiedAt: at, CreatedBy: "owner-1", ModifiedBy: "owner-1"}, meta)
}

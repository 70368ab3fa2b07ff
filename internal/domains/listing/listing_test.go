package listing_test

import (
	"math"
	"net/url"
	"slices"
	"testing"
	"time"

	"lodge/internal/domains/listing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(props []listing.Property) []string {
	res := make([]string, len(props))
	for i, p := range props {
		res[i] = p.Name
	}

	return res
}

func ptr[T any](v T) *T {
	return &v
}

func catalog() []listing.Property {
	return []listing.Property{
		{
			ID: "1", Name: "Villa A", City: "Ubud", Region: "Bali", Type: "villa", Status: "active",
			MaxGuests: 6, Amenities: []string{"wifi", "pool"}, Rating: 4.2, Priority: 1,
			Rooms: []listing.Room{{ID: "a1", PricePerNight: 500}, {ID: "a2", PricePerNight: 700}},
		},
		{
			ID: "2", Name: "Villa B", City: "Canggu", Region: "Bali", Type: "villa", Status: "active",
			MaxGuests: 4, Amenities: []string{"wifi"}, Rating: 4.8, Priority: 3, Featured: true,
			Rooms: []listing.Room{{ID: "b1", PricePerNight: 300}},
		},
		{
			ID: "3", Name: "Pine Cabin", City: "Lembang", Region: "West Java", Type: "cabin", Status: "draft",
			MaxGuests: 2, Amenities: []string{"fireplace", "wifi", "pool"}, Rating: 3.9, Priority: 2,
		},
	}
}

func TestSearchProperties_Sort(t *testing.T) {
	tests := []struct {
		name string
		sort listing.SortKey
		want []string
	}{
		{name: "default priority", want: []string{"Villa B", "Pine Cabin", "Villa A"}},
		{name: "price low", sort: listing.SortPriceLow, want: []string{"Pine Cabin", "Villa B", "Villa A"}},
		{name: "price high", sort: listing.SortPriceHigh, want: []string{"Villa A", "Villa B", "Pine Cabin"}},
		{name: "rating", sort: listing.SortRating, want: []string{"Villa B", "Villa A", "Pine Cabin"}},
		{name: "name", sort: listing.SortName, want: []string{"Pine Cabin", "Villa A", "Villa B"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := listing.SearchProperties(catalog(), listing.PropertyCriteria{SortBy: tt.sort})

			assert.Equal(t, tt.want, names(res.Items))
			assert.Equal(t, 3, res.TotalCount)
		})
	}
}

func TestSearchProperties_PriceLowPutsCheaperVillaFirst(t *testing.T) {
	res := listing.SearchProperties(catalog(), listing.PropertyCriteria{Region: "Bali", SortBy: listing.SortPriceLow})

	assert.Equal(t, []string{"Villa B", "Villa A"}, names(res.Items))
}

func TestSearchProperties_PriorityIgnoresInsertionOrder(t *testing.T) {
	props := []listing.Property{
		{Name: "low", Priority: 0},
		{Name: "tie-first", Priority: 5},
		{Name: "high", Priority: 9},
		{Name: "tie-second", Priority: 5},
	}

	res := listing.SearchProperties(props, listing.PropertyCriteria{})

	assert.Equal(t, []string{"high", "tie-first", "tie-second", "low"}, names(res.Items))
}

func TestSearchProperties_PriorityExtremes(t *testing.T) {
	props := []listing.Property{
		{Name: "floor", Priority: math.MinInt},
		{Name: "ceiling", Priority: math.MaxInt},
		{Name: "zero", Priority: 0},
		{Name: "negative", Priority: -1},
	}

	res := listing.SearchProperties(props, listing.PropertyCriteria{})

	assert.Equal(t, []string{"ceiling", "zero", "negative", "floor"}, names(res.Items))
}

func TestSearchProperties_NameUsesCollation(t *testing.T) {
	props := []listing.Property{{Name: "Zeta"}, {Name: "Écrin"}, {Name: "alpha"}}

	res := listing.SearchProperties(props, listing.PropertyCriteria{SortBy: listing.SortName})

	assert.Equal(t, []string{"alpha", "Écrin", "Zeta"}, names(res.Items))
}

func TestSearchProperties_Filters(t *testing.T) {
	tests := []struct {
		name     string
		criteria listing.PropertyCriteria
		want     []string
	}{
		{
			name:     "query matches city case-insensitively",
			criteria: listing.PropertyCriteria{Query: "lemBANG"},
			want:     []string{"Pine Cabin"},
		},
		{
			name:     "query is a substring match",
			criteria: listing.PropertyCriteria{Query: "illa"},
			want:     []string{"Villa B", "Villa A"},
		},
		{
			name:     "amenities are conjunctive",
			criteria: listing.PropertyCriteria{Amenities: []string{"wifi", "pool"}},
			want:     []string{"Pine Cabin", "Villa A"},
		},
		{
			name:     "amenities are case sensitive",
			criteria: listing.PropertyCriteria{Amenities: []string{"WiFi"}},
			want:     []string{},
		},
		{
			name:     "amenities are whitespace sensitive",
			criteria: listing.PropertyCriteria{Amenities: []string{"wifi "}},
			want:     []string{},
		},
		{
			name:     "guests against max guests",
			criteria: listing.PropertyCriteria{Guests: ptr(5)},
			want:     []string{"Villa A"},
		},
		{
			name:     "zero-room property passes a zero price floor",
			criteria: listing.PropertyCriteria{MinPrice: ptr(0.0)},
			want:     []string{"Villa B", "Pine Cabin", "Villa A"},
		},
		{
			name:     "zero-room property fails a positive price floor",
			criteria: listing.PropertyCriteria{MinPrice: ptr(1.0)},
			want:     []string{"Villa B", "Villa A"},
		},
		{
			name:     "price band uses the cheapest room",
			criteria: listing.PropertyCriteria{MinPrice: ptr(400.0), MaxPrice: ptr(600.0)},
			want:     []string{"Villa A"},
		},
		{
			name:     "status and type",
			criteria: listing.PropertyCriteria{Status: "active", Type: "villa"},
			want:     []string{"Villa B", "Villa A"},
		},
		{
			name:     "featured only",
			criteria: listing.PropertyCriteria{FeaturedOnly: true},
			want:     []string{"Villa B"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := listing.SearchProperties(catalog(), tt.criteria)

			assert.Equal(t, tt.want, names(res.Items))
			assert.Equal(t, len(tt.want), res.TotalCount)
		})
	}
}

func TestSearchProperties_Pagination(t *testing.T) {
	tests := []struct {
		name        string
		page, limit int
		want        []string
	}{
		{name: "first page", page: 1, limit: 2, want: []string{"Villa B", "Pine Cabin"}},
		{name: "last partial page", page: 2, limit: 2, want: []string{"Villa A"}},
		{name: "past the end", page: 3, limit: 2, want: []string{}},
		{name: "no limit", page: 2, want: []string{"Villa B", "Pine Cabin", "Villa A"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := listing.SearchProperties(catalog(), listing.PropertyCriteria{Page: tt.page, Limit: tt.limit})

			assert.Equal(t, tt.want, names(res.Items))
			assert.Equal(t, 3, res.TotalCount)
		})
	}
}

func TestSearchProperties_DoesNotMutateInput(t *testing.T) {
	props := catalog()
	before := slices.Clone(props)

	listing.SearchProperties(props, listing.PropertyCriteria{SortBy: listing.SortPriceLow})
	listing.SearchProperties(props, listing.PropertyCriteria{SortBy: listing.SortName, Amenities: []string{"wifi"}})

	assert.Equal(t, before, props)
}

func TestMinPrice(t *testing.T) {
	assert.Zero(t, listing.Property{}.MinPrice())
	assert.Equal(t, 120.0, listing.Property{Rooms: []listing.Room{{PricePerNight: 300}, {PricePerNight: 120}}}.MinPrice())
}

func articles() []listing.Article {
	day := func(d int) time.Time { return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC) }

	return []listing.Article{
		{ID: "1", Title: "Trails of the North", Tags: []string{"north", "hiking"}, Published: true, PublishedAt: ptr(day(3)), CreatedAt: day(1)},
		{ID: "2", Title: "Beach Villas", Excerpt: "Northern coastline", Tags: []string{"beach"}, Published: true, PublishedAt: ptr(day(10)), CreatedAt: day(2)},
		{ID: "3", Title: "Cabin Packing List", Tags: []string{"guides"}, CreatedAt: day(5)},
	}
}

func ids(items []listing.Article) []string {
	res := make([]string, len(items))
	for i, a := range items {
		res[i] = a.ID
	}

	return res
}

func TestSearchArticles(t *testing.T) {
	tests := []struct {
		name     string
		criteria listing.ArticleCriteria
		want     []string
	}{
		{name: "newest first with created_at fallback", want: []string{"2", "3", "1"}},
		{name: "tag is exact membership", criteria: listing.ArticleCriteria{Tag: "north"}, want: []string{"1"}},
		{name: "query spans title excerpt and tags", criteria: listing.ArticleCriteria{Query: "NORTH"}, want: []string{"2", "1"}},
		{name: "published only", criteria: listing.ArticleCriteria{Published: ptr(true)}, want: []string{"2", "1"}},
		{name: "drafts only", criteria: listing.ArticleCriteria{Published: ptr(false)}, want: []string{"3"}},
		{name: "paged", criteria: listing.ArticleCriteria{Page: 2, Limit: 1}, want: []string{"3"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := listing.SearchArticles(articles(), tt.criteria)

			assert.Equal(t, tt.want, ids(res.Items))
		})
	}
}

func TestParsePropertyCriteria(t *testing.T) {
	values := url.Values{
		"q":         {"  bali "},
		"guests":    {"four"},
		"min_price": {"abc"},
		"max_price": {"750.5"},
		"amenities": {"wifi", "", "hot tub"},
		"sort":      {"price-low"},
		"featured":  {"true"},
		"page":      {"2"},
		"limit":     {"-3"},
	}

	c := listing.ParsePropertyCriteria(values)

	assert.Equal(t, "bali", c.Query)
	assert.Nil(t, c.Guests)
	assert.Nil(t, c.MinPrice)
	require.NotNil(t, c.MaxPrice)
	assert.Equal(t, 750.5, *c.MaxPrice)
	assert.Equal(t, []string{"wifi", "hot tub"}, c.Amenities)
	assert.Equal(t, listing.SortPriceLow, c.SortBy)
	assert.True(t, c.FeaturedOnly)
	assert.Equal(t, 2, c.Page)
	assert.Zero(t, c.Limit)
}

func TestParsePropertyCriteria_UnknownSortFallsBackToPriority(t *testing.T) {
	c := listing.ParsePropertyCriteria(url.Values{"sort": {"cheapest"}, "guests": {"3"}})

	assert.Equal(t, listing.SortPriority, c.SortBy)
	require.NotNil(t, c.Guests)
	assert.Equal(t, 3, *c.Guests)
}

func TestParseArticleCriteria(t *testing.T) {
	c := listing.ParseArticleCriteria(url.Values{"tag": {"north"}, "published": {"maybe"}})

	assert.Equal(t, "north", c.Tag)
	assert.Nil(t, c.Published)
}

// Package listing filters, ranks and paginates the public catalog in memory.
// Every function here is pure: inputs are never mutated and results are fresh slices.
package listing

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

type SortKey string

const (
	SortPriority  SortKey = "priority"
	SortName      SortKey = "name"
	SortPriceLow  SortKey = "price-low"
	SortPriceHigh SortKey = "price-high"
	SortRating    SortKey = "rating"
)

type Room struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Capacity      int     `json:"capacity"`
	PricePerNight float64 `json:"price_per_night"`
}

type Property struct {
	ID          string   `json:"id"`
	Slug        string   `json:"slug"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Type        string   `json:"type"`
	City        string   `json:"city"`
	Region      string   `json:"region"`
	Status      string   `json:"status"`
	MaxGuests   int      `json:"max_guests"`
	Amenities   []string `json:"amenities"`
	Rating      float64  `json:"rating"`
	Featured    bool     `json:"featured"`
	Priority    int      `json:"priority"`
	CoverURL    string   `json:"cover_url,omitempty"`
	Rooms       []Room   `json:"rooms"`
}

// MinPrice is the cheapest nightly room price. A property without rooms costs 0.
func (p Property) MinPrice() float64 {
	if len(p.Rooms) == 0 {
		return 0
	}

	lowest := p.Rooms[0].PricePerNight
	for _, room := range p.Rooms[1:] {
		lowest = min(lowest, room.PricePerNight)
	}

	return lowest
}

type Article struct {
	ID            string     `json:"id"`
	Slug          string     `json:"slug"`
	Title         string     `json:"title"`
	Excerpt       string     `json:"excerpt"`
	FeaturedImage string     `json:"featured_image"`
	Tags          []string   `json:"tags"`
	Published     bool       `json:"published"`
	PublishedAt   *time.Time `json:"published_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// SortTime is the publication time, or the creation time for never-published drafts.
func (a Article) SortTime() time.Time {
	if a.PublishedAt != nil {
		return *a.PublishedAt
	}

	return a.CreatedAt
}

type Result[T any] struct {
	Items      []T `json:"items"`
	TotalCount int `json:"total_count"`
}

// PropertyCriteria holds optional constraints; zero values and nil pointers mean "no constraint".
type PropertyCriteria struct {
	Query        string
	Region       string
	Type         string
	Status       string
	FeaturedOnly bool
	Guests       *int
	MinPrice     *float64
	MaxPrice     *float64
	Amenities    []string
	SortBy       SortKey
	Locale       language.Tag
	Page         int
	Limit        int
}

type ArticleCriteria struct {
	Query     string
	Tag       string
	Published *bool
	Page      int
	Limit     int
}

func SearchProperties(props []Property, c PropertyCriteria) Result[Property] {
	query := strings.ToLower(c.Query)

	matched := make([]Property, 0, len(props))

	for _, p := range props {
		if c.matches(p, query) {
			matched = append(matched, p)
		}
	}

	sortProperties(matched, c)

	return Result[Property]{
		Items:      paginate(matched, c.Page, c.Limit),
		TotalCount: len(matched),
	}
}

func (c PropertyCriteria) matches(p Property, query string) bool {
	if query != "" && !containsFold(query, p.Name, p.City, p.Region) {
		return false
	}

	if c.Region != "" && p.Region != c.Region {
		return false
	}

	if c.Type != "" && p.Type != c.Type {
		return false
	}

	if c.Status != "" && p.Status != c.Status {
		return false
	}

	if c.FeaturedOnly && !p.Featured {
		return false
	}

	if c.Guests != nil && p.MaxGuests < *c.Guests {
		return false
	}

	price := p.MinPrice()

	if c.MinPrice != nil && price < *c.MinPrice {
		return false
	}

	if c.MaxPrice != nil && price > *c.MaxPrice {
		return false
	}

	for _, amenity := range c.Amenities {
		if !slices.Contains(p.Amenities, amenity) {
			return false
		}
	}

	return true
}

func sortProperties(props []Property, c PropertyCriteria) {
	switch c.SortBy {
	case SortName:
		tag := c.Locale
		if tag == language.Und {
			tag = language.English
		}

		collator := collate.New(tag, collate.IgnoreCase)

		slices.SortStableFunc(props, func(a, b Property) int {
			return collator.CompareString(a.Name, b.Name)
		})
	case SortPriceLow:
		slices.SortStableFunc(props, func(a, b Property) int {
			return cmp.Compare(a.MinPrice(), b.MinPrice())
		})
	case SortPriceHigh:
		slices.SortStableFunc(props, func(a, b Property) int {
			return cmp.Compare(b.MinPrice(), a.MinPrice())
		})
	case SortRating:
		slices.SortStableFunc(props, func(a, b Property) int {
			return cmp.Compare(b.Rating, a.Rating)
		})
	default:
		slices.SortStableFunc(props, func(a, b Property) int {
			return cmp.Compare(b.Priority, a.Priority)
		})
	}
}

func SearchArticles(articles []Article, c ArticleCriteria) Result[Article] {
	query := strings.ToLower(c.Query)

	matched := make([]Article, 0, len(articles))

	for _, a := range articles {
		if query != "" && !containsFold(query, append([]string{a.Title, a.Excerpt}, a.Tags...)...) {
			continue
		}

		if c.Tag != "" && !slices.Contains(a.Tags, c.Tag) {
			continue
		}

		if c.Published != nil && a.Published != *c.Published {
			continue
		}

		matched = append(matched, a)
	}

	slices.SortStableFunc(matched, func(a, b Article) int {
		return b.SortTime().Compare(a.SortTime())
	})

	return Result[Article]{
		Items:      paginate(matched, c.Page, c.Limit),
		TotalCount: len(matched),
	}
}

// paginate slices [(page-1)*limit, page*limit). Without both bounds everything is returned.
func paginate[T any](items []T, page, limit int) []T {
	if page <= 0 || limit <= 0 {
		return items
	}

	start := (page - 1) * limit
	if start >= len(items) {
		return []T{}
	}

	return items[start:min(start+limit, len(items))]
}

func containsFold(lowerQuery string, fields ...string) bool {
	for _, field := range fields {
		if strings.Contains(strings.ToLower(field), lowerQuery) {
			return true
		}
	}

	return false
}

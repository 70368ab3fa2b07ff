package model

import (
	"time"

	"lodge/shared/model"

	"github.com/lib/pq"
)

const (
	TableName  = "articles"
	EntityName = "article"

	FieldID          = "id"
	FieldSlug        = "slug"
	FieldTitle       = "title"
	FieldPublished   = "published"
	FieldPublishedAt = "published_at"
	FieldAuthorID    = "author_id"
)

type Article struct {
	ID            string         `db:"id"`
	Slug          string         `db:"slug"`
	Title         string         `db:"title"`
	Content       string         `db:"content"`
	Excerpt       string         `db:"excerpt"`
	FeaturedImage string         `db:"featured_image"`
	Tags          pq.StringArray `db:"tags"`
	Published     bool           `db:"published"`
	PublishedAt   *time.Time     `db:"published_at"`
	AuthorID      *string        `db:"author_id"`
	model.Metadata
}

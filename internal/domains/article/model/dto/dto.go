package dto

import (
	"time"

	"lodge/internal/domains/article/model"
	"lodge/shared"
	"lodge/shared/constant"
	gDto "lodge/shared/dto"
	gModel "lodge/shared/model"
	"lodge/shared/timezone"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type CreateArticleRequest struct {
	Title         string   `json:"title"          validate:"required,max=200"`
	Slug          string   `json:"slug"           validate:"omitempty,slug,max=150"`
	Content       string   `json:"content"`
	Excerpt       string   `json:"excerpt"`
	FeaturedImage string   `json:"featured_image" validate:"omitempty,url,max=500"`
	Tags          []string `json:"tags"           validate:"omitempty,dive,required,max=50"`
	Published     bool     `json:"published"`
}

func (c *CreateArticleRequest) ToModel(user, slug string) model.Article {
	now := timezone.Now()

	tags := c.Tags
	if tags == nil {
		tags = []string{}
	}

	article := model.Article{
		ID:            uuid.NewString(),
		Slug:          slug,
		Title:         c.Title,
		Content:       c.Content,
		Excerpt:       c.Excerpt,
		FeaturedImage: c.FeaturedImage,
		Tags:          pq.StringArray(tags),
		Published:     c.Published,
		Metadata:      gModel.NewMetadata(user, now),
	}

	if user != constant.Empty {
		article.AuthorID = &user
	}

	if c.Published {
		article.PublishedAt = &now
	}

	return article
}

type UpdateArticleRequest struct {
	Title         *string   `db:"title"          json:"title"          validate:"omitempty,min=1,max=200"`
	Slug          *string   `db:"slug"           json:"slug"           validate:"omitempty,slug,max=150"`
	Content       *string   `db:"content"        json:"content"`
	Excerpt       *string   `db:"excerpt"        json:"excerpt"`
	FeaturedImage *string   `db:"featured_image" json:"featured_image" validate:"omitempty,url,max=500"`
	Tags          *[]string `db:"tags"           json:"tags"           validate:"omitempty,dive,required,max=50"`
	Published     *bool     `db:"published"      json:"published"`
}

type ArticleResponse struct {
	ID            string   `json:"id"`
	Slug          string   `json:"slug"`
	Title         string   `json:"title"`
	Content       string   `json:"content"`
	Excerpt       string   `json:"excerpt"`
	FeaturedImage string   `json:"featured_image"`
	Tags          []string `json:"tags"`
	Published     bool     `json:"published"`
	PublishedAt   *string  `json:"published_at"`
	AuthorID      *string  `json:"author_id"`
	gDto.Metadata
}

func (r *ArticleResponse) FromModel(model model.Article) {
	r.ID = model.ID
	r.Slug = model.Slug
	r.Title = model.Title
	r.Content = model.Content
	r.Excerpt = model.Excerpt
	r.FeaturedImage = model.FeaturedImage
	r.Tags = append([]string{}, model.Tags...)
	r.Published = model.Published
	r.PublishedAt = formatTime(model.PublishedAt)
	r.AuthorID = model.AuthorID
	r.Metadata.FromModel(model.Metadata)
}

type GetArticlesResponse struct {
	Articles  []ArticleResponse `json:"articles"`
	TotalPage int               `json:"total_page"`
	TotalData int               `json:"total_data"`
}

func (r *GetArticlesResponse) FromModels(models []model.Article, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Articles = make([]ArticleResponse, len(models))
	for i, mod := range models {
		r.Articles[i].FromModel(mod)
	}
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}

	res := timezone.Format(*t, constant.DateFormat)

	return &res
}

package newsapi

import (
	"time"

	"LunaroNews/internal/domain"
)

// Response is the envelope of /v2/everything.
type Response struct {
	Status       string    `json:"status"`
	TotalResults int       `json:"totalResults"`
	Articles     []Article `json:"articles"`
	Code         string    `json:"code,omitempty"`
	Message      string    `json:"message,omitempty"`
}

// Source identifies the publisher of an article.
type Source struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Article is a single NewsAPI result.
type Article struct {
	Source      Source `json:"source"`
	Author      string `json:"author"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	URLToImage  string `json:"urlToImage"`
	PublishedAt string `json:"publishedAt"`
	Content     string `json:"content"`
}

func (a Article) toDomain() domain.RawArticle {
	// Unparseable timestamps stay zero.
	published, _ := time.Parse(time.RFC3339, a.PublishedAt)
	return domain.RawArticle{
		Title:       a.Title,
		Description: a.Description,
		Content:     a.Content,
		URL:         a.URL,
		ImageURL:    a.URLToImage,
		PublishedAt: published,
		SourceName:  a.Source.Name,
		Author:      a.Author,
	}
}

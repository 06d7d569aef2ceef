package domain

import "time"

// RawArticle is a news item as returned by the news source.
type RawArticle struct {
	Title       string
	Description string
	Content     string
	URL         string
	ImageURL    string
	PublishedAt time.Time
	SourceName  string
	Author      string
}

// Persona is the synthesized byline attached to a processed article.
type Persona struct {
	Name string
	Bio  string
}

// SEO holds search metadata generated for an article.
type SEO struct {
	Title       string
	Description string
	Keywords    []string
}

// ProcessedArticle is the localized, enriched article ready for publishing.
type ProcessedArticle struct {
	Raw RawArticle

	ID                    string
	Slug                  string
	TranslatedTitle       string
	TranslatedDescription string
	TranslatedContent     string
	ContentHTML           string
	Summary               string
	Category              string
	Tags                  []string
	Author                Persona
	ReadingTime           int
	SEO                   SEO

	// WordPressID is zero until the article is published.
	WordPressID int
}

// Published reports whether the article has a content store id attached.
func (a ProcessedArticle) Published() bool {
	return a.WordPressID > 0
}

// WithWordPressID returns a copy of the article bound to a stored post.
func (a ProcessedArticle) WithWordPressID(id int) ProcessedArticle {
	a.WordPressID = id
	return a
}

package domain

// PostStatus mirrors WordPress post statuses used by the pipeline.
type PostStatus string

const (
	StatusDraft   PostStatus = "draft"
	StatusPublish PostStatus = "publish"
	StatusPending PostStatus = "pending"
)

// PostMeta is the metadata bag stored alongside each post so the public
// pages can read enrichment fields back.
type PostMeta struct {
	ReadingTime           int      `json:"reading_time"`
	OriginalTitle         string   `json:"original_title"`
	OriginalContent       string   `json:"original_content"`
	OriginalDescription   string   `json:"original_description"`
	TranslatedTitle       string   `json:"translated_title"`
	TranslatedContent     string   `json:"translated_content"`
	TranslatedDescription string   `json:"translated_description"`
	Summary               string   `json:"summary"`
	SourceName            string   `json:"source_name"`
	SourceURL             string   `json:"source_url"`
	SEOTitle              string   `json:"seo_title"`
	SEODescription        string   `json:"seo_description"`
	SEOKeywords           []string `json:"seo_keywords"`
	Tags                  []string `json:"tags"`
	AuthorName            string   `json:"author_name"`
	AuthorBio             string   `json:"author_bio"`
	PublishedAt           string   `json:"published_at"`
}

// PostDraft is the payload used to create or update a post.
type PostDraft struct {
	Title         string
	Content       string
	Excerpt       string
	Slug          string
	Status        PostStatus
	Categories    []int
	FeaturedMedia int
	Meta          PostMeta
}

// Post is a stored content store entry.
type Post struct {
	ID            int
	Slug          string
	Status        PostStatus
	Title         string
	Content       string
	Excerpt       string
	Link          string
	Categories    []int
	FeaturedMedia int
	Meta          PostMeta
}

// Category is a content store taxonomy term.
type Category struct {
	ID   int
	Name string
	Slug string
}

// Media is an uploaded attachment.
type Media struct {
	ID        int
	SourceURL string
}

package domain

import "time"

// Stage names the pipeline step an item failed in.
type Stage string

const (
	StageTransform Stage = "transform"
	StagePublish   Stage = "publish"
)

// ItemFailure records one skipped article.
type ItemFailure struct {
	Index     int
	SourceURL string
	Title     string
	Stage     Stage
	Err       string
}

// RunReport summarizes one pipeline run for a category.
type RunReport struct {
	Category   string
	Limit      int
	Fetched    int
	Published  []ProcessedArticle
	Failures   []ItemFailure
	StartedAt  time.Time
	FinishedAt time.Time
}

// PublishedCount returns the number of successfully published articles.
func (r RunReport) PublishedCount() int {
	return len(r.Published)
}

// FailedCount returns the number of skipped articles.
func (r RunReport) FailedCount() int {
	return len(r.Failures)
}

// Duration is the wall time of the run.
func (r RunReport) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

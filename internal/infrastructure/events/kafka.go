package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"

	"LunaroNews/internal/config"
	"LunaroNews/internal/domain"
	"LunaroNews/internal/ports"
)

// EventArticlePublished is the type field of every message this sink emits.
const EventArticlePublished = "article.published"

// ArticlePublished is the JSON payload written to Kafka.
type ArticlePublished struct {
	Type        string    `json:"type"`
	ArticleID   string    `json:"articleId"`
	WordPressID int       `json:"wordpressId"`
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Category    string    `json:"category"`
	Tags        []string  `json:"tags"`
	ReadingTime int       `json:"readingTime"`
	SourceURL   string    `json:"sourceUrl"`
	SourceName  string    `json:"sourceName"`
	EmittedAt   time.Time `json:"emittedAt"`
}

// KafkaSink publishes one message per published article, keyed by slug.
type KafkaSink struct {
	producer sarama.SyncProducer
	topic    string
	now      func() time.Time
}

var _ ports.EventSink = (*KafkaSink)(nil)

// NewProducerConfig returns the sarama settings used for the sink.
func NewProducerConfig(cfg config.KafkaConfig) *sarama.Config {
	sc := sarama.NewConfig()
	if cfg.ClientID != "" {
		sc.ClientID = cfg.ClientID
	}
	sc.Producer.RequiredAcks = sarama.WaitForAll
	sc.Producer.Retry.Max = 3
	sc.Producer.Return.Successes = true
	sc.Producer.Return.Errors = true
	return sc
}

// NewSyncProducer dials the configured brokers.
func NewSyncProducer(cfg config.KafkaConfig) (sarama.SyncProducer, error) {
	producer, err := sarama.NewSyncProducer(cfg.Brokers, NewProducerConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}
	return producer, nil
}

// NewKafkaSink wraps a producer for the given topic.
func NewKafkaSink(producer sarama.SyncProducer, topic string) *KafkaSink {
	return &KafkaSink{producer: producer, topic: topic, now: time.Now}
}

// ArticlePublished sends the event synchronously.
func (s *KafkaSink) ArticlePublished(ctx context.Context, article domain.ProcessedArticle) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	payload, err := json.Marshal(ArticlePublished{
		Type:        EventArticlePublished,
		ArticleID:   article.ID,
		WordPressID: article.WordPressID,
		Slug:        article.Slug,
		Title:       article.TranslatedTitle,
		Category:    article.Category,
		Tags:        article.Tags,
		ReadingTime: article.ReadingTime,
		SourceURL:   article.Raw.URL,
		SourceName:  article.Raw.SourceName,
		EmittedAt:   s.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: s.topic,
		Key:   sarama.StringEncoder(article.Slug),
		Value: sarama.ByteEncoder(payload),
		Headers: []sarama.RecordHeader{
			{Key: []byte("type"), Value: []byte(EventArticlePublished)},
		},
	}
	if _, _, err := s.producer.SendMessage(msg); err != nil {
		return fmt.Errorf("send %s event: %w", EventArticlePublished, err)
	}
	return nil
}

// Close flushes and closes the producer.
func (s *KafkaSink) Close() error {
	return s.producer.Close()
}

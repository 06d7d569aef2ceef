package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"LunaroNews/internal/config"
	"LunaroNews/internal/domain"
)

func article() domain.ProcessedArticle {
	return domain.ProcessedArticle{
		Raw:             domain.RawArticle{URL: "https://example.com/a", SourceName: "Wire"},
		ID:              "id-1",
		Slug:            "zaglavie",
		TranslatedTitle: "Заглавие",
		Category:        "SEO",
		Tags:            []string{"SEO", "Google", "оптимизация", "класиране"},
		ReadingTime:     4,
		WordPressID:     42,
	}
}

func TestArticlePublishedSendsEvent(t *testing.T) {
	t.Parallel()

	producer := mocks.NewSyncProducer(t, NewProducerConfig(config.KafkaConfig{ClientID: "test"}))
	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var event ArticlePublished
		if err := json.Unmarshal(val, &event); err != nil {
			return err
		}
		if event.Type != EventArticlePublished || event.WordPressID != 42 || event.Slug != "zaglavie" {
			return errors.New("unexpected event payload")
		}
		return nil
	})

	sink := NewKafkaSink(producer, "lunaro.articles.published")
	sink.now = func() time.Time { return time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC) }

	require.NoError(t, sink.ArticlePublished(context.Background(), article()))
	require.NoError(t, sink.Close())
}

func TestArticlePublishedWrapsProducerErrors(t *testing.T) {
	t.Parallel()

	producer := mocks.NewSyncProducer(t, NewProducerConfig(config.KafkaConfig{}))
	producer.ExpectSendMessageAndFail(sarama.ErrNotLeaderForPartition)

	err := NewKafkaSink(producer, "topic").ArticlePublished(context.Background(), article())
	require.ErrorIs(t, err, sarama.ErrNotLeaderForPartition)
	assert.Contains(t, err.Error(), EventArticlePublished)
	require.NoError(t, producer.Close())
}

func TestArticlePublishedHonoursContext(t *testing.T) {
	t.Parallel()

	producer := mocks.NewSyncProducer(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewKafkaSink(producer, "topic").ArticlePublished(ctx, article())
	assert.ErrorIs(t, err, context.Canceled)
	require.NoError(t, producer.Close())
}

func TestProducerConfig(t *testing.T) {
	t.Parallel()

	sc := NewProducerConfig(config.KafkaConfig{ClientID: "lunaronews"})
	assert.Equal(t, "lunaronews", sc.ClientID)
	assert.True(t, sc.Producer.Return.Successes)
	assert.Equal(t, sarama.WaitForAll, sc.Producer.RequiredAcks)
	assert.NoError(t, sc.Validate())
}

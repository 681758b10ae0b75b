package redis

import (
	"context"
	"encoding/json"
	"log"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"smart-learning-portal/internal/app"
	"smart-learning-portal/internal/domain"
)

const publishedQuizKey = "portal:quiz:published"

// QuizCache keeps the published quiz as a JSON value in Redis so several
// portal instances share one cached copy. On a miss the backing source is
// consulted once (singleflight) and the result written back with a TTL.
type QuizCache struct {
	client *redis.Client
	source app.PublishedQuizSource
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewQuizCache(client *redis.Client, source app.PublishedQuizSource, ttl time.Duration) *QuizCache {
	return &QuizCache{
		client: client,
		source: source,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *QuizCache) Published(ctx context.Context) (domain.Quiz, error) {
	if quiz, ok := c.cached(ctx); ok {
		return quiz, nil
	}

	result, err, _ := c.sf.Do(publishedQuizKey, func() (interface{}, error) {
		// Re-check in case another goroutine filled the key.
		if quiz, ok := c.cached(ctx); ok {
			return quiz, nil
		}

		quiz, err := c.source.Published(ctx)
		if err != nil {
			return domain.Quiz{}, err
		}

		data, err := json.Marshal(quiz)
		if err != nil {
			return domain.Quiz{}, err
		}
		if err := c.client.Set(ctx, publishedQuizKey, data, c.ttlWithJitter()).Err(); err != nil {
			// Cache write failures degrade to source reads.
			log.Printf("redis quiz cache set: %v", err)
		}
		return quiz, nil
	})
	if err != nil {
		return domain.Quiz{}, err
	}
	return result.(domain.Quiz), nil
}

// cached returns the cached quiz when present and well formed. A corrupt
// value is dropped and treated as a miss rather than surfaced.
func (c *QuizCache) cached(ctx context.Context) (domain.Quiz, bool) {
	data, err := c.client.Get(ctx, publishedQuizKey).Bytes()
	if err != nil {
		return domain.Quiz{}, false
	}
	var quiz domain.Quiz
	if err := json.Unmarshal(data, &quiz); err != nil {
		log.Printf("redis quiz cache corrupt, dropping: %v", err)
		_ = c.client.Del(ctx, publishedQuizKey).Err()
		return domain.Quiz{}, false
	}
	return quiz, true
}

func (c *QuizCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}

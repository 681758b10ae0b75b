package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"smart-learning-portal/internal/app"
	"smart-learning-portal/internal/domain"
)

// publishedKey is the singleflight key; there is only one published quiz.
const publishedKey = "published"

// QuizCache caches the published quiz with a TTL so dashboard and attempt
// reads do not hammer the backing store. A newly published quiz therefore
// becomes visible to students within at most one TTL.
type QuizCache struct {
	source app.PublishedQuizSource
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu        sync.RWMutex
	quiz      domain.Quiz
	expiresAt time.Time
}

func NewQuizCache(source app.PublishedQuizSource, ttl time.Duration) *QuizCache {
	return &QuizCache{
		source: source,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *QuizCache) Published(ctx context.Context) (domain.Quiz, error) {
	now := c.clock()

	c.mu.RLock()
	if c.expiresAt.After(now) {
		quiz := c.quiz
		c.mu.RUnlock()
		return quiz, nil
	}
	c.mu.RUnlock()

	result, err, _ := c.sf.Do(publishedKey, func() (interface{}, error) {
		now := c.clock()
		c.mu.RLock()
		if c.expiresAt.After(now) {
			quiz := c.quiz
			c.mu.RUnlock()
			return quiz, nil
		}
		c.mu.RUnlock()

		quiz, err := c.source.Published(ctx)
		if err != nil {
			// Misses are not cached; a publish right after becomes
			// visible immediately.
			return domain.Quiz{}, err
		}

		c.mu.Lock()
		c.quiz = quiz
		c.expiresAt = now.Add(c.ttlWithJitter())
		c.mu.Unlock()
		return quiz, nil
	})
	if err != nil {
		return domain.Quiz{}, err
	}
	return result.(domain.Quiz), nil
}

func (c *QuizCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}

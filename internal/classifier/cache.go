package classifier

import (
	"sync"
	"time"

	"github.com/suqly/category-suggester/internal/domain"
)

// documentCache holds the last successfully fetched full document set.
// The snapshot and its timestamp are read and replaced as one unit.
type documentCache struct {
	mu        sync.RWMutex
	documents []domain.TrainingDocument
	fetchedAt time.Time
}

func (c *documentCache) store(documents []domain.TrainingDocument, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.documents = documents
	c.fetchedAt = now
}

// get returns the snapshot and its age if one exists and is younger than ttl.
func (c *documentCache) get(now time.Time, ttl time.Duration) ([]domain.TrainingDocument, time.Duration, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.documents == nil {
		return nil, 0, false
	}

	age := now.Sub(c.fetchedAt)
	if age >= ttl {
		return nil, 0, false
	}

	return c.documents, age, true
}

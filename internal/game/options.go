package game

import (
	"sync"

	"germanclash/internal/models"
)

// OptionCache remembers the shuffled option order of each exercise so the same
// exercise is always presented the same way within a session
type OptionCache struct {
	mu     sync.Mutex
	orders map[string][]string
}

// NewOptionCache creates an empty cache
func NewOptionCache() *OptionCache {
	return &OptionCache{orders: make(map[string][]string)}
}

// Options returns the shuffled options for an exercise, drawing a new order only
// the first time an exercise id is seen
func (c *OptionCache) Options(ex *models.Exercise) []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	order, ok := c.orders[ex.ID]
	if !ok {
		order = Shuffle(ex.AnswerOptions())
		c.orders[ex.ID] = order
	}
	out := make([]string, len(order))
	copy(out, order)
	return out
}

// Contains reports whether option is offered for the exercise
func (c *OptionCache) Contains(ex *models.Exercise, option string) bool {
	for _, o := range c.Options(ex) {
		if o == option {
			return true
		}
	}
	return false
}

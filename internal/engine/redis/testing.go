package redis

import "github.com/redis/rueidis"

// NewEngineForTest creates an Engine with an injected client (for mocking).
func NewEngineForTest(c rueidis.Client, cfg Config) (*Engine, error) {
	return newEngine(c, cfg)
}

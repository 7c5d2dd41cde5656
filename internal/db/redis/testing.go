package redis

import "github.com/redis/rueidis"

// NewStoreForTest wraps an already built client, typically a rueidis/mock one.
func NewStoreForTest(c rueidis.Client) *Store {
	return &Store{client: c}
}

package question

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultDraftTTL = 10 * time.Minute

// DraftCache keeps validated generated batches so an identical request does
// not hit the generator again.
type DraftCache interface {
	Get(ctx context.Context, req GenerateRequest) ([]Candidate, bool, error)
	Set(ctx context.Context, req GenerateRequest, items []Candidate) error
}

// RedisDraftCache stores drafts as JSON strings with a TTL.
type RedisDraftCache struct {
	client *redis.Client
	ttl    time.Duration
}

var _ DraftCache = (*RedisDraftCache)(nil)

func NewRedisDraftCache(client *redis.Client, ttl time.Duration) *RedisDraftCache {
	if ttl <= 0 {
		ttl = defaultDraftTTL
	}
	return &RedisDraftCache{client: client, ttl: ttl}
}

func draftKey(req GenerateRequest) string {
	return strings.Join([]string{
		"questiondraft",
		req.Model,
		req.Language,
		fmt.Sprint(int(req.Type)),
		fmt.Sprint(req.Count),
		strings.ToLower(req.Keyword),
	}, ":")
}

func (c *RedisDraftCache) Get(ctx context.Context, req GenerateRequest) ([]Candidate, bool, error) {
	data, err := c.client.Get(ctx, draftKey(req)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	var items []Candidate
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, false, err
	}
	return items, true, nil
}

func (c *RedisDraftCache) Set(ctx context.Context, req GenerateRequest, items []Candidate) error {
	data, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, draftKey(req), data, c.ttl).Err()
}

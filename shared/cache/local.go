package cache

//go:generate go run go.uber.org/mock/mockgen -source=./local.go -destination=./mocks/local_mock.go -package=mocks

import (
	"time"

	"lodge/config"

	"github.com/karlseguin/ccache/v3"
	"github.com/rs/zerolog/log"
)

// LocalCache is an in-process cache placed in front of redis for hot, read-mostly data.
type LocalCache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
	Delete(key string)
	DeletePrefix(prefix string) int
}

type localCache struct {
	store *ccache.Cache[any]
	ttl   time.Duration
}

func NewLocalCache(cfg *config.Config) LocalCache {
	maxSize := cfg.Cache.Local.MaxSize
	if maxSize <= 0 {
		maxSize = 500
	}

	ttl := time.Duration(cfg.Cache.Local.TTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = 30 * time.Second
	}

	log.Info().Int64("maxSize", maxSize).Dur("ttl", ttl).Msg("Local cache initialized")

	return &localCache{
		store: ccache.New(ccache.Configure[any]().MaxSize(maxSize)),
		ttl:   ttl,
	}
}

func (c *localCache) Get(key string) (any, bool) {
	item := c.store.Get(key)
	if item == nil || item.Expired() {
		return nil, false
	}

	return item.Value(), true
}

func (c *localCache) Set(key string, value any) {
	c.store.Set(key, value, c.ttl)
}

func (c *localCache) Delete(key string) {
	c.store.Delete(key)
}

// DeletePrefix drops every key starting with prefix and returns how many were removed.
func (c *localCache) DeletePrefix(prefix string) int {
	return c.store.DeletePrefix(prefix)
}

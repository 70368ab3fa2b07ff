package cache_test

import (
	"testing"

	"lodge/config"
	"lodge/shared/cache"

	"github.com/stretchr/testify/assert"
)

func TestLocalCache(t *testing.T) {
	cfg := &config.Config{}
	cfg.Cache.Local.MaxSize = 10
	cfg.Cache.Local.TTLSeconds = 60

	local := cache.NewLocalCache(cfg)

	_, ok := local.Get("listing:catalog")
	assert.False(t, ok)

	local.Set("listing:catalog", []string{"a", "b"})
	local.Set("listing:articles", 3)
	local.Set("property:get:1", "x")

	value, ok := local.Get("listing:catalog")
	assert.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, value)

	assert.Equal(t, 2, local.DeletePrefix("listing:"))

	_, ok = local.Get("listing:articles")
	assert.False(t, ok)

	local.Delete("property:get:1")

	_, ok = local.Get("property:get:1")
	assert.False(t, ok)
}

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNew_Defaults(t *testing.T) {
	t.Setenv("MYSQL_DSN", "")
	t.Setenv("ANON_FEATURED_LIMIT", "")
	t.Setenv("FEATURED_CACHE_TTL", "")
	t.Setenv("BOOST_DAYS", "")

	cfg := New()

	assert.Equal(t, 5, cfg.Visibility.AnonymousLimit)
	assert.Equal(t, time.Minute, cfg.Visibility.FeaturedCacheTTL)
	assert.Equal(t, 30, cfg.Entitlement.BoostDays)
	assert.Contains(t, cfg.DB.DSN, "@tcp(localhost:3306)/matrimony")
}

func TestNew_Overrides(t *testing.T) {
	t.Setenv("MYSQL_DSN", "u:p@tcp(db:3306)/x")
	t.Setenv("ANON_FEATURED_LIMIT", "3")
	t.Setenv("FEATURED_CACHE_TTL", "5s")
	t.Setenv("REDIS_DB", "not-a-number")

	cfg := New()

	assert.Equal(t, "u:p@tcp(db:3306)/x", cfg.DB.DSN)
	assert.Equal(t, 3, cfg.Visibility.AnonymousLimit)
	assert.Equal(t, 5*time.Second, cfg.Visibility.FeaturedCacheTTL)
	assert.Equal(t, 0, cfg.Redis.DB)
}

func TestIsTruthy(t *testing.T) {
	for _, v := range []string{"1", "true", "YES", " on "} {
		assert.True(t, isTruthy(v), v)
	}
	for _, v := range []string{"", "0", "off", "nope"} {
		assert.False(t, isTruthy(v), v)
	}
}

package redis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vero/internal/platform/config"
)

func TestNew_EmptyURLDisablesCaching(t *testing.T) {
	client, err := New(config.RedisConfig{})
	require.NoError(t, err)
	assert.Nil(t, client)
}

func TestNew_InvalidURL(t *testing.T) {
	_, err := New(config.RedisConfig{URL: "not-a-redis-url"})
	assert.Error(t, err)
}

func TestPingTimeoutDefaults(t *testing.T) {
	assert.Equal(t, 5*time.Second, pingTimeout(0))
	assert.Equal(t, time.Second, pingTimeout(time.Second))
}

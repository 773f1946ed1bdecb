package database

import (
	"strconv"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)

	client, err := InitRedis(&RedisConfig{ServiceName: "test", Host: mr.Host(), Port: port})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	assert.Equal(t, 10, client.Options().PoolSize)
}

func TestInitRedis_NilConfig(t *testing.T) {
	_, err := InitRedis(nil)
	assert.Error(t, err)
}

func TestBuildDSN(t *testing.T) {
	cfg := &PostgresConfig{Username: "u", Password: "p", Database: "courses"}
	setDefaults(cfg)

	assert.Equal(t, "host=localhost user=u password=p dbname=courses port=5432 sslmode=disable", BuildDSN(cfg))

	cfg.SSLMode = true
	assert.Contains(t, BuildDSN(cfg), "sslmode=require")
}

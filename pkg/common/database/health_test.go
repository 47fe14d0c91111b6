package database

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"

	"github.com/synaptica-ai/trialmatch/pkg/common/config"
)

func TestRedisStatus(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := config.Load()
	cfg.RedisHost, cfg.RedisPort = mr.Host(), mr.Port()

	client := NewRedis(cfg)
	defer client.Close()
	assert.Equal(t, statusOK, redisStatus(context.Background(), client))

	mr.Close()
	assert.NotEqual(t, statusOK, redisStatus(context.Background(), client))
}

func TestHealthy(t *testing.T) {
	assert.True(t, Healthy(map[string]string{}))
	assert.True(t, Healthy(map[string]string{"redis": "ok", "postgres": "ok"}))
	assert.False(t, Healthy(map[string]string{"redis": "ok", "postgres": "connection refused"}))
}

func TestPostgresDSN(t *testing.T) {
	cfg := config.Load()
	cfg.PostgresHost, cfg.PostgresPort, cfg.PostgresDB = "db.internal", "6432", "matches"

	dsn := PostgresDSN(cfg)
	assert.Contains(t, dsn, "host=db.internal")
	assert.Contains(t, dsn, "port=6432")
	assert.Contains(t, dsn, "dbname=matches")
	assert.Contains(t, dsn, "sslmode=disable")
}

package database

import (
	"context"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const statusOK = "ok"

// Health pings whichever shared connections have been opened. Connections
// that were never requested are left out of the report.
func Health(ctx context.Context) map[string]string {
	status := make(map[string]string, 2)
	if db != nil {
		status["postgres"] = postgresStatus(ctx, db)
	}
	if redisClient != nil {
		status["redis"] = redisStatus(ctx, redisClient)
	}
	return status
}

// Healthy reports whether every entry of a Health report is ok.
func Healthy(status map[string]string) bool {
	for _, s := range status {
		if s != statusOK {
			return false
		}
	}
	return true
}

func postgresStatus(ctx context.Context, conn *gorm.DB) string {
	sqlDB, err := conn.DB()
	if err != nil {
		return err.Error()
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return err.Error()
	}
	return statusOK
}

func redisStatus(ctx context.Context, client *redis.Client) string {
	if err := client.Ping(ctx).Err(); err != nil {
		return err.Error()
	}
	return statusOK
}

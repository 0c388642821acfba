package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"lighthouse-iot-backend/internal/config"
	"lighthouse-iot-backend/internal/models"
)

const latestTTL = 60 * time.Second

// NewRedisClient creates a redis client, or nil when no address is configured.
func NewRedisClient(cfg *config.RedisConfig) *redis.Client {
	if cfg.Addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// TelemetryCache caches the latest-telemetry-per-station query. Telemetry is
// append-only, so cached entries can only ever lag behind, never be wrong;
// ingestion invalidates the station's key to keep the lag to a single request.
// A nil client disables caching.
type TelemetryCache struct {
	client *redis.Client
	logger *zap.Logger
}

func NewTelemetryCache(client *redis.Client, logger *zap.Logger) *TelemetryCache {
	return &TelemetryCache{client: client, logger: logger}
}

func latestKey(stationID uuid.UUID) string {
	return fmt.Sprintf("telemetry:latest:%s", stationID)
}

// GetLatest returns the cached latest telemetry for a station, or nil on miss.
func (c *TelemetryCache) GetLatest(ctx context.Context, stationID uuid.UUID) *models.LatestTelemetry {
	if c.client == nil {
		return nil
	}
	raw, err := c.client.Get(ctx, latestKey(stationID)).Bytes()
	if err != nil {
		return nil
	}
	var latest models.LatestTelemetry
	if err := json.Unmarshal(raw, &latest); err != nil {
		c.logger.Warn("Discarding malformed cache entry", zap.String("station_id", stationID.String()))
		c.client.Del(ctx, latestKey(stationID))
		return nil
	}
	return &latest
}

// SetLatest stores the latest telemetry for a station.
func (c *TelemetryCache) SetLatest(ctx context.Context, latest *models.LatestTelemetry) {
	if c.client == nil || latest == nil {
		return
	}
	raw, err := json.Marshal(latest)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, latestKey(latest.StationID), raw, latestTTL).Err(); err != nil {
		c.logger.Warn("Failed to cache latest telemetry", zap.Error(err))
	}
}

// InvalidateLatest drops the cached entry for a station after new samples land.
func (c *TelemetryCache) InvalidateLatest(ctx context.Context, stationID uuid.UUID) {
	if c.client == nil {
		return
	}
	if err := c.client.Del(ctx, latestKey(stationID)).Err(); err != nil {
		c.logger.Warn("Failed to invalidate latest telemetry cache", zap.Error(err))
	}
}

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"lighthouse-iot-backend/internal/models"
)

func setupCache(t *testing.T) (*miniredis.Miniredis, *TelemetryCache) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return mr, NewTelemetryCache(client, zap.NewNop())
}

func sampleLatest(stationID uuid.UUID) *models.LatestTelemetry {
	return &models.LatestTelemetry{
		StationID: stationID,
		Metrics: map[string]float64{
			"battery_voltage": 12.6,
			"temperature":     18.5,
		},
		LastUpdate: time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
	}
}

func TestSetAndGetLatest(t *testing.T) {
	_, c := setupCache(t)
	ctx := context.Background()
	stationID := uuid.New()

	c.SetLatest(ctx, sampleLatest(stationID))

	got := c.GetLatest(ctx, stationID)
	require.NotNil(t, got)
	assert.Equal(t, stationID, got.StationID)
	assert.Equal(t, 12.6, got.Metrics["battery_voltage"])
	assert.True(t, got.LastUpdate.Equal(time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)))
}

func TestGetLatestMissReturnsNil(t *testing.T) {
	_, c := setupCache(t)

	assert.Nil(t, c.GetLatest(context.Background(), uuid.New()))
}

func TestInvalidateLatestDropsEntry(t *testing.T) {
	_, c := setupCache(t)
	ctx := context.Background()
	stationID := uuid.New()

	c.SetLatest(ctx, sampleLatest(stationID))
	require.NotNil(t, c.GetLatest(ctx, stationID))

	c.InvalidateLatest(ctx, stationID)
	assert.Nil(t, c.GetLatest(ctx, stationID))
}

func TestLatestEntryExpires(t *testing.T) {
	mr, c := setupCache(t)
	ctx := context.Background()
	stationID := uuid.New()

	c.SetLatest(ctx, sampleLatest(stationID))

	mr.FastForward(2 * time.Minute)
	assert.Nil(t, c.GetLatest(ctx, stationID))
}

func TestMalformedEntryDiscarded(t *testing.T) {
	mr, c := setupCache(t)
	ctx := context.Background()
	stationID := uuid.New()

	require.NoError(t, mr.Set(latestKey(stationID), "{not json"))

	assert.Nil(t, c.GetLatest(ctx, stationID))
	// The bad entry is deleted, not left to fail every request.
	assert.False(t, mr.Exists(latestKey(stationID)))
}

func TestNilClientDisablesCaching(t *testing.T) {
	c := NewTelemetryCache(nil, zap.NewNop())
	ctx := context.Background()
	stationID := uuid.New()

	c.SetLatest(ctx, sampleLatest(stationID))
	assert.Nil(t, c.GetLatest(ctx, stationID))
	c.InvalidateLatest(ctx, stationID)
}

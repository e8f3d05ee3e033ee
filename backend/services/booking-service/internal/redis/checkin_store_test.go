package redisstore

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	libredis "xpointconnect/backend/libs/redis"
	"xpointconnect/backend/services/booking-service/internal/models"
)

// Runs against a real server when BOOKING_TEST_REDIS_ADDR is set.
func TestStoreRoundTrip(t *testing.T) {
	addr := os.Getenv("BOOKING_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("BOOKING_TEST_REDIS_ADDR not set")
	}
	client, err := libredis.Connect(context.Background(), libredis.Config{Addr: addr})
	require.NoError(t, err)
	defer client.Close()

	ctx := context.Background()
	store := NewStore(client, time.Minute)
	at := time.Date(2025, 6, 12, 10, 0, 0, 0, time.UTC)
	checkIn := models.CheckIn{
		BookingID:   "test-b-1",
		StationID:   "test-s-1",
		EVOwnerNIC:  "123456789V",
		CheckInTime: at,
		ExpectedEnd: at.Add(90 * time.Minute),
	}
	require.NoError(t, store.Save(ctx, checkIn))
	t.Cleanup(func() { _ = store.Delete(ctx, "test-s-1", "test-b-1") })

	list, err := store.ListByStation(ctx, "test-s-1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "123456789V", list[0].EVOwnerNIC)
	assert.True(t, at.Equal(list[0].CheckInTime))

	require.NoError(t, store.Delete(ctx, "test-s-1", "test-b-1"))
	list, err = store.ListByStation(ctx, "test-s-1")
	require.NoError(t, err)
	assert.Empty(t, list)
}

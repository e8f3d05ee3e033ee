package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"xpointconnect/backend/services/booking-service/internal/models"
)

// Store caches bookings that are currently checked in.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStore returns redis-backed store.
func NewStore(client *redis.Client, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

func (s *Store) bookingKey(bookingID string) string {
	return fmt.Sprintf("checkins:booking:%s", bookingID)
}

func (s *Store) stationKey(stationID string) string {
	return fmt.Sprintf("checkins:station:%s", stationID)
}

// Save caches a check-in and indexes it under its station.
func (s *Store) Save(ctx context.Context, checkIn models.CheckIn) error {
	data, err := json.Marshal(checkIn)
	if err != nil {
		return err
	}
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.bookingKey(checkIn.BookingID), data, s.ttl)
	pipe.SAdd(ctx, s.stationKey(checkIn.StationID), checkIn.BookingID)
	pipe.Expire(ctx, s.stationKey(checkIn.StationID), s.ttl)
	_, err = pipe.Exec(ctx)
	return err
}

// Delete removes a check-in.
func (s *Store) Delete(ctx context.Context, stationID, bookingID string) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.bookingKey(bookingID))
	pipe.SRem(ctx, s.stationKey(stationID), bookingID)
	_, err := pipe.Exec(ctx)
	return err
}

// ListByStation returns the station's cached check-ins. Index entries whose booking key has
// expired are dropped from the index.
func (s *Store) ListByStation(ctx context.Context, stationID string) ([]models.CheckIn, error) {
	ids, err := s.client.SMembers(ctx, s.stationKey(stationID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []models.CheckIn{}, nil
		}
		return nil, err
	}
	if len(ids) == 0 {
		return []models.CheckIn{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.bookingKey(id)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	checkIns := make([]models.CheckIn, 0, len(values))
	var stale []interface{}
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			stale = append(stale, ids[i])
			continue
		}
		var checkIn models.CheckIn
		if err := json.Unmarshal([]byte(raw), &checkIn); err != nil {
			stale = append(stale, ids[i])
			continue
		}
		checkIns = append(checkIns, checkIn)
	}
	if len(stale) > 0 {
		if err := s.client.SRem(ctx, s.stationKey(stationID), stale...).Err(); err != nil {
			return nil, err
		}
	}
	return checkIns, nil
}

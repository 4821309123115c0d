package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"signetic_scheduler/internal/entities"
	"strings"

	"github.com/go-redis/redis/v8"
)

// DefaultLocations is the built-in location table.
var DefaultLocations = map[string]entities.Coordinates{
	"springfield":   {Latitude: 39.7817, Longitude: -89.6501},
	"chicago":       {Latitude: 41.8781, Longitude: -87.6298},
	"new york":      {Latitude: 40.7128, Longitude: -74.0060},
	"los angeles":   {Latitude: 34.0522, Longitude: -118.2437},
	"houston":       {Latitude: 29.7604, Longitude: -95.3698},
	"phoenix":       {Latitude: 33.4484, Longitude: -112.0740},
	"philadelphia":  {Latitude: 39.9526, Longitude: -75.1652},
	"san antonio":   {Latitude: 29.4241, Longitude: -98.4936},
	"san diego":     {Latitude: 32.7157, Longitude: -117.1611},
	"dallas":        {Latitude: 32.7767, Longitude: -96.7970},
	"san francisco": {Latitude: 37.7749, Longitude: -122.4194},
	"seattle":       {Latitude: 47.6062, Longitude: -122.3321},
	"boston":        {Latitude: 42.3601, Longitude: -71.0589},
	"miami":         {Latitude: 25.7617, Longitude: -80.1918},
	"denver":        {Latitude: 39.7392, Longitude: -104.9903},
	"atlanta":       {Latitude: 33.7490, Longitude: -84.3880},
}

func normalizeLocation(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// StaticGeocoder resolves names from an in-memory table. Matching ignores case
// and repeated whitespace.
type StaticGeocoder struct {
	table map[string]entities.Coordinates
}

func NewStaticGeocoder(table map[string]entities.Coordinates) *StaticGeocoder {
	normalized := make(map[string]entities.Coordinates, len(table))
	for name, coords := range table {
		normalized[normalizeLocation(name)] = coords
	}
	return &StaticGeocoder{table: normalized}
}

func (g *StaticGeocoder) Lookup(_ context.Context, location string) (entities.Coordinates, bool, error) {
	coords, ok := g.table[normalizeLocation(location)]
	return coords, ok, nil
}

const geocodeKey = "geocode:locations"

var ErrInvalidCoordinates = errors.New("coordinates out of range")

// RedisGeocoder checks a Redis hash of overrides before the fallback table.
type RedisGeocoder struct {
	client   *redis.Client
	fallback *StaticGeocoder
}

func NewRedisGeocoder(client *redis.Client, fallback *StaticGeocoder) *RedisGeocoder {
	return &RedisGeocoder{client: client, fallback: fallback}
}

func (g *RedisGeocoder) Lookup(ctx context.Context, location string) (entities.Coordinates, bool, error) {
	data, err := g.client.HGet(ctx, geocodeKey, normalizeLocation(location)).Result()
	if err == redis.Nil {
		return g.fallback.Lookup(ctx, location)
	}
	if err != nil {
		return entities.Coordinates{}, false, fmt.Errorf("redis hget: %w", err)
	}

	var coords entities.Coordinates
	if err := json.Unmarshal([]byte(data), &coords); err != nil {
		return entities.Coordinates{}, false, fmt.Errorf("decode coordinates for %q: %w", location, err)
	}
	return coords, true, nil
}

// Put stores an override for location.
func (g *RedisGeocoder) Put(ctx context.Context, location string, coords entities.Coordinates) error {
	if coords.Latitude < -90 || coords.Latitude > 90 || coords.Longitude < -180 || coords.Longitude > 180 {
		return fmt.Errorf("%w: %+v", ErrInvalidCoordinates, coords)
	}
	if normalizeLocation(location) == "" {
		return errors.New("location name is empty")
	}
	b, err := json.Marshal(coords)
	if err != nil {
		return err
	}
	if err := g.client.HSet(ctx, geocodeKey, normalizeLocation(location), b).Err(); err != nil {
		return fmt.Errorf("redis hset: %w", err)
	}
	return nil
}

// NewRedisClient connects and pings Redis.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

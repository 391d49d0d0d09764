package publisher

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// AlertStream carries NEW/WORSENED injury alerts to downstream
	// consumers (notifier, broadcaster).
	AlertStream = "injuries.alerts.football_nfl"

	// ReportStream carries the full per-cycle report.
	ReportStream = "injuries.report.football_nfl"
)

// RedisPublisher publishes injury events to Redis streams.
type RedisPublisher struct {
	client *redis.Client
}

// NewRedisPublisher creates a new Redis stream publisher.
func NewRedisPublisher(redisURL string) (*RedisPublisher, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisPublisher{client: client}, nil
}

// NewRedisStreamPublisher creates a publisher from an existing client.
func NewRedisStreamPublisher(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{client: client}
}

// Close closes the Redis connection.
func (rp *RedisPublisher) Close() error {
	return rp.client.Close()
}

// PublishAlert publishes a single injury alert to the alert stream.
func (rp *RedisPublisher) PublishAlert(ctx context.Context, alert interface{}) error {
	return rp.publish(ctx, AlertStream, alert)
}

// PublishReport publishes the complete cycle report.
func (rp *RedisPublisher) PublishReport(ctx context.Context, report interface{}) error {
	return rp.publish(ctx, ReportStream, report)
}

func (rp *RedisPublisher) publish(ctx context.Context, stream string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	return rp.client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: map[string]interface{}{
			"data":      string(data),
			"timestamp": time.Now().Unix(),
		},
	}).Err()
}

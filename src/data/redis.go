package data

import (
	"context"
	"log"

	"github.com/redis/go-redis/v9"
)

const streamEvents = "robotcomms.events"

func MustRedis(url string) *redis.Client {
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	return redis.NewClient(opt)
}

// PublishEvent mirrors a mission log event onto the Redis stream so external
// consumers (bots, dashboards) can tail it without holding a websocket open.
func PublishEvent(ctx context.Context, rdb *redis.Client, payload map[string]interface{}) error {
	_, err := rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: streamEvents,
		Values: payload,
	}).Result()
	return err
}

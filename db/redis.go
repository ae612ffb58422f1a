package db

import (
	"context"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// ConnectCache opens the narrative Cache Store's Redis connection. An empty
// dsn means caching is disabled; absence is not fatal per §6.
func ConnectCache(dsn string) (*redis.Client, error) {
	if dsn == "" {
		slog.Info("CACHE_URL not set, narrative cache disabled")
		return nil, nil
	}

	opt, err := redis.ParseURL(dsn)
	if err != nil {
		opt = &redis.Options{Addr: dsn}
	}

	client := redis.NewClient(opt)
	if err := client.Ping(context.Background()).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}

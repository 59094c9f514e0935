// Package redis connects to Redis and offers a small key-value wrapper over
// github.com/redis/go-redis/v9.
//
// Connect pings the server with retries driven by github.com/sethvargo/go-retry
// and gives up after Config.RetryAttempts or Config.ConnectTimeout:
//
//	client, err := redis.Connect(ctx, redis.Config{
//	    ConnectionURL:  "redis://localhost:6379/0",
//	    RetryAttempts:  3,
//	    RetryInterval:  time.Second,
//	    ConnectTimeout: 10 * time.Second,
//	})
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
// Storage maps missing keys to ErrKeyNotFound:
//
//	store := redis.NewStorage(client)
//	_ = store.Set(ctx, "phoneauth:ui_state", payload, 10*time.Minute)
//
// Healthcheck returns a probe suitable for readiness checks.
//
// Config fields are tagged for github.com/caarlos0/env and load through
// pkg/config.
package redis

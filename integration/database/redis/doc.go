// Package redis creates go-redis clients with connection verification and retries.
//
//	client, err := redis.Connect(ctx, redis.Config{
//		ConnectionURL:  "redis://localhost:6379/0",
//		RetryAttempts:  3,
//		RetryInterval:  time.Second,
//		ConnectTimeout: 10 * time.Second,
//	})
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
//	check := redis.Healthcheck(client)
//
// Connect parses redis:// and rediss:// URLs, then pings until the server
// answers. The wait between attempts doubles after each failure.
//
// # Error Handling
//
//   - ErrEmptyConnectionURL: no URL configured
//   - ErrFailedToParseRedisConnString: malformed URL
//   - ErrRedisNotReady: every attempt failed or the timeout elapsed
//   - ErrHealthcheckFailed: PING failed in Healthcheck
//
// The underlying go-redis error is joined to each sentinel.
package redis

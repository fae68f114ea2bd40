// Package redisstore implements session.Store on redis.
//
//	client, err := redis.Connect(ctx, cfg) // integration/database/redis
//	if err != nil {
//		return err
//	}
//	store := redisstore.New(client, redisstore.WithTTL(time.Hour))
//
// Records are stored as JSON strings. Create is SETNX, so two requests racing
// to create the same identifier cannot both succeed. Update runs the mutation
// inside WATCH/MULTI and retries when another writer touched the key first;
// the key TTL is kept. DeleteExpired walks the key prefix with SCAN and removes
// keys whose record is older than the cutoff.
package redisstore

// Package store is the durable record layer: Redis hashes with a fixed
// retention window, addressed by namespaced keys. Job records and upload
// entries both live here.
package store

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"yaomexi/internal/pkg/errors"
)

// RetentionWindow is how long job records and upload entries survive.
// It is set once at creation and never refreshed by later mutations, so a
// record updated near the boundary can still expire mid-processing.
const RetentionWindow = 24 * time.Hour

// RecordStore stores flat string field maps under TTL-capable keys. It
// does not interpret payload structure; callers serialize composite fields
// before storing.
type RecordStore struct {
	rdb *redis.Client
}

func NewRecordStore(rdb *redis.Client) *RecordStore {
	return &RecordStore{rdb: rdb}
}

// Put writes all fields and arms the expiry. This is the only place a TTL
// is ever set.
func (s *RecordStore) Put(ctx context.Context, key string, fields map[string]string, ttl time.Duration) error {
	pipe := s.rdb.TxPipeline()
	pipe.HSet(ctx, key, fields)
	if ttl > 0 {
		pipe.Expire(ctx, key, ttl)
	}
	_, err := pipe.Exec(ctx)
	return err
}

// Get returns the stored field map, or an empty map when the key is
// missing or expired.
func (s *RecordStore) Get(ctx context.Context, key string) (map[string]string, error) {
	return s.rdb.HGetAll(ctx, key).Result()
}

// mergeIfExists sets hash fields only while the key is still alive. A bare
// HSET on an expired key would recreate it as a partial hash with no TTL.
var mergeIfExists = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 0 then
	return 0
end
for i = 1, #ARGV, 2 do
	redis.call("HSET", KEYS[1], ARGV[i], ARGV[i+1])
end
return 1
`)

// MergeFields overwrites the given fields, leaving the rest of the map and
// the key's TTL untouched. A key that expired under the merge yields
// NotFound; the expired record stays gone.
func (s *RecordStore) MergeFields(ctx context.Context, key string, fields map[string]string) error {
	argv := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		argv = append(argv, k, v)
	}
	n, err := mergeIfExists.Run(ctx, s.rdb, []string{key}, argv...).Int()
	if err != nil {
		return err
	}
	if n == 0 {
		return errors.NotFound("record", key)
	}
	return nil
}

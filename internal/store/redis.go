package store

import (
	"context"
	"sort"
	"strings"

	"github.com/redis/go-redis/v9"

	"visitmap/internal/logger"
)

// DefaultRedisPrefix 每个桶对应一个 hash：<prefix><bucket>
const DefaultRedisPrefix = "visitmap:"

// 文档注释：Redis 后端
// 背景：每个桶存为一个 hash，字段为区域 id；一次 HGETALL 即可恢复整个桶。
// 约束：清空桶直接删除整个 key；Buckets 通过 SCAN 枚举前缀下的 hash，不依赖 KEYS。
type Redis struct {
	rc     *redis.Client
	prefix string
}

// NewRedis 使用已有客户端；prefix 为空时使用默认前缀
func NewRedis(rc *redis.Client, prefix string) *Redis {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &Redis{rc: rc, prefix: prefix}
}

func (r *Redis) key(bucket string) string { return r.prefix + bucket }

func (r *Redis) Load(ctx context.Context, bucket string) (map[string]string, error) {
	m, err := r.rc.HGetAll(ctx, r.key(bucket)).Result()
	if err != nil {
		return nil, err
	}
	logger.L().Debug("redis_load", "bucket", bucket, "n", len(m))
	return m, nil
}

func (r *Redis) Put(ctx context.Context, bucket, id, value string) error {
	return r.rc.HSet(ctx, r.key(bucket), id, value).Err()
}

func (r *Redis) Delete(ctx context.Context, bucket, id string) error {
	return r.rc.HDel(ctx, r.key(bucket), id).Err()
}

func (r *Redis) Clear(ctx context.Context, bucket string) error {
	return r.rc.Del(ctx, r.key(bucket)).Err()
}

// Buckets 只列出前缀下的 hash；同一实例中共用前缀的其他类型 key 被忽略
func (r *Redis) Buckets(ctx context.Context) ([]string, error) {
	var keys []string
	iter := r.rc.Scan(ctx, 0, r.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return nil, nil
	}
	pipe := r.rc.Pipeline()
	types := make([]*redis.StatusCmd, len(keys))
	for i, k := range keys {
		types[i] = pipe.Type(ctx, k)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}
	out := make([]string, 0, len(keys))
	for i, k := range keys {
		if types[i].Val() != "hash" {
			logger.L().Debug("redis_bucket_skipped", "key", k, "type", types[i].Val())
			continue
		}
		out = append(out, strings.TrimPrefix(k, r.prefix))
	}
	sort.Strings(out)
	return out, nil
}

func (r *Redis) Close() error { return r.rc.Close() }

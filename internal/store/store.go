// 包 store：着色数据的持久化后端（内存 / Redis / PostgreSQL / SQLite / 快照文件）
package store

import (
	"context"
	"errors"
	"os"
	"strings"

	"visitmap/internal/logger"
	"visitmap/internal/migrate"
	"visitmap/internal/utils"
)

var ErrUnknownBackend = errors.New("store: unknown backend")

// 文档注释：持久化后端
// 背景：着色数据按桶（coloredStates、stateCategories、continent:<tag> 等）组织为 id→值 的映射，值为 "true" 或类别名。
// 约束：Put 为幂等覆盖；Delete/Clear 对不存在的键不报错；Load 对不存在的桶返回空映射；Buckets 列出当前有数据的桶。
type Backend interface {
	Load(ctx context.Context, bucket string) (map[string]string, error)
	Put(ctx context.Context, bucket, id, value string) error
	Delete(ctx context.Context, bucket, id string) error
	Clear(ctx context.Context, bucket string) error
	Buckets(ctx context.Context) ([]string, error)
	Close() error
}

// Open：按 STORE_BACKEND 打开后端，默认内存
func Open(ctx context.Context) (Backend, error) {
	return OpenKind(ctx, os.Getenv("STORE_BACKEND"))
}

// OpenKind：按名称打开后端；各后端从环境变量读取连接参数
func OpenKind(ctx context.Context, kind string) (Backend, error) {
	kind = strings.ToLower(strings.TrimSpace(kind))
	logger.L().Debug("store_open", "backend", kind)
	switch kind {
	case "", "memory", "mem":
		return NewMemory(), nil
	case "redis":
		rc := utils.OpenRedisFromEnv()
		if err := rc.Ping(ctx).Err(); err != nil {
			_ = rc.Close()
			return nil, err
		}
		return NewRedis(rc, ""), nil
	case "postgres", "pg":
		db, err := utils.OpenPostgresFromEnv()
		if err != nil {
			return nil, err
		}
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, err
		}
		if err := migrate.EnsureSchema(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
		return AttachDB(db), nil
	case "sqlite":
		return OpenSQLite(utils.EnvOr("SQLITE_PATH", "data/visitmap.db"))
	case "file", "msgpack":
		return OpenFile(utils.EnvOr("SNAPSHOT_PATH", "data/coloring.msgpack"))
	}
	return nil, ErrUnknownBackend
}

// Copy 将 src 的全部桶复制到 dst，返回复制的条目数
func Copy(ctx context.Context, dst, src Backend) (int, error) {
	buckets, err := src.Buckets(ctx)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, b := range buckets {
		vals, err := src.Load(ctx, b)
		if err != nil {
			return n, err
		}
		for id, v := range vals {
			if err := dst.Put(ctx, b, id, v); err != nil {
				return n, err
			}
			n++
		}
	}
	logger.L().Info("store_copy_done", "buckets", len(buckets), "entries", n)
	return n, nil
}

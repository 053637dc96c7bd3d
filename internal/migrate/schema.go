// 包 migrate：PostgreSQL 着色表结构
package migrate

import (
	"context"
	"database/sql"
	"fmt"

	"visitmap/internal/logger"
)

var coloringSchema = []string{
	`CREATE TABLE IF NOT EXISTS _visit_coloring (
        bucket TEXT NOT NULL,
        region_id TEXT NOT NULL,
        value TEXT NOT NULL CHECK (value <> ''),
        updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
        PRIMARY KEY (bucket, region_id)
    )`,
	`CREATE INDEX IF NOT EXISTS idx_visit_coloring_updated ON _visit_coloring(updated_at)`,
}

// 文档注释：确保着色表存在
// 背景：postgres 后端首次打开时调用；主键 (bucket, region_id) 同时服务按桶读取与 upsert。
// 约束：语句均为幂等（IF NOT EXISTS），可重复执行；失败时返回出错语句序号。
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for i, s := range coloringSchema {
		if _, err := db.ExecContext(ctx, s); err != nil {
			return fmt.Errorf("migrate: statement %d: %w", i, err)
		}
	}
	logger.L().Debug("schema_ready", "table", "_visit_coloring", "stmts", len(coloringSchema))
	return nil
}

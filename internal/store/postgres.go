package store

import (
	"context"
	"database/sql"

	_ "github.com/lib/pq"

	"visitmap/internal/logger"
)

// Postgres：PostgreSQL 后端，数据存于 _visit_coloring(bucket, region_id, value)
type Postgres struct {
	db *sql.DB
}

// AttachDB 使用已打开且完成建表的连接池
func AttachDB(db *sql.DB) *Postgres { return &Postgres{db: db} }

func (s *Postgres) DB() *sql.DB { return s.db }

func (s *Postgres) Load(ctx context.Context, bucket string) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT region_id, value FROM _visit_coloring WHERE bucket=$1`, bucket)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[string]string{}
	for rows.Next() {
		var id, v string
		if err := rows.Scan(&id, &v); err != nil {
			return nil, err
		}
		out[id] = v
	}
	logger.L().Debug("db_load", "bucket", bucket, "n", len(out))
	return out, rows.Err()
}

func (s *Postgres) Put(ctx context.Context, bucket, id, value string) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO _visit_coloring(bucket, region_id, value)
        VALUES($1,$2,$3)
        ON CONFLICT (bucket, region_id) DO UPDATE SET value=EXCLUDED.value, updated_at=now()`,
		bucket, id, value,
	)
	return err
}

func (s *Postgres) Delete(ctx context.Context, bucket, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM _visit_coloring WHERE bucket=$1 AND region_id=$2`, bucket, id)
	return err
}

func (s *Postgres) Clear(ctx context.Context, bucket string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM _visit_coloring WHERE bucket=$1`, bucket)
	return err
}

func (s *Postgres) Buckets(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT bucket FROM _visit_coloring ORDER BY bucket`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var b string
		if err := rows.Scan(&b); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *Postgres) Close() error { return s.db.Close() }

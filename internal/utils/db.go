package utils

import (
	"database/sql"
	"net"
	"net/url"
	"os"
	"time"

	_ "github.com/lib/pq"
)

// OpenPostgres 以给定 DSN 打开连接池；连接池参数来自 PG_MAX_OPEN_CONNS / PG_MAX_IDLE_CONNS
func OpenPostgres(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(EnvInt("PG_MAX_OPEN_CONNS", 10))
	db.SetMaxIdleConns(EnvInt("PG_MAX_IDLE_CONNS", 5))
	db.SetConnMaxLifetime(30 * time.Minute)
	return db, nil
}

// 文档注释：组装 PostgreSQL DSN
// 背景：PG_DSN 显式给出时直接使用；否则由 PG_HOST/PORT/USER/PASSWORD/DB/SSLMODE 组装 URL 形式。
// 约束：用户名与密码按 URL 规则转义。
func BuildPostgresDSNFromEnv() string {
	if dsn := os.Getenv("PG_DSN"); dsn != "" {
		return dsn
	}
	u := url.URL{
		Scheme:   "postgres",
		Host:     net.JoinHostPort(EnvOr("PG_HOST", "localhost"), EnvOr("PG_PORT", "5432")),
		Path:     "/" + EnvOr("PG_DB", "visitmap"),
		RawQuery: "sslmode=" + url.QueryEscape(EnvOr("PG_SSLMODE", "disable")),
	}
	if pass := os.Getenv("PG_PASSWORD"); pass != "" {
		u.User = url.UserPassword(EnvOr("PG_USER", "postgres"), pass)
	} else {
		u.User = url.User(EnvOr("PG_USER", "postgres"))
	}
	return u.String()
}

func OpenPostgresFromEnv() (*sql.DB, error) {
	return OpenPostgres(BuildPostgresDSNFromEnv())
}

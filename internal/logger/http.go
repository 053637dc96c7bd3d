package logger

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"net/http"
	"time"
)

// HeaderRequestID 请求 id 头；上游已携带时沿用
const HeaderRequestID = "X-Request-ID"

type ridKey struct{}

// RequestID 返回 AccessMiddleware 注入的请求 id
func RequestID(ctx context.Context) string {
	s, _ := ctx.Value(ridKey{}).(string)
	return s
}

// recorder：记录状态码与写出字节数
type recorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (w *recorder) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *recorder) Write(b []byte) (int, error) {
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

func (w *recorder) Unwrap() http.ResponseWriter { return w.ResponseWriter }

// 文档注释：访问日志中间件
// 背景：每个请求分配请求 id（写回响应头并放入 context），地图事件的排查按 id 串联服务端日志。
// 约束：不读取请求体；5xx 记为 warn，4xx 记为 info，其余 debug。
func AccessMiddleware(l *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rid := r.Header.Get(HeaderRequestID)
			if rid == "" {
				rid = newRequestID()
			}
			w.Header().Set(HeaderRequestID, rid)
			rec := &recorder{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()
			next.ServeHTTP(rec, r.WithContext(context.WithValue(r.Context(), ridKey{}, rid)))

			lvl := slog.LevelDebug
			switch {
			case rec.status >= 500:
				lvl = slog.LevelWarn
			case rec.status >= 400:
				lvl = slog.LevelInfo
			}
			l.LogAttrs(r.Context(), lvl, "http_access",
				slog.String("rid", rid),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", rec.status),
				slog.Int("bytes", rec.bytes),
				slog.Int64("duration_ms", time.Since(start).Milliseconds()),
				slog.String("remote", r.RemoteAddr),
			)
		})
	}
}

func newRequestID() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "0000000000000000"
	}
	return hex.EncodeToString(b[:])
}

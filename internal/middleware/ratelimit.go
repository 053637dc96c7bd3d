package middleware

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"visitmap/internal/logger"
	"visitmap/internal/utils"
)

// 文档注释：令牌桶限流中间件（每秒）
// 背景：API 由单个互斥锁串行化，突发请求会排队占满连接；按环境变量开关与速率配置。
// 约束：简化实现，不做队列排队，仅丢弃并返回 429。
type TokenBucket struct {
	capacity int
	tokens   int
	lastSec  int64
	mu       sync.Mutex
}

func NewTokenBucket(rps int) *TokenBucket {
	return &TokenBucket{capacity: rps, tokens: rps, lastSec: time.Now().Unix()}
}

func (tb *TokenBucket) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	nowSec := time.Now().Unix()
	if tb.lastSec != nowSec {
		tb.lastSec = nowSec
		tb.tokens = tb.capacity
	}
	if tb.tokens > 0 {
		tb.tokens--
		return true
	}
	return false
}

type ctxKey struct{}

// EdgeGeo：边缘节点注入的客户端地理信息（EdgeOne 头或常见代理头）
type EdgeGeo struct {
	ClientIP    string
	CountryA2   string
	CountryA3   string
	CountryName string
	Latitude    float64
	Longitude   float64
	HasCoords   bool
}

// FromContext 读取 Wrap 注入的边缘信息
func FromContext(ctx context.Context) (EdgeGeo, bool) {
	g, ok := ctx.Value(ctxKey{}).(EdgeGeo)
	return g, ok
}

// Wrap：注入边缘地理信息，并在 RATE_LIMIT_RPS>0 时限流
func Wrap(next http.Handler) http.Handler {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		g := parseEdgeGeo(r)
		ctx := context.WithValue(r.Context(), ctxKey{}, g)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
	rps := utils.EnvInt("RATE_LIMIT_RPS", 0)
	if rps <= 0 {
		return inner
	}
	tb := NewTokenBucket(rps)
	logger.L().Info("rate_limit_enabled", "rps", rps)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !tb.Allow() {
			logger.L().Debug("rate_limited", "path", r.URL.Path)
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		inner.ServeHTTP(w, r)
	})
}

// 文档注释：解析边缘请求头
// 背景：部署在 EdgeOne 后时，节点在自定义头中写入国家与经纬度；check-in 在本地 GeoIP 库缺失时可直接使用。
// 约束：客户端 IP 依次取 X-EO-Client-IP、X-Forwarded-For 首项、X-Real-IP、RemoteAddr；数值解析失败的字段忽略。
func parseEdgeGeo(r *http.Request) EdgeGeo {
	h := r.Header
	g := EdgeGeo{
		CountryA2:   strings.ToUpper(h.Get("X-EO-Geo-CountryCodeAlpha2")),
		CountryA3:   strings.ToUpper(h.Get("X-EO-Geo-CountryCodeAlpha3")),
		CountryName: h.Get("X-EO-Geo-Country"),
		ClientIP:    ClientIP(r),
	}
	lat, errLat := strconv.ParseFloat(h.Get("X-EO-Geo-Latitude"), 64)
	lon, errLon := strconv.ParseFloat(h.Get("X-EO-Geo-Longitude"), 64)
	if errLat == nil && errLon == nil {
		g.Latitude, g.Longitude, g.HasCoords = lat, lon, true
	}
	return g
}

// ClientIP 返回请求方 IP
func ClientIP(r *http.Request) string {
	if v := strings.TrimSpace(r.Header.Get("X-EO-Client-IP")); v != "" {
		return v
	}
	if v := r.Header.Get("X-Forwarded-For"); v != "" {
		if i := strings.IndexByte(v, ','); i >= 0 {
			v = v[:i]
		}
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	if v := strings.TrimSpace(r.Header.Get("X-Real-IP")); v != "" {
		return v
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

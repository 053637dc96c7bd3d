package atlas

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"visitmap/internal/geo"
	"visitmap/internal/logger"
	"visitmap/internal/metrics"
)

// maxDocBytes 单个文档的读取上限
const maxDocBytes = 64 << 20

// 文档注释：几何文档来源
// 背景：渲染前需要已解析的要素列表；原始文档体积较大，进程内保存解码结果，Redis 可选缓存原始文档供多实例共享。
// 约束：rc 为 nil 时跳过 Redis；同一类型的解码结果在进程内只保留一份，Invalidate 后重新获取；网络或解析失败返回错误，不缓存失败结果。
type Source struct {
	manifest Manifest
	client   *http.Client
	rc       *redis.Client
	ttl      time.Duration

	mu   sync.Mutex
	memo map[Kind][]geo.Feature
}

// NewSource 创建来源；timeout<=0 时使用 10s
func NewSource(m Manifest, rc *redis.Client, ttl, timeout time.Duration) *Source {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Source{
		manifest: m,
		client:   &http.Client{Timeout: timeout},
		rc:       rc,
		ttl:      ttl,
		memo:     map[Kind][]geo.Feature{},
	}
}

// Features 返回某类型文档解码后的要素
func (s *Source) Features(ctx context.Context, k Kind) ([]geo.Feature, error) {
	s.mu.Lock()
	if fs, ok := s.memo[k]; ok {
		s.mu.Unlock()
		return fs, nil
	}
	s.mu.Unlock()

	tBegin := time.Now()
	fs, n, err := s.load(ctx, k, false)
	if err != nil {
		return nil, err
	}
	metrics.AtlasDurationMs.Observe(float64(time.Since(tBegin).Milliseconds()))
	logger.L().Info("atlas_loaded", "kind", k, "features", len(fs), "bytes", n)

	s.mu.Lock()
	s.memo[k] = fs
	s.mu.Unlock()
	return fs, nil
}

// Invalidate 丢弃进程内的解码结果
func (s *Source) Invalidate(k Kind) {
	s.mu.Lock()
	delete(s.memo, k)
	s.mu.Unlock()
}

// 文档来源
const (
	originFile  = "file"
	originCache = "cache"
	originHTTP  = "http"
)

// 文档注释：读取并解码文档
// 背景：HTTP 获取的文档只有在解码成功后才写入 Redis，错误页或被截断的文档不会进入缓存。
// 约束：force 时跳过 Redis 读取；Redis 中的文档解码失败时删除该键，下次从上游重新获取。返回要素与文档字节数。
func (s *Source) load(ctx context.Context, k Kind, force bool) ([]geo.Feature, int, error) {
	e, err := s.manifest.Lookup(k)
	if err != nil {
		return nil, 0, err
	}
	doc, origin, err := s.document(ctx, k, e, force)
	if err != nil {
		return nil, 0, err
	}
	key := cacheKey(k, e.URL)
	fs, err := geo.Decode(doc, e.Object)
	if err != nil {
		metrics.AtlasFailTotal.WithLabelValues("decode").Inc()
		if origin == originCache {
			if derr := s.rc.Del(ctx, key).Err(); derr != nil {
				logger.L().Debug("atlas_cache_del_failed", "kind", k, "err", derr)
			}
			logger.L().Warn("atlas_cache_evicted", "kind", k, "err", err)
		}
		return nil, 0, fmt.Errorf("atlas: decode %s: %w", k, err)
	}
	if origin == originHTTP && s.rc != nil {
		if err := s.rc.Set(ctx, key, doc, s.ttl).Err(); err != nil {
			logger.L().Debug("atlas_cache_set_failed", "kind", k, "err", err)
		}
	}
	return fs, len(doc), nil
}

// document 读取原始文档并返回其来源；force 时跳过 Redis 读取
func (s *Source) document(ctx context.Context, k Kind, e Entry, force bool) ([]byte, string, error) {
	if e.Path != "" {
		b, err := os.ReadFile(e.Path)
		if err != nil {
			metrics.AtlasFailTotal.WithLabelValues(originFile).Inc()
			return nil, "", err
		}
		metrics.AtlasFetchTotal.WithLabelValues(originFile).Inc()
		return b, originFile, nil
	}
	if s.rc != nil && !force {
		if b, err := s.rc.Get(ctx, cacheKey(k, e.URL)).Bytes(); err == nil && len(b) > 0 {
			metrics.AtlasFetchTotal.WithLabelValues(originCache).Inc()
			logger.L().Debug("atlas_cache_hit", "kind", k)
			return b, originCache, nil
		}
	}
	b, err := s.fetch(ctx, e.URL)
	if err != nil {
		metrics.AtlasFailTotal.WithLabelValues(originHTTP).Inc()
		logger.L().Warn("atlas_fetch_failed", "kind", k, "url", e.URL, "err", err)
		return nil, "", err
	}
	metrics.AtlasFetchTotal.WithLabelValues(originHTTP).Inc()
	return b, originHTTP, nil
}

func (s *Source) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("atlas: %s returned %d", url, resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxDocBytes))
}

func cacheKey(k Kind, url string) string {
	h := sha1.Sum([]byte(url))
	return "atlas:" + string(k) + ":" + hex.EncodeToString(h[:8])
}

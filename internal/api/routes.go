// 包 api：集中注册地图事件的 HTTP 路由，主入口只负责挂载
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"visitmap/internal/atlas"
	"visitmap/internal/coloring"
	"visitmap/internal/continent"
	"visitmap/internal/geo"
	"visitmap/internal/locate"
	"visitmap/internal/logger"
	"visitmap/internal/mapview"
	"visitmap/internal/metrics"
)

// FeatureSource：按类型提供几何要素（atlas.Source 实现）
type FeatureSource interface {
	Features(ctx context.Context, k atlas.Kind) ([]geo.Feature, error)
}

// Deps：路由依赖；GeoIP 与 Redis 可为空
type Deps struct {
	Controller *mapview.Controller
	Atlas      FeatureSource
	Locator    *locate.Locator
	GeoIP      *locate.GeoIP
	Redis      *redis.Client
	// DedupeTTL 同一来源重复签到的抑制窗口；<=0 时使用 10 分钟
	DedupeTTL time.Duration
}

// 文档注释：路由处理器集合
// 背景：地图状态是单会话的事件模型；一个互斥锁串行化所有会改变或读取控制器的请求，保证“读类型 → 取要素 → 渲染”等多步序列不被打断。
// 约束：锁内可能发生首次几何文档下载，由 atlas 的超时限制上界。
type handlers struct {
	mu sync.Mutex
	Deps
}

// BuildRoutes 构建并返回 API 路由：独立 ServeMux 便于在主入口挂载到 API 前缀
func BuildRoutes(d Deps) *http.ServeMux {
	if d.Locator == nil {
		d.Locator = locate.NewFromEnv()
	}
	if d.DedupeTTL <= 0 {
		d.DedupeTTL = 10 * time.Minute
	}
	h := &handlers{Deps: d}
	mux := http.NewServeMux()
	handle(mux, "/state", http.MethodGet, h.state)
	handle(mux, "/categories", http.MethodGet, h.categories)
	handle(mux, "/mode", http.MethodPost, h.mode)
	handle(mux, "/category", http.MethodPost, h.category)
	handle(mux, "/click", http.MethodPost, h.click)
	handle(mux, "/hover", "", h.hover)
	handle(mux, "/back", http.MethodPost, h.back)
	handle(mux, "/continent", "", h.continent)
	handle(mux, "/reset", http.MethodPost, h.reset)
	handle(mux, "/render", http.MethodGet, h.render)
	handle(mux, "/progress", http.MethodGet, h.progress)
	handle(mux, "/viewport", http.MethodGet, h.viewport)
	handle(mux, "/checkin", http.MethodPost, h.checkin)
	return mux
}

// handle 注册路由并统一记录请求计数与耗时；method 为空时由处理器自行分派
func handle(mux *http.ServeMux, route, method string, fn http.HandlerFunc) {
	mux.HandleFunc(route, func(w http.ResponseWriter, r *http.Request) {
		if method != "" && r.Method != method {
			w.Header().Set("allow", method)
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		start := time.Now()
		metrics.RequestsTotal.WithLabelValues(route).Inc()
		fn(w, r)
		metrics.RequestDurationMs.Observe(float64(time.Since(start).Milliseconds()))
	})
}

func (h *handlers) state(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()
	writeJSON(w, http.StatusOK, h.Controller.Snapshot())
}

func (h *handlers) categories(w http.ResponseWriter, r *http.Request) {
	out := make([]categoryInfo, 0, len(coloring.Categories))
	for _, c := range coloring.Categories {
		out = append(out, categoryInfo{Name: c, Label: c.Label(), Color: c.Color()})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handlers) mode(w http.ResponseWriter, r *http.Request) {
	var req modeRequest
	if !decode(w, r, &req) {
		return
	}
	m, err := mapview.ParseMode(req.Mode)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Controller.SetMode(m)
	writeJSON(w, http.StatusOK, h.Controller.Snapshot())
}

func (h *handlers) category(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if !decode(w, r, &req) {
		return
	}
	cat, ok := coloring.ParseCategory(req.Category)
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown category")
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Controller.SetCategory(cat)
	writeJSON(w, http.StatusOK, h.Controller.Snapshot())
}

func (h *handlers) click(w http.ResponseWriter, r *http.Request) {
	var req regionRequest
	if !decode(w, r, &req) {
		return
	}
	if req.ID == "" {
		writeError(w, http.StatusBadRequest, "id required")
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	changed := h.Controller.OnRegionClick(req.ID, req.Name, req.Fips)
	writeJSON(w, http.StatusOK, clickResponse{Changed: changed, State: h.Controller.Snapshot()})
}

func (h *handlers) hover(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var req regionRequest
		if !decode(w, r, &req) {
			return
		}
		h.mu.Lock()
		h.Controller.OnHoverEnter(req.ID, req.Name)
		h.mu.Unlock()
	case http.MethodDelete:
		h.mu.Lock()
		h.Controller.OnHoverLeave()
		h.mu.Unlock()
	default:
		w.Header().Set("allow", "POST, DELETE")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) back(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Controller.BackToStateSelection()
	writeJSON(w, http.StatusOK, h.Controller.Snapshot())
}

func (h *handlers) continent(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var req continentRequest
		if !decode(w, r, &req) {
			return
		}
		h.mu.Lock()
		defer h.mu.Unlock()
		if req.Continent == "" {
			h.Controller.ClearContinent()
		} else if err := h.Controller.SelectContinent(continent.Tag(req.Continent)); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	case http.MethodDelete:
		h.mu.Lock()
		defer h.mu.Unlock()
		h.Controller.ClearContinent()
	default:
		w.Header().Set("allow", "POST, DELETE")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, h.Controller.Snapshot())
}

func (h *handlers) reset(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Controller.Reset()
	writeJSON(w, http.StatusOK, h.Controller.Snapshot())
}

func (h *handlers) render(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()
	kind := h.Controller.GeometryKind()
	features, err := h.Atlas.Features(r.Context(), kind)
	if err != nil {
		logger.L().Error("render_atlas_error", "kind", kind, "err", err)
		writeError(w, http.StatusBadGateway, "geometry unavailable")
		return
	}
	regions := h.Controller.Render(features)
	writeJSON(w, http.StatusOK, renderResponse{
		Kind:        kind,
		RegionCount: h.Controller.Snapshot().RegionCount,
		Regions:     regions,
	})
}

func (h *handlers) progress(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()
	writeJSON(w, http.StatusOK, h.Controller.Progress())
}

func (h *handlers) viewport(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Controller.Viewport())
}

// decode 解析 JSON 请求体；空请求体视为零值
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.Body == nil {
		return true
	}
	err := json.NewDecoder(io.LimitReader(r.Body, 1<<16)).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	writeError(w, http.StatusBadRequest, "invalid json")
	return false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("content-type", "application/json; charset=utf-8")
	w.Header().Set("cache-control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

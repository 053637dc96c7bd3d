package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "visitmap_requests_total",
		Help: "Total number of API requests by route",
	}, []string{"route"})
	RequestDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "visitmap_request_duration_ms",
		Help:    "API request duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000},
	})
	TogglesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "visitmap_toggles_total",
		Help: "Coloring toggles by map kind and result (set|cleared)",
	}, []string{"kind", "result"})
	ResetsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "visitmap_resets_total",
		Help: "Total number of coloring resets",
	})
	PersistErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "visitmap_persist_errors_total",
		Help: "Persistence write failures by operation",
	}, []string{"op"})
	FilterRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "visitmap_filter_runs_total",
		Help: "Region filter executions by scope",
	}, []string{"scope"})
	FilterFallbackTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "visitmap_filter_fallback_total",
		Help: "Continent filters that matched nothing and fell back to a prefix slice",
	})
	ViewportFitsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "visitmap_viewport_fits_total",
		Help: "Viewport fit computations by outcome (applied|stale|failed)",
	}, []string{"outcome"})
	AtlasFetchTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "visitmap_atlas_fetch_total",
		Help: "Geometry document loads by source (cache|http|file)",
	}, []string{"source"})
	AtlasFailTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "visitmap_atlas_fail_total",
		Help: "Geometry document load failures by source",
	}, []string{"source"})
	AtlasDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "visitmap_atlas_duration_ms",
		Help:    "Geometry document load duration in milliseconds",
		Buckets: []float64{1, 5, 10, 50, 100, 250, 500, 1000, 5000},
	})
	LocateTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "visitmap_locate_total",
		Help: "Check-in lookups by outcome (cache|hit|nearest|miss)",
	}, []string{"outcome"})
)

func init() {
	prometheus.MustRegister(RequestsTotal)
	prometheus.MustRegister(RequestDurationMs)
	prometheus.MustRegister(TogglesTotal)
	prometheus.MustRegister(ResetsTotal)
	prometheus.MustRegister(PersistErrorsTotal)
	prometheus.MustRegister(FilterRunsTotal)
	prometheus.MustRegister(FilterFallbackTotal)
	prometheus.MustRegister(ViewportFitsTotal)
	prometheus.MustRegister(AtlasFetchTotal)
	prometheus.MustRegister(AtlasFailTotal)
	prometheus.MustRegister(AtlasDurationMs)
	prometheus.MustRegister(LocateTotal)
}

// 文档注释：返回 Prometheus 指标监听器
// 背景：统一暴露注册指标供抓取；在主入口挂载到 {API_BASE}/metrics。
func Handler() http.Handler { return promhttp.Handler() }

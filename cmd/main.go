// 程序入口：仅负责读取配置、初始化依赖并启动服务；路由注册在 internal/api
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"visitmap/internal/api"
	"visitmap/internal/atlas"
	"visitmap/internal/coloring"
	"visitmap/internal/filter"
	"visitmap/internal/locate"
	"visitmap/internal/logger"
	"visitmap/internal/mapview"
	"visitmap/internal/metrics"
	"visitmap/internal/middleware"
	"visitmap/internal/store"
	"visitmap/internal/utils"
	"visitmap/internal/viewport"
)

func main() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join("data", "env", ".env"))
	l := logger.Setup()
	l.Debug("log_init_ok")
	apiBase := utils.EnvOr("API_BASE", "/api")
	l.Debug("config_api_base", "base", apiBase)

	ctx := context.Background()
	backend, err := store.Open(ctx)
	if err != nil {
		l.Error("store_open_error", "err", err)
		os.Exit(1)
	}
	defer backend.Close()

	colors := coloring.NewStore(backend)
	if err := colors.Restore(ctx, backend); err != nil {
		l.Error("store_restore_error", "err", err)
	}

	rc := utils.OptionalRedisFromEnv()
	if rc == nil {
		l.Info("redis_disabled")
	} else if err := rc.Ping(ctx).Err(); err != nil {
		l.Error("redis_ping_error", "err", err)
		rc = nil
	} else {
		l.Info("redis_ping_ok")
	}

	manifest := atlas.DefaultManifest()
	if p := os.Getenv("ATLAS_MANIFEST"); p != "" {
		m, err := atlas.LoadManifest(p)
		if err != nil {
			l.Error("atlas_manifest_error", "path", p, "err", err)
			os.Exit(1)
		}
		manifest = m
	}
	src := atlas.NewSource(manifest, rc,
		utils.EnvSeconds("ATLAS_CACHE_TTL_S", 86400),
		utils.EnvSeconds("ATLAS_HTTP_TIMEOUT_S", 10))
	if hour := utils.EnvInt("ATLAS_REFRESH_HOUR", 3); hour >= 0 {
		loc, err := time.LoadLocation(utils.EnvOr("ATLAS_REFRESH_TZ", "UTC"))
		if err != nil {
			l.Warn("atlas_refresh_tz_invalid", "err", err)
			loc = time.UTC
		}
		src.StartWeekly(ctx, loc, hour)
	}

	fitter := viewport.NewFitter()
	fitter.Margin = utils.EnvFloat("VIEWPORT_MARGIN", fitter.Margin)
	fitter.ContinentMin = utils.EnvFloat("CONTINENT_ZOOM_MIN", fitter.ContinentMin)
	fitter.ContinentMax = utils.EnvFloat("CONTINENT_ZOOM_MAX", fitter.ContinentMax)
	delay := time.Duration(utils.EnvInt("VIEWPORT_DELAY_MS", 100)) * time.Millisecond
	sched := viewport.NewScheduler(fitter, nil, delay)
	sched.OnApply = func(v viewport.View) { l.Debug("viewport_applied", "zoom", v.Zoom) }
	ctl := mapview.NewController(colors, sched, utils.EnvInt("FILTER_FALLBACK_LIMIT", filter.DefaultFallbackLimit))

	gip, err := locate.OpenGeoIPFromEnv()
	if err != nil && !errors.Is(err, locate.ErrNoDatabase) {
		l.Error("geoip_open_error", "err", err)
	}
	defer gip.Close()

	apiMux := api.BuildRoutes(api.Deps{
		Controller: ctl,
		Atlas:      src,
		Locator:    locate.NewFromEnv(),
		GeoIP:      gip,
		Redis:      rc,
		DedupeTTL:  utils.EnvSeconds("CHECKIN_DEDUPE_TTL_S", 600),
	})
	mux := http.NewServeMux()
	mux.Handle(apiBase+"/", http.StripPrefix(apiBase, apiMux))
	mux.Handle(apiBase+"/metrics", metrics.Handler())
	if ui := utils.EnvOr("UI_DIST", filepath.Join("ui", "dist")); dirExists(ui) {
		l.Debug("config_ui_dir", "dir", ui)
		mux.Handle("/", http.FileServer(http.Dir(ui)))
	}
	mux.HandleFunc("/config.js", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("content-type", "application/javascript; charset=utf-8")
		w.Header().Set("cache-control", "no-store")
		_, _ = w.Write([]byte("window.__API_BASE__='" + apiBase + "'\n"))
	})

	addr := utils.EnvOr("ADDR", ":8080")
	handler := logger.AccessMiddleware(l)(mux)
	handler = middleware.Wrap(handler)
	s := &http.Server{Addr: addr, Handler: handler, ReadHeaderTimeout: 10 * time.Second}
	if strings.EqualFold(os.Getenv("TLS_ENABLE"), "true") {
		certPath := utils.EnvOr("TLS_CERT_PATH", filepath.Join("data", "certs", "server.crt"))
		keyPath := utils.EnvOr("TLS_KEY_PATH", filepath.Join("data", "certs", "server.key"))
		if err := utils.EnsureSelfSignedCert(certPath, keyPath, utils.CertOptionsFromEnv()); err != nil {
			l.Error("tls_cert_error", "err", err)
			os.Exit(1)
		}
		l.Info("listening_tls", "addr", addr, "cert", certPath)
		if err := s.ListenAndServeTLS(certPath, keyPath); err != nil {
			l.Error("server_error", "err", err)
		}
		return
	}
	l.Info("listening", "addr", addr)
	if err := s.ListenAndServe(); err != nil {
		l.Error("server_error", "err", err)
	}
}

func dirExists(p string) bool {
	st, err := os.Stat(p)
	return err == nil && st.IsDir()
}

package api

import (
	"errors"
	"net/http"
	"strings"

	"visitmap/internal/geo"
	"visitmap/internal/locate"
	"visitmap/internal/logger"
	"visitmap/internal/middleware"
	"visitmap/internal/region"
)

var errNotLocated = errors.New("api: location matches no region")

// 文档注释：签到（按坐标或 IP 将所在区域着色）
// 背景：坐标优先级为 请求体坐标 → 边缘节点坐标头 → GeoIP 坐标；世界视图下国家代码可直接匹配要素，无需坐标。
// 约束：签到只着色不取消；同一来源重复签到在去重窗口内返回 duplicate 且不改变状态。
func (h *handlers) checkin(w http.ResponseWriter, r *http.Request) {
	var req checkinRequest
	if !decode(w, r, &req) {
		return
	}
	if (req.Lon == nil) != (req.Lat == nil) {
		writeError(w, http.StatusBadRequest, "lon and lat must be given together")
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	gk := h.Controller.GeometryKind()
	features, err := h.Atlas.Features(r.Context(), gk)
	if err != nil {
		logger.L().Error("checkin_atlas_error", "kind", gk, "err", err)
		writeError(w, http.StatusBadGateway, "geometry unavailable")
		return
	}
	kind := h.Controller.RegionKind()
	res, source, err := h.locateRequest(r, req, features, kind)
	switch {
	case errors.Is(err, locate.ErrBadIP):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, locate.ErrNoDatabase):
		writeError(w, http.StatusServiceUnavailable, "no location source available")
		return
	case err != nil:
		logger.L().Debug("checkin_not_located", "source", source, "kind", kind, "err", err)
		writeError(w, http.StatusNotFound, errNotLocated.Error())
		return
	}

	who := req.IP
	if who == "" {
		who = middleware.ClientIP(r)
	}
	out := checkinResponse{Source: source, Region: res}
	if !h.firstCheckin(r.Context(), who, string(kind), res.ID) {
		out.Duplicate = true
		out.State = h.Controller.Snapshot()
		writeJSON(w, http.StatusOK, out)
		return
	}
	out.Changed = h.Controller.CheckIn(res.ID, res.Name, stateFipsOf(features, kind, res.ID))
	out.State = h.Controller.Snapshot()
	logger.L().Info("checkin_ok", "source", source, "kind", kind, "id", res.ID, "approx", res.Approx, "changed", out.Changed)
	writeJSON(w, http.StatusOK, out)
}

func (h *handlers) locateRequest(r *http.Request, req checkinRequest, features []geo.Feature, kind region.Kind) (locate.Result, string, error) {
	if req.Lon != nil {
		return h.byCoords(features, kind, *req.Lon, *req.Lat, "coords")
	}
	if req.IP == "" {
		if edge, ok := middleware.FromContext(r.Context()); ok {
			if edge.HasCoords {
				if res, src, err := h.byCoords(features, kind, edge.Longitude, edge.Latitude, "edge"); err == nil {
					return res, src, nil
				}
			}
			if kind == region.KindCountry && (edge.CountryA2 != "" || edge.CountryA3 != "") {
				if res, ok := findCountry(features, edge.CountryA2, edge.CountryA3, edge.CountryName); ok {
					return res, "edge", nil
				}
			}
		}
	}
	ip := req.IP
	if ip == "" {
		ip = middleware.ClientIP(r)
	}
	c, err := h.GeoIP.Country(ip)
	if err != nil {
		return locate.Result{}, "geoip", err
	}
	if kind == region.KindCountry && c.ISO2 != "" {
		if res, ok := findCountry(features, c.ISO2, "", c.Name); ok {
			return res, "geoip", nil
		}
	}
	if !c.HasCoords {
		return locate.Result{}, "geoip", errNotLocated
	}
	return h.byCoords(features, kind, c.Longitude, c.Latitude, "geoip")
}

func (h *handlers) byCoords(features []geo.Feature, kind region.Kind, lon, lat float64, source string) (locate.Result, string, error) {
	res, ok := h.Locator.RegionAt(features, kind, lon, lat)
	if !ok {
		return locate.Result{}, source, errNotLocated
	}
	return res, source, nil
}

// findCountry 按 ISO 代码或名称匹配国家要素
func findCountry(features []geo.Feature, iso2, iso3, name string) (locate.Result, bool) {
	for _, f := range features {
		a2, a3, n := region.CountryCodes(f)
		if (iso2 != "" && strings.EqualFold(a2, iso2)) ||
			(iso3 != "" && strings.EqualFold(a3, iso3)) ||
			(name != "" && strings.EqualFold(n, name)) {
			id, label := region.Identify(f, region.KindCountry)
			return locate.Result{ID: id, Name: label, Kind: region.KindCountry}, true
		}
	}
	return locate.Result{}, false
}

// stateFipsOf 州层级结果需要携带 FIPS，供县模式选州
func stateFipsOf(features []geo.Feature, kind region.Kind, id string) string {
	if kind != region.KindState {
		return ""
	}
	for _, f := range features {
		if fid, _ := region.Identify(f, kind); fid == id {
			return region.StateFips(f)
		}
	}
	return ""
}

package locate

import (
	"errors"
	"net"
	"os"
	"strings"

	"github.com/oschwald/geoip2-golang"

	"visitmap/internal/logger"
)

var (
	ErrNoDatabase = errors.New("locate: geoip database not configured")
	ErrBadIP      = errors.New("locate: invalid ip")
)

// Country：IP 定位得到的国家信息
type Country struct {
	ISO2      string  `json:"iso2"`
	Name      string  `json:"name"`
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
	HasCoords bool    `json:"has_coords"`
}

// 文档注释：MaxMind mmdb 查询
// 背景：check-in 可以只提供 IP；City 库给出国家与大致坐标，Country 库只给出国家。
// 约束：City 查询失败时回退 Country 查询；私有/保留地址通常没有国家，返回空 ISO2。
type GeoIP struct {
	r *geoip2.Reader
}

// OpenGeoIP 打开 mmdb；path 为空时返回 ErrNoDatabase
func OpenGeoIP(path string) (*GeoIP, error) {
	if path == "" {
		return nil, ErrNoDatabase
	}
	r, err := geoip2.Open(path)
	if err != nil {
		return nil, err
	}
	logger.L().Info("geoip_open_ok", "path", path, "type", r.Metadata().DatabaseType)
	return &GeoIP{r: r}, nil
}

// OpenGeoIPFromEnv 读取 GEOIP_DB_PATH
func OpenGeoIPFromEnv() (*GeoIP, error) { return OpenGeoIP(os.Getenv("GEOIP_DB_PATH")) }

func (g *GeoIP) Country(ip string) (Country, error) {
	if g == nil || g.r == nil {
		return Country{}, ErrNoDatabase
	}
	addr := net.ParseIP(strings.TrimSpace(ip))
	if addr == nil {
		return Country{}, ErrBadIP
	}
	if rec, err := g.r.City(addr); err == nil && rec.Country.IsoCode != "" {
		return Country{
			ISO2:      rec.Country.IsoCode,
			Name:      rec.Country.Names["en"],
			Latitude:  rec.Location.Latitude,
			Longitude: rec.Location.Longitude,
			HasCoords: rec.Location.Latitude != 0 || rec.Location.Longitude != 0,
		}, nil
	}
	rec, err := g.r.Country(addr)
	if err != nil {
		return Country{}, err
	}
	return Country{ISO2: rec.Country.IsoCode, Name: rec.Country.Names["en"]}, nil
}

func (g *GeoIP) Close() error {
	if g == nil || g.r == nil {
		return nil
	}
	return g.r.Close()
}

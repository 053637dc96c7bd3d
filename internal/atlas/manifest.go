// 包 atlas：按地图类型获取几何文档（HTTP / 本地文件），可选 Redis 缓存原始文档
package atlas

import (
	"errors"
	"os"

	"gopkg.in/yaml.v3"
)

// Kind：几何文档类型
type Kind string

const (
	KindStates    Kind = "states"
	KindCounties  Kind = "counties"
	KindCountries Kind = "countries"
)

var ErrUnknownKind = errors.New("atlas: unknown geometry kind")

// Entry：一个几何文档的来源；Path 非空时优先读取本地文件
type Entry struct {
	URL    string `yaml:"url,omitempty"`
	Path   string `yaml:"path,omitempty"`
	Object string `yaml:"object,omitempty"`
}

// Manifest：几何文档清单
type Manifest struct {
	Sources map[Kind]Entry `yaml:"sources"`
}

// DefaultManifest 使用 us-atlas / world-atlas 的公开 TopoJSON
func DefaultManifest() Manifest {
	return Manifest{Sources: map[Kind]Entry{
		KindStates:    {URL: "https://cdn.jsdelivr.net/npm/us-atlas@3/states-10m.json", Object: "states"},
		KindCounties:  {URL: "https://cdn.jsdelivr.net/npm/us-atlas@3/counties-10m.json", Object: "counties"},
		KindCountries: {URL: "https://cdn.jsdelivr.net/npm/world-atlas@2/countries-110m.json", Object: "countries"},
	}}
}

// 文档注释：读取 YAML 清单
// 约束：清单中未出现的类型沿用默认来源；同一类型的字段整体覆盖，不做逐字段合并。
func LoadManifest(path string) (Manifest, error) {
	m := DefaultManifest()
	if path == "" {
		return m, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return m, err
	}
	var override Manifest
	if err := yaml.Unmarshal(b, &override); err != nil {
		return m, err
	}
	for k, e := range override.Sources {
		m.Sources[k] = e
	}
	return m, nil
}

// Lookup 返回类型对应的来源
func (m Manifest) Lookup(k Kind) (Entry, error) {
	e, ok := m.Sources[k]
	if !ok || (e.URL == "" && e.Path == "") {
		return Entry{}, ErrUnknownKind
	}
	return e, nil
}

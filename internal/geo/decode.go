package geo

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ErrUnsupportedDocument 表示文档既不是 GeoJSON 也不是 TopoJSON
var ErrUnsupportedDocument = errors.New("geo: unsupported document")

// 文档注释：解码几何文档为要素列表
// 背景：地图数据常以 GeoJSON（Natural Earth 导出）或 TopoJSON（us-atlas/world-atlas）发布；统一转换为 Feature 以便后续识别与过滤。
// 约束：object 仅对 TopoJSON 生效，为空时取唯一对象或按名称排序的第一个；几何仅保留 Polygon/MultiPolygon（GeometryCollection 递归展开）。
func Decode(doc []byte, object string) ([]Feature, error) {
	var root map[string]any
	if err := json.Unmarshal(doc, &root); err != nil {
		return nil, fmt.Errorf("geo: parse document: %w", err)
	}
	switch strings.ToLower(getStr(root, "type")) {
	case "featurecollection":
		arr, _ := root["features"].([]any)
		out := make([]Feature, 0, len(arr))
		for _, it := range arr {
			if f, ok := it.(map[string]any); ok {
				out = append(out, featureFromGeoJSON(f, len(out)))
			}
		}
		return out, nil
	case "feature":
		return []Feature{featureFromGeoJSON(root, 0)}, nil
	case "topology":
		return decodeTopology(root, object)
	}
	return nil, ErrUnsupportedDocument
}

func featureFromGeoJSON(f map[string]any, idx int) Feature {
	out := Feature{Key: syntheticKey(idx), ID: Text(f["id"])}
	if p, ok := f["properties"].(map[string]any); ok {
		out.Properties = p
	}
	if g, ok := f["geometry"].(map[string]any); ok {
		addGeoJSONGeometry(&out.Geometry, g)
	}
	return out
}

func addGeoJSONGeometry(dst *Geometry, g map[string]any) {
	switch strings.ToLower(getStr(g, "type")) {
	case "polygon":
		coords, _ := g["coordinates"].([]any)
		dst.Polygons = append(dst.Polygons, polygonFromCoords(coords))
	case "multipolygon":
		coords, _ := g["coordinates"].([]any)
		for _, part := range coords {
			if rings, ok := part.([]any); ok {
				dst.Polygons = append(dst.Polygons, polygonFromCoords(rings))
			}
		}
	case "geometrycollection":
		arr, _ := g["geometries"].([]any)
		for _, it := range arr {
			if sub, ok := it.(map[string]any); ok {
				addGeoJSONGeometry(dst, sub)
			}
		}
	}
}

func polygonFromCoords(rings []any) Polygon {
	var poly Polygon
	for _, ring := range rings {
		arr, ok := ring.([]any)
		if !ok {
			continue
		}
		rr := make([]Point, 0, len(arr))
		for _, p := range arr {
			if vv, ok := p.([]any); ok && len(vv) >= 2 {
				rr = append(rr, Point{Lon: toFloat(vv[0]), Lat: toFloat(vv[1])})
			}
		}
		poly.Rings = append(poly.Rings, rr)
	}
	return poly
}

// 文档注释：TopoJSON 拓扑解码
// 背景：弧段共享边界，量化坐标以增量编码存储；负索引 ~i 表示反向使用第 i 条弧。
// 约束：拼接相邻弧时去掉前一段的末点，避免重复顶点。
func decodeTopology(root map[string]any, object string) ([]Feature, error) {
	objects, _ := root["objects"].(map[string]any)
	if len(objects) == 0 {
		return nil, fmt.Errorf("geo: topology without objects: %w", ErrUnsupportedDocument)
	}
	if object == "" {
		names := make([]string, 0, len(objects))
		for k := range objects {
			names = append(names, k)
		}
		sort.Strings(names)
		object = names[0]
	}
	obj, ok := objects[object].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("geo: topology object %q not found", object)
	}
	arcs := decodeArcs(root)

	var geoms []map[string]any
	if strings.EqualFold(getStr(obj, "type"), "geometrycollection") {
		arr, _ := obj["geometries"].([]any)
		for _, it := range arr {
			if g, ok := it.(map[string]any); ok {
				geoms = append(geoms, g)
			}
		}
	} else {
		geoms = append(geoms, obj)
	}

	out := make([]Feature, 0, len(geoms))
	for _, g := range geoms {
		f := Feature{Key: syntheticKey(len(out)), ID: Text(g["id"])}
		if p, ok := g["properties"].(map[string]any); ok {
			f.Properties = p
		}
		addTopoGeometry(&f.Geometry, g, arcs)
		out = append(out, f)
	}
	return out, nil
}

func addTopoGeometry(dst *Geometry, g map[string]any, arcs [][]Point) {
	switch strings.ToLower(getStr(g, "type")) {
	case "polygon":
		rings, _ := g["arcs"].([]any)
		dst.Polygons = append(dst.Polygons, topoPolygon(rings, arcs))
	case "multipolygon":
		parts, _ := g["arcs"].([]any)
		for _, part := range parts {
			if rings, ok := part.([]any); ok {
				dst.Polygons = append(dst.Polygons, topoPolygon(rings, arcs))
			}
		}
	case "geometrycollection":
		arr, _ := g["geometries"].([]any)
		for _, it := range arr {
			if sub, ok := it.(map[string]any); ok {
				addTopoGeometry(dst, sub, arcs)
			}
		}
	}
}

func topoPolygon(rings []any, arcs [][]Point) Polygon {
	var poly Polygon
	for _, r := range rings {
		idxs, ok := r.([]any)
		if !ok {
			continue
		}
		var ring []Point
		for _, v := range idxs {
			i := int(toFloat(v))
			var arc []Point
			reversed := i < 0
			if reversed {
				i = ^i
			}
			if i < 0 || i >= len(arcs) {
				continue
			}
			arc = arcs[i]
			if len(ring) > 0 {
				ring = ring[:len(ring)-1]
			}
			if reversed {
				for k := len(arc) - 1; k >= 0; k-- {
					ring = append(ring, arc[k])
				}
			} else {
				ring = append(ring, arc...)
			}
		}
		poly.Rings = append(poly.Rings, ring)
	}
	return poly
}

func decodeArcs(root map[string]any) [][]Point {
	sx, sy, tx, ty := 1.0, 1.0, 0.0, 0.0
	quantized := false
	if t, ok := root["transform"].(map[string]any); ok {
		if s, ok := t["scale"].([]any); ok && len(s) >= 2 {
			sx, sy = toFloat(s[0]), toFloat(s[1])
			quantized = true
		}
		if tr, ok := t["translate"].([]any); ok && len(tr) >= 2 {
			tx, ty = toFloat(tr[0]), toFloat(tr[1])
		}
	}
	raw, _ := root["arcs"].([]any)
	out := make([][]Point, len(raw))
	for i, a := range raw {
		pts, _ := a.([]any)
		arc := make([]Point, 0, len(pts))
		var x, y float64
		for _, p := range pts {
			vv, ok := p.([]any)
			if !ok || len(vv) < 2 {
				continue
			}
			if quantized {
				x += toFloat(vv[0])
				y += toFloat(vv[1])
				arc = append(arc, Point{Lon: x*sx + tx, Lat: y*sy + ty})
			} else {
				arc = append(arc, Point{Lon: toFloat(vv[0]), Lat: toFloat(vv[1])})
			}
		}
		out[i] = arc
	}
	return out
}

func syntheticKey(idx int) string { return "geo-" + strconv.Itoa(idx) }

func getStr(m map[string]any, k string) string {
	if v, ok := m[k].(string); ok {
		return v
	}
	return ""
}

func toFloat(v any) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case float32:
		return float64(x)
	case int:
		return float64(x)
	case int64:
		return float64(x)
	case json.Number:
		f, _ := x.Float64()
		return f
	default:
		return 0
	}
}

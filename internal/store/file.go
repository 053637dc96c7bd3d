package store

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/vmihailenco/msgpack"

	"visitmap/internal/logger"
)

// 文档注释：快照文件后端
// 背景：全部桶以 msgpack 编码为单个文件，每次写入后整体重写；适合离线或单机场景。
// 约束：先写临时文件再 rename，写入中断不会破坏旧快照；文件不存在时视为空。
type File struct {
	mu   sync.Mutex
	path string
	data map[string]map[string]string
}

// OpenFile 读取快照；文件不存在时从空集合开始
func OpenFile(path string) (*File, error) {
	f := &File{path: path, data: map[string]map[string]string{}}
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return f, nil
		}
		return nil, err
	}
	if len(b) > 0 {
		if err := msgpack.Unmarshal(b, &f.data); err != nil {
			return nil, err
		}
	}
	if f.data == nil {
		f.data = map[string]map[string]string{}
	}
	logger.L().Debug("snapshot_open_ok", "path", path, "buckets", len(f.data))
	return f, nil
}

func (f *File) Load(_ context.Context, bucket string) (map[string]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]string, len(f.data[bucket]))
	for k, v := range f.data[bucket] {
		out[k] = v
	}
	return out, nil
}

func (f *File) Put(_ context.Context, bucket, id, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b := f.data[bucket]
	if b == nil {
		b = map[string]string{}
		f.data[bucket] = b
	}
	b[id] = value
	return f.flushLocked()
}

func (f *File) Delete(_ context.Context, bucket, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.data[bucket][id]; !ok {
		return nil
	}
	delete(f.data[bucket], id)
	if len(f.data[bucket]) == 0 {
		delete(f.data, bucket)
	}
	return f.flushLocked()
}

func (f *File) Clear(_ context.Context, bucket string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.data[bucket]; !ok {
		return nil
	}
	delete(f.data, bucket)
	return f.flushLocked()
}

func (f *File) Buckets(_ context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.data))
	for b := range f.data {
		out = append(out, b)
	}
	sort.Strings(out)
	return out, nil
}

func (f *File) Close() error { return nil }

func (f *File) flushLocked() error {
	b, err := msgpack.Marshal(f.data)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(f.path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, f.path)
}

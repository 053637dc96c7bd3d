package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"visitmap/internal/coloring"
	"visitmap/internal/store"
)

var (
	errUsage    = errors.New("usage")
	errBucket   = errors.New("unknown bucket")
	errValue    = errors.New("invalid value for bucket")
	errNotFound = errors.New("not found")
	errQuit     = errors.New("quit")
)

const defaultLimit = 50

// opener 打开目标后端（copy 使用）；测试中替换
type opener func(ctx context.Context, kind string) (store.Backend, error)

func printHelp(w io.Writer) {
	fmt.Fprintln(w, "commands:")
	fmt.Fprintln(w, "  get <bucket> <id>")
	fmt.Fprintln(w, "  set <bucket> <id> <value>")
	fmt.Fprintln(w, "  del <bucket> <id>")
	fmt.Fprintln(w, "  list [bucket] [limit]")
	fmt.Fprintln(w, "  buckets")
	fmt.Fprintln(w, "  reset")
	fmt.Fprintln(w, "  copy <dst-backend>")
	fmt.Fprintln(w, "  help")
	fmt.Fprintln(w, "  exit")
}

func knownBucket(b string) bool {
	for _, x := range coloring.Buckets() {
		if x == b {
			return true
		}
	}
	return false
}

// 文档注释：执行一条命令
// 背景：交互模式与单次命令模式共享；值写入前按桶校验，保证服务端恢复时不会丢弃条目。
// 约束：返回 errUsage 时已打印用法；返回 errQuit 表示结束交互。
func run(ctx context.Context, b store.Backend, open opener, parts []string, w io.Writer) error {
	if len(parts) == 0 {
		return nil
	}
	switch strings.ToLower(parts[0]) {
	case "exit", "quit":
		return errQuit
	case "help":
		printHelp(w)
	case "get":
		if len(parts) < 3 {
			fmt.Fprintln(w, "usage: get <bucket> <id>")
			return errUsage
		}
		vals, err := b.Load(ctx, parts[1])
		if err != nil {
			return err
		}
		v, ok := vals[parts[2]]
		if !ok {
			return errNotFound
		}
		fmt.Fprintln(w, v)
	case "set", "add":
		if len(parts) < 4 {
			fmt.Fprintln(w, "usage: set <bucket> <id> <value>")
			return errUsage
		}
		if !knownBucket(parts[1]) {
			return errBucket
		}
		if !coloring.ValidEntry(parts[1], parts[3]) {
			return errValue
		}
		if err := b.Put(ctx, parts[1], parts[2], parts[3]); err != nil {
			return err
		}
		fmt.Fprintln(w, "ok")
	case "del":
		if len(parts) < 3 {
			fmt.Fprintln(w, "usage: del <bucket> <id>")
			return errUsage
		}
		if err := b.Delete(ctx, parts[1], parts[2]); err != nil {
			return err
		}
		fmt.Fprintln(w, "ok")
	case "list":
		return list(ctx, b, parts[1:], w)
	case "buckets":
		bs, err := b.Buckets(ctx)
		if err != nil {
			return err
		}
		sort.Strings(bs)
		if len(bs) == 0 {
			fmt.Fprintln(w, "none")
		}
		for _, x := range bs {
			fmt.Fprintln(w, x)
		}
	case "reset":
		for _, x := range coloring.Buckets() {
			if err := b.Clear(ctx, x); err != nil {
				return err
			}
		}
		fmt.Fprintln(w, "ok")
	case "copy":
		if len(parts) < 2 {
			fmt.Fprintln(w, "usage: copy <dst-backend>")
			return errUsage
		}
		dst, err := open(ctx, parts[1])
		if err != nil {
			return err
		}
		defer dst.Close()
		n, err := store.Copy(ctx, dst, b)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "copied %d entries\n", n)
	default:
		fmt.Fprintln(w, "unknown command")
		return errUsage
	}
	return nil
}

func list(ctx context.Context, b store.Backend, args []string, w io.Writer) error {
	limit := defaultLimit
	var buckets []string
	for _, a := range args {
		if n, err := strconv.Atoi(a); err == nil && n > 0 {
			limit = n
			continue
		}
		buckets = append(buckets, a)
	}
	if len(buckets) == 0 {
		bs, err := b.Buckets(ctx)
		if err != nil {
			return err
		}
		sort.Strings(bs)
		buckets = bs
	}
	printed := 0
	for _, bucket := range buckets {
		vals, err := b.Load(ctx, bucket)
		if err != nil {
			return err
		}
		ids := make([]string, 0, len(vals))
		for id := range vals {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			if printed >= limit {
				return nil
			}
			fmt.Fprintf(w, "%s %s -> %s\n", bucket, id, vals[id])
			printed++
		}
	}
	return nil
}

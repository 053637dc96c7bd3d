// coloring-kv：着色持久化数据的运维命令行（查看、修改、清空、跨后端复制）
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"visitmap/internal/logger"
	"visitmap/internal/store"
)

func main() {
	var envFile, backend string
	var rest []string
	for i := 1; i < len(os.Args); i++ {
		switch {
		case os.Args[i] == "--env" && i+1 < len(os.Args):
			envFile = os.Args[i+1]
			i++
		case os.Args[i] == "--backend" && i+1 < len(os.Args):
			backend = os.Args[i+1]
			i++
		case strings.HasSuffix(os.Args[i], ".env"):
			envFile = os.Args[i]
		default:
			rest = append(rest, os.Args[i])
		}
	}
	if envFile != "" {
		_ = godotenv.Load(envFile)
	} else {
		_ = godotenv.Load(".env")
	}
	logger.Setup()
	if backend == "" {
		backend = os.Getenv("STORE_BACKEND")
	}
	ctx := context.Background()
	b, err := store.OpenKind(ctx, backend)
	if err != nil {
		fmt.Println("store error:", err)
		os.Exit(1)
	}
	defer b.Close()

	// 单次命令模式
	if len(rest) > 0 {
		if err := run(ctx, b, store.OpenKind, rest, os.Stdout); err != nil && !errors.Is(err, errQuit) {
			if !errors.Is(err, errUsage) {
				fmt.Println("error:", err)
			}
			os.Exit(1)
		}
		return
	}

	fmt.Println("coloring kv cli ready")
	printHelp(os.Stdout)
	in := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !in.Scan() {
			break
		}
		err := run(ctx, b, store.OpenKind, strings.Fields(in.Text()), os.Stdout)
		switch {
		case errors.Is(err, errQuit):
			return
		case err != nil && !errors.Is(err, errUsage):
			fmt.Println("error:", err)
		}
	}
}

package utils

import (
	"os"
	"strconv"
	"time"
)

// EnvOr 读取字符串环境变量，未设置时返回默认值
func EnvOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// EnvInt 读取整数环境变量；解析失败回退默认值
func EnvInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

// EnvFloat 读取浮点环境变量；解析失败回退默认值
func EnvFloat(k string, def float64) float64 {
	if v := os.Getenv(k); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

// EnvSeconds 读取以秒为单位的时长
func EnvSeconds(k string, def int) time.Duration {
	return time.Duration(EnvInt(k, def)) * time.Second
}

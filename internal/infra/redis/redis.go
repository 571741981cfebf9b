package redis

import (
	radix "github.com/mediocregopher/radix/v3"

	"github.com/example/gomarket/internal/config"
)

// Connect 建立 Redis 连接池，句柄由调用方往下传
func Connect(cfg *config.RedisConfig) (radix.Client, error) {
	return radix.NewPool("tcp", cfg.Addr, 10)
}

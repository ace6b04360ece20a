package database

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// InitRedis 初始化 Redis 连接
// 在线状态心跳走 Redis；连不上时返回 nil，调用方自动降级到数据库会话表
//
// 环境变量:
//
//	REDIS_ADDR     host:port (默认 localhost:6379)
//	REDIS_PASSWORD 可选密码
//	REDIS_DB       库编号 (默认 0)
func InitRedis() *redis.Client {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	dbNum := 0
	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		if n, err := strconv.Atoi(dbStr); err == nil {
			dbNum = n
		}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       dbNum,
	})

	// 短超时探活，失败不阻塞启动
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("Redis 连接失败，在线状态降级为数据库会话: %v", err)
		return nil
	}

	log.Println("Redis 连接成功 (Redis Connected Successfully)")
	return client
}

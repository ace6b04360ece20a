package utils

import (
	"time"

	"github.com/go-resty/resty/v2"
)

// NewRestyClient 创建配置好超时和 UA 的 Resty 客户端
// 它是全系统统一的外呼出口，重试等个性化配置由调用方自行追加
func NewRestyClient(timeout time.Duration) *resty.Client {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}

	return resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", "bazaar-market/1.0")
}

package redis

import "fmt"

// RateLimitUserKey 按登录用户限流的键名。scope 区分接口（checkout/login）。
func RateLimitUserKey(scope string, userID uint) string {
	return fmt.Sprintf("sneaker_shop:rate:%s:user:%d", scope, userID)
}

// RateLimitIPKey 未认证请求按来源 IP 限流的键名。
func RateLimitIPKey(scope, ip string) string {
	return fmt.Sprintf("sneaker_shop:rate:%s:ip:%s", scope, ip)
}

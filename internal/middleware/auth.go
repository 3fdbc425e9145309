package middleware

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"net/http"
	"strings"
	"time"

	"sneaker_shop/internal/model"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CookieName 会话 cookie 名称。
const CookieName = "session_token"

const ctxUserKey = "auth_user"

// NewSessionToken 生成 32 字节随机会话令牌（base64url，无填充）。
func NewSessionToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// HashToken 明文令牌的 sha256 十六进制；库里只存哈希。
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// Auth 尝试从 cookie 或 Bearer 头解析会话并挂载用户。
// 解析失败只是匿名放行，鉴权由 RequireAuth/RequireAdmin 负责。
func Auth(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := sessionToken(c)
		if token == "" {
			c.Next()
			return
		}

		var s model.UserSession
		err := db.WithContext(c.Request.Context()).
			Preload("User").
			Where("token_hash = ?", HashToken(token)).
			First(&s).Error
		if err != nil || s.User == nil {
			c.Next()
			return
		}
		if time.Now().After(s.ExpiresAt) || !s.User.IsActive {
			c.Next()
			return
		}

		c.Set(ctxUserKey, *s.User)
		c.Next()
	}
}

// CurrentUser 读取 Auth 中间件挂载的用户。
func CurrentUser(c *gin.Context) (model.User, bool) {
	v, ok := c.Get(ctxUserKey)
	if !ok {
		return model.User{}, false
	}
	u, ok := v.(model.User)
	return u, ok
}

// RequireAuth 未登录直接 401。
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentUser(c); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": 401, "msg": "请先登录"})
			return
		}
		c.Next()
	}
}

// RequireAdmin 仅 admin 角色可通过；未登录 401，非管理员 403。
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		u, ok := CurrentUser(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": 401, "msg": "请先登录"})
			return
		}
		if u.Role != model.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"code": 403, "msg": "仅限管理员"})
			return
		}
		c.Next()
	}
}

// sessionToken 依次尝试 cookie 与 Authorization: Bearer。
func sessionToken(c *gin.Context) string {
	if v, err := c.Cookie(CookieName); err == nil && v != "" {
		return v
	}
	h := strings.TrimSpace(c.GetHeader("Authorization"))
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

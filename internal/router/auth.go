package router

import (
	"errors"
	"net/http"
	"time"

	"sneaker_shop/internal/config"
	"sneaker_shop/internal/middleware"
	"sneaker_shop/internal/model"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// register 注册并自动登录（下发会话 cookie）。
func register(db *gorm.DB, cfg config.AppConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Email     string `json:"email" binding:"required,email"`
			Password  string `json:"password" binding:"required,min=8"`
			FirstName string `json:"first_name" binding:"omitempty,max=100"`
			LastName  string `json:"last_name" binding:"omitempty,max=100"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": err.Error()})
			return
		}

		var exists model.User
		err := db.Where("email = ?", req.Email).First(&exists).Error
		if err == nil {
			c.JSON(http.StatusConflict, gin.H{"code": 409, "msg": "邮箱已被注册"})
			return
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), cfg.BcryptCost)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
			return
		}

		u := &model.User{
			Email:        req.Email,
			PasswordHash: string(hash),
			FirstName:    req.FirstName,
			LastName:     req.LastName,
			Role:         model.RoleCustomer,
			IsActive:     true,
		}
		if err := db.Create(u).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
			return
		}

		token, err := openSession(c, db, u.ID, cfg.SessionTTL)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
			return
		}

		audit(db, &u.ID, "AUTH_REGISTER", "")
		c.JSON(http.StatusCreated, gin.H{"code": 0, "data": gin.H{
			"id":    u.ID,
			"email": u.Email,
			"token": token,
		}})
	}
}

// login 校验密码并下发新会话。
func login(db *gorm.DB, cfg config.AppConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Email    string `json:"email" binding:"required,email"`
			Password string `json:"password" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": err.Error()})
			return
		}

		var u model.User
		err := db.Where("email = ?", req.Email).First(&u).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// 不区分“账号不存在”与“密码错误”，避免账号枚举。
			c.JSON(http.StatusUnauthorized, gin.H{"code": 401, "msg": "邮箱或密码错误"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
			return
		}
		if !u.IsActive {
			c.JSON(http.StatusUnauthorized, gin.H{"code": 401, "msg": "邮箱或密码错误"})
			return
		}
		if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"code": 401, "msg": "邮箱或密码错误"})
			return
		}

		token, err := openSession(c, db, u.ID, cfg.SessionTTL)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
			return
		}

		audit(db, &u.ID, "AUTH_LOGIN", "")
		c.JSON(http.StatusOK, gin.H{"code": 0, "data": gin.H{"token": token}})
	}
}

// logout 吊销当前会话（按 token 哈希删除）并清 cookie。
func logout(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, err := c.Cookie(middleware.CookieName); err == nil && token != "" {
			_ = db.Where("token_hash = ?", middleware.HashToken(token)).
				Delete(&model.UserSession{}).Error
		}
		c.SetCookie(middleware.CookieName, "", -1, "/", "", false, true)

		var userID *uint
		if u, ok := middleware.CurrentUser(c); ok {
			userID = &u.ID
		}
		audit(db, userID, "AUTH_LOGOUT", "")
		c.JSON(http.StatusOK, gin.H{"code": 0})
	}
}

// me 返回当前登录用户。
func me() gin.HandlerFunc {
	return func(c *gin.Context) {
		u, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"code": 401, "msg": "请先登录"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"code": 0, "data": u})
	}
}

// openSession 创建会话记录并设置 httpOnly cookie，返回明文 token。
func openSession(c *gin.Context, db *gorm.DB, userID uint, ttl time.Duration) (string, error) {
	token, err := middleware.NewSessionToken()
	if err != nil {
		return "", err
	}
	s := &model.UserSession{
		UserID:    userID,
		TokenHash: middleware.HashToken(token),
		ExpiresAt: time.Now().Add(ttl),
	}
	if err := db.Create(s).Error; err != nil {
		return "", err
	}
	c.SetCookie(middleware.CookieName, token, int(ttl.Seconds()), "/", "", false, true)
	return token, nil
}

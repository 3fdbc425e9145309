package router

import (
	"log"
	"net/http"
	"strconv"

	"sneaker_shop/internal/model"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// pathID 解析路径整型参数；非法时写 400 并返回 false。
func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": name + " 无效"})
		return 0, false
	}
	return uint(id), true
}

// audit 写审计流水，失败只记日志不影响请求。
func audit(db *gorm.DB, userID *uint, action, details string) {
	row := &model.AuditLog{UserID: userID, Action: action, Details: details}
	if err := db.Create(row).Error; err != nil {
		log.Printf("audit %s: %v", action, err)
	}
}

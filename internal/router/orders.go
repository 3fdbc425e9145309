package router

import (
	"errors"
	"fmt"
	"net/http"

	"sneaker_shop/internal/middleware"
	"sneaker_shop/internal/model"
	"sneaker_shop/internal/order"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// listOrders 当前用户订单列表（含订单行），新单在前。
func listOrders(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, _ := middleware.CurrentUser(c)

		var list []model.Order
		err := db.Where("user_id = ?", u.ID).
			Preload("Items").
			Order("created_at desc").
			Find(&list).Error
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"code": 0, "data": list})
	}
}

// getOrder 订单详情，只能看自己的。
func getOrder(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, _ := middleware.CurrentUser(c)

		id, ok := pathID(c, "id")
		if !ok {
			return
		}

		var o model.Order
		err := db.Where("id = ? AND user_id = ?", id, u.ID).
			Preload("Items").
			First(&o).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"code": 404, "msg": "订单不存在"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"code": 0, "data": o})
	}
}

// checkout 结算入口：服务端读购物车，body 为空。
// 校验错误逐类映射到 400，基础设施错误 500。
func checkout(pipeline *order.Pipeline) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, _ := middleware.CurrentUser(c)

		created, err := pipeline.Checkout(c.Request.Context(), u.ID)
		if err != nil {
			var invalid *order.InvalidProductError
			var stock *order.InsufficientStockError
			switch {
			case errors.Is(err, order.ErrEmptyCart):
				c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": "购物车为空"})
			case errors.As(err, &invalid):
				c.JSON(http.StatusBadRequest, gin.H{
					"code": 400,
					"msg":  fmt.Sprintf("商品无效（variant %d）", invalid.VariantID),
				})
			case errors.As(err, &stock):
				c.JSON(http.StatusBadRequest, gin.H{
					"code": 400,
					"msg":  fmt.Sprintf("variant %d 库存不足（剩余 %d，需要 %d）", stock.VariantID, stock.Available, stock.Requested),
				})
			default:
				c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
			}
			return
		}

		c.JSON(http.StatusCreated, gin.H{"code": 0, "data": created})
	}
}

// payOrder 模拟支付。已支付订单重复调用是幂等空操作。
func payOrder(pipeline *order.Pipeline) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, _ := middleware.CurrentUser(c)

		id, ok := pathID(c, "id")
		if !ok {
			return
		}

		var req struct {
			Method string `json:"method"`
		}
		// body 可省略，默认 card
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": err.Error()})
				return
			}
		}

		o, err := pipeline.Pay(c.Request.Context(), u.ID, id, req.Method)
		if errors.Is(err, order.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"code": 404, "msg": "订单不存在"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"code": 0, "data": o})
	}
}

package router

import (
	"errors"
	"net/http"

	"sneaker_shop/internal/middleware"
	"sneaker_shop/internal/model"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// listCart 当前用户购物车，带变体信息。
func listCart(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, _ := middleware.CurrentUser(c)

		var items []model.ShoppingCartItem
		err := db.Where("user_id = ?", u.ID).
			Preload("ProductVariant").
			Order("created_at desc").
			Find(&items).Error
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"code": 0, "data": items})
	}
}

// addToCart 加购：同一 variant 重复加购走数量累加。
func addToCart(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, _ := middleware.CurrentUser(c)

		var req struct {
			ProductVariantID uint `json:"product_variant_id" binding:"required,min=1"`
			Quantity         int  `json:"quantity" binding:"required,min=1,max=99"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": err.Error()})
			return
		}

		variant, ok := loadVariant(c, db, req.ProductVariantID)
		if !ok {
			return
		}
		if variant.StockQuantity < req.Quantity {
			c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": "库存不足"})
			return
		}

		var item model.ShoppingCartItem
		err := db.Where("user_id = ? AND product_variant_id = ?", u.ID, req.ProductVariantID).
			First(&item).Error
		switch {
		case err == nil:
			item.Quantity += req.Quantity
			if err := db.Model(&item).UpdateColumn("quantity", item.Quantity).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
				return
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			item = model.ShoppingCartItem{
				UserID:           u.ID,
				ProductVariantID: req.ProductVariantID,
				Quantity:         req.Quantity,
			}
			if err := db.Create(&item).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
				return
			}
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
			return
		}

		c.JSON(http.StatusCreated, gin.H{"code": 0, "data": item})
	}
}

// updateCartItem 直接改某行数量（非累加）。
func updateCartItem(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, _ := middleware.CurrentUser(c)

		variantID, ok := pathID(c, "variant_id")
		if !ok {
			return
		}
		var req struct {
			Quantity int `json:"quantity" binding:"required,min=1,max=99"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": err.Error()})
			return
		}

		variant, ok := loadVariant(c, db, variantID)
		if !ok {
			return
		}
		if variant.StockQuantity < req.Quantity {
			c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": "库存不足"})
			return
		}

		res := db.Model(&model.ShoppingCartItem{}).
			Where("user_id = ? AND product_variant_id = ?", u.ID, variantID).
			UpdateColumn("quantity", req.Quantity)
		if res.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": res.Error.Error()})
			return
		}
		if res.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"code": 404, "msg": "购物车中无此商品"})
			return
		}

		var item model.ShoppingCartItem
		if err := db.Where("user_id = ? AND product_variant_id = ?", u.ID, variantID).
			First(&item).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"code": 0, "data": item})
	}
}

// removeCartItem 删除某一行。
func removeCartItem(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, _ := middleware.CurrentUser(c)

		variantID, ok := pathID(c, "variant_id")
		if !ok {
			return
		}
		if err := db.Where("user_id = ? AND product_variant_id = ?", u.ID, variantID).
			Delete(&model.ShoppingCartItem{}).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// clearCart 清空当前用户购物车。
func clearCart(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, _ := middleware.CurrentUser(c)

		if err := db.Where("user_id = ?", u.ID).
			Delete(&model.ShoppingCartItem{}).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// loadVariant 取可购买的 variant；不存在或无有效价格按 404 处理。
func loadVariant(c *gin.Context, db *gorm.DB, id uint) (model.ProductVariant, bool) {
	var v model.ProductVariant
	err := db.First(&v, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && !v.Price.IsPositive()) {
		c.JSON(http.StatusNotFound, gin.H{"code": 404, "msg": "变体不存在"})
		return model.ProductVariant{}, false
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
		return model.ProductVariant{}, false
	}
	return v, true
}

package router

import (
	"errors"
	"net/http"

	"sneaker_shop/internal/model"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// productListQuery 商品列表过滤参数（公开与管理端共用大部分）。
type productListQuery struct {
	Q          string `form:"q"`
	BrandID    uint   `form:"brand_id"`
	CategoryID uint   `form:"category_id"`
	Limit      int    `form:"limit,default=20" binding:"min=1,max=100"`
	Offset     int    `form:"offset,default=0" binding:"min=0"`
}

// applyProductFilters 把通用过滤条件拼到查询上。
func applyProductFilters(q *gorm.DB, req productListQuery) *gorm.DB {
	if req.Q != "" {
		q = q.Where("name LIKE ?", "%"+req.Q+"%")
	}
	if req.BrandID != 0 {
		q = q.Where("brand_id = ?", req.BrandID)
	}
	if req.CategoryID != 0 {
		q = q.Where("category_id = ?", req.CategoryID)
	}
	return q
}

// listProducts 查询在售商品列表，支持名称模糊、品牌、分类过滤与分页。
// 不做任何缓存，每次都落库查询。
func listProducts(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req productListQuery
		if err := c.ShouldBindQuery(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": err.Error()})
			return
		}

		base := applyProductFilters(
			db.Model(&model.Product{}).Where("is_active = ?", true), req)

		var total int64
		if err := base.Count(&total).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
			return
		}

		var items []model.Product
		err := applyProductFilters(db.Where("is_active = ?", true), req).
			Preload("Images", "is_primary = ?", true).
			Preload("Variants").
			Order("created_at desc").
			Limit(req.Limit).Offset(req.Offset).
			Find(&items).Error
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"code": 0, "data": gin.H{
			"items":  items,
			"total":  total,
			"limit":  req.Limit,
			"offset": req.Offset,
		}})
	}
}

// getProduct 商品详情（仅在售），带全部图片、变体、品牌、分类。
func getProduct(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}

		var p model.Product
		err := db.Where("id = ? AND is_active = ?", id, true).
			Preload("Images", func(q *gorm.DB) *gorm.DB { return q.Order("display_order asc") }).
			Preload("Variants").
			Preload("Brand").
			Preload("Category").
			First(&p).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"code": 404, "msg": "商品不存在"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"code": 0, "data": p})
	}
}

// listBrands 品牌列表，按名称排序。
func listBrands(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var list []model.Brand
		if err := db.Order("name asc").Find(&list).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"code": 0, "data": list})
	}
}

// listCategories 顶级分类（含子分类），按名称排序。
func listCategories(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var list []model.Category
		err := db.Where("parent_id IS NULL").
			Preload("Children", func(q *gorm.DB) *gorm.DB { return q.Order("name asc") }).
			Order("name asc").
			Find(&list).Error
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"code": 0, "data": list})
	}
}

package router

import (
	"errors"
	"fmt"
	"net/http"

	"sneaker_shop/internal/model"
	"sneaker_shop/internal/order"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// adminProductQuery 在公开列表参数基础上多一个 active 过滤。
type adminProductQuery struct {
	productListQuery
	Active string `form:"active,default=all" binding:"oneof=all only inactive"`
}

// adminListProducts 后台商品列表：可按上架状态过滤，含全部关联。
func adminListProducts(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req adminProductQuery
		if err := c.ShouldBindQuery(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": err.Error()})
			return
		}

		withActive := func(q *gorm.DB) *gorm.DB {
			switch req.Active {
			case "only":
				return q.Where("is_active = ?", true)
			case "inactive":
				return q.Where("is_active = ?", false)
			}
			return q
		}

		var total int64
		if err := withActive(applyProductFilters(db.Model(&model.Product{}), req.productListQuery)).
			Count(&total).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
			return
		}

		var items []model.Product
		err := withActive(applyProductFilters(db.Model(&model.Product{}), req.productListQuery)).
			Preload("Images", func(q *gorm.DB) *gorm.DB { return q.Order("display_order asc") }).
			Preload("Variants").
			Preload("Brand").
			Preload("Category").
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

// adminGetProduct 后台商品详情（不过滤上架状态）。
func adminGetProduct(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}

		var p model.Product
		err := db.
			Preload("Images", func(q *gorm.DB) *gorm.DB { return q.Order("display_order asc") }).
			Preload("Variants").
			Preload("Brand").
			Preload("Category").
			First(&p, id).Error
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

type productBody struct {
	Name        *string          `json:"name" binding:"omitempty,min=2,max=200"`
	BrandID     *uint            `json:"brand_id"`
	CategoryID  *uint            `json:"category_id"`
	Description *string          `json:"description" binding:"omitempty,max=2000"`
	BasePrice   *decimal.Decimal `json:"base_price"`
	SKU         *string          `json:"sku" binding:"omitempty,max=50"`
	IsActive    *bool            `json:"is_active"`
}

// adminCreateProduct 新建商品；brand/category 可后补。
func adminCreateProduct(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req productBody
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": err.Error()})
			return
		}
		if req.Name == nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": "name 必填"})
			return
		}
		if req.BasePrice != nil && !req.BasePrice.IsPositive() {
			c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": "base_price 必须为正数"})
			return
		}

		p := &model.Product{
			Name:       *req.Name,
			BrandID:    req.BrandID,
			CategoryID: req.CategoryID,
			BasePrice:  req.BasePrice,
			IsActive:   true,
		}
		if req.Description != nil {
			p.Description = *req.Description
		}
		if req.SKU != nil {
			p.SKU = *req.SKU
		}
		if req.IsActive != nil {
			p.IsActive = *req.IsActive
		}

		if err := db.Create(p).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"code": 0, "data": p})
	}
}

// adminUpdateProduct 部分更新：只写请求里出现的字段。
func adminUpdateProduct(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		var req productBody
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": err.Error()})
			return
		}
		if req.BasePrice != nil && !req.BasePrice.IsPositive() {
			c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": "base_price 必须为正数"})
			return
		}

		updates := map[string]any{}
		if req.Name != nil {
			updates["name"] = *req.Name
		}
		if req.BrandID != nil {
			updates["brand_id"] = *req.BrandID
		}
		if req.CategoryID != nil {
			updates["category_id"] = *req.CategoryID
		}
		if req.Description != nil {
			updates["description"] = *req.Description
		}
		if req.BasePrice != nil {
			updates["base_price"] = *req.BasePrice
		}
		if req.SKU != nil {
			updates["sku"] = *req.SKU
		}
		if req.IsActive != nil {
			updates["is_active"] = *req.IsActive
		}

		var p model.Product
		if err := db.First(&p, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"code": 404, "msg": "商品不存在"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
			return
		}
		if len(updates) > 0 {
			if err := db.Model(&p).Updates(updates).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"code": 0, "data": p})
	}
}

// adminDeleteProduct 软删除商品。
func adminDeleteProduct(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		if err := db.Delete(&model.Product{}, id).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
			return
		}
		c.Status(http.StatusNoContent)
	}
}

type variantBody struct {
	Size          *string          `json:"size" binding:"omitempty,max=20"`
	Color         *string          `json:"color" binding:"omitempty,max=50"`
	SKU           *string          `json:"sku" binding:"omitempty,max=50"`
	StockQuantity *int             `json:"stock_quantity" binding:"omitempty,min=0"`
	Price         *decimal.Decimal `json:"price"`
}

// adminCreateVariant 给商品加变体；价格必填且为正。
func adminCreateVariant(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		productID, ok := pathID(c, "id")
		if !ok {
			return
		}
		var req variantBody
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": err.Error()})
			return
		}
		if req.Price == nil || !req.Price.IsPositive() {
			c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": "price 必须为正数"})
			return
		}

		var p model.Product
		if err := db.First(&p, productID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"code": 404, "msg": "商品不存在"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
			return
		}

		v := &model.ProductVariant{ProductID: productID, Price: *req.Price}
		if req.Size != nil {
			v.Size = *req.Size
		}
		if req.Color != nil {
			v.Color = *req.Color
		}
		if req.SKU != nil {
			v.SKU = *req.SKU
		}
		if req.StockQuantity != nil {
			v.StockQuantity = *req.StockQuantity
		}

		if err := db.Create(v).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"code": 0, "data": v})
	}
}

// adminUpdateVariant 部分更新变体（价格、库存、尺码等）。
// 这里的库存改动是运营直接设置，与结算扣减共用同一列。
func adminUpdateVariant(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		variantID, ok := pathID(c, "variant_id")
		if !ok {
			return
		}
		var req variantBody
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": err.Error()})
			return
		}
		if req.Price != nil && !req.Price.IsPositive() {
			c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": "price 必须为正数"})
			return
		}

		updates := map[string]any{}
		if req.Size != nil {
			updates["size"] = *req.Size
		}
		if req.Color != nil {
			updates["color"] = *req.Color
		}
		if req.SKU != nil {
			updates["sku"] = *req.SKU
		}
		if req.StockQuantity != nil {
			updates["stock_quantity"] = *req.StockQuantity
		}
		if req.Price != nil {
			updates["price"] = *req.Price
		}

		var v model.ProductVariant
		if err := db.First(&v, variantID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"code": 404, "msg": "变体不存在"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
			return
		}
		if len(updates) > 0 {
			if err := db.Model(&v).Updates(updates).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"code": 0, "data": v})
	}
}

// adminDeleteVariant 删除变体。
func adminDeleteVariant(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		variantID, ok := pathID(c, "variant_id")
		if !ok {
			return
		}
		if err := db.Delete(&model.ProductVariant{}, variantID).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// adminAddImage 给商品追加图片，display_order 追加到末尾；
// is_primary 为真时先把其他图片的主图标记清掉。
func adminAddImage(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		productID, ok := pathID(c, "id")
		if !ok {
			return
		}
		var req struct {
			ImageURL  string `json:"image_url" binding:"required,url,max=500"`
			AltText   string `json:"alt_text" binding:"omitempty,max=255"`
			IsPrimary bool   `json:"is_primary"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": err.Error()})
			return
		}

		var img model.ProductImage
		err := db.Transaction(func(tx *gorm.DB) error {
			if req.IsPrimary {
				if err := tx.Model(&model.ProductImage{}).
					Where("product_id = ?", productID).
					UpdateColumn("is_primary", false).Error; err != nil {
					return err
				}
			}
			var count int64
			if err := tx.Model(&model.ProductImage{}).
				Where("product_id = ?", productID).
				Count(&count).Error; err != nil {
				return err
			}
			img = model.ProductImage{
				ProductID:    productID,
				ImageURL:     req.ImageURL,
				AltText:      req.AltText,
				IsPrimary:    req.IsPrimary,
				DisplayOrder: int(count),
			}
			return tx.Create(&img).Error
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"code": 0, "data": img})
	}
}

// adminSetPrimaryImage 切换主图：同一商品其余图片全部置 false。
func adminSetPrimaryImage(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		imageID, ok := pathID(c, "image_id")
		if !ok {
			return
		}

		var img model.ProductImage
		if err := db.First(&img, imageID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"code": 404, "msg": "图片不存在"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
			return
		}

		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(&model.ProductImage{}).
				Where("product_id = ?", img.ProductID).
				UpdateColumn("is_primary", false).Error; err != nil {
				return err
			}
			return tx.Model(&model.ProductImage{}).
				Where("id = ?", img.ID).
				UpdateColumn("is_primary", true).Error
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"code": 0})
	}
}

// adminDeleteImage 删除图片。
func adminDeleteImage(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		imageID, ok := pathID(c, "image_id")
		if !ok {
			return
		}
		if err := db.Delete(&model.ProductImage{}, imageID).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// adminListOrders 后台订单列表，可按状态过滤。
func adminListOrders(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Status string `form:"status" binding:"omitempty,oneof=pending confirmed shipped delivered cancelled"`
			Limit  int    `form:"limit,default=20" binding:"min=1,max=100"`
			Offset int    `form:"offset,default=0" binding:"min=0"`
		}
		if err := c.ShouldBindQuery(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": err.Error()})
			return
		}

		base := db.Model(&model.Order{})
		if req.Status != "" {
			base = base.Where("status = ?", req.Status)
		}

		var total int64
		if err := base.Count(&total).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
			return
		}

		q := db.Preload("Items").Order("created_at desc").
			Limit(req.Limit).Offset(req.Offset)
		if req.Status != "" {
			q = q.Where("status = ?", req.Status)
		}
		var items []model.Order
		if err := q.Find(&items).Error; err != nil {
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

// adminSetOrderStatus 后台改订单状态，经过状态机校验。
func adminSetOrderStatus(pipeline *order.Pipeline) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		var req struct {
			Status string `json:"status" binding:"required,oneof=pending confirmed shipped delivered cancelled"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": err.Error()})
			return
		}

		updated, err := pipeline.AdminSetStatus(c.Request.Context(), id, model.OrderStatus(req.Status))
		if err != nil {
			var invalid *order.InvalidTransitionError
			switch {
			case errors.Is(err, order.ErrOrderNotFound):
				c.JSON(http.StatusNotFound, gin.H{"code": 404, "msg": "订单不存在"})
			case errors.As(err, &invalid):
				c.JSON(http.StatusBadRequest, gin.H{
					"code": 400,
					"msg":  fmt.Sprintf("状态不允许从 %s 变为 %s", invalid.From, invalid.To),
				})
			default:
				c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
			}
			return
		}
		c.JSON(http.StatusOK, gin.H{"code": 0, "data": updated})
	}
}

package model

import (
	"time"
)

// ShoppingCartItem 购物车行：同一用户同一 variant 唯一，
// 重复加购走数量累加。下单成功后由结算事务整体删除。
type ShoppingCartItem struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserID           uint `gorm:"not null;uniqueIndex:idx_cart_user_variant" json:"user_id"`
	ProductVariantID uint `gorm:"not null;uniqueIndex:idx_cart_user_variant" json:"product_variant_id"`
	Quantity         int  `gorm:"not null;default:1" json:"quantity"`

	ProductVariant *ProductVariant `gorm:"foreignKey:ProductVariantID" json:"product_variant,omitempty"`
}

func (ShoppingCartItem) TableName() string { return "shopping_cart_items" }

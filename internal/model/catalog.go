package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Brand 品牌（Nike、Adidas 等）。
type Brand struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name    string `gorm:"size:100;uniqueIndex;not null" json:"name"`
	LogoURL string `gorm:"size:255" json:"logo_url"`
}

func (Brand) TableName() string { return "brands" }

// Category 商品分类，支持一级父子结构。
type Category struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name     string     `gorm:"size:100;not null" json:"name"`
	ParentID *uint      `gorm:"index" json:"parent_id"`
	Children []Category `gorm:"foreignKey:ParentID" json:"children,omitempty"`
}

func (Category) TableName() string { return "categories" }

// Product 商品主体。价格与库存挂在 ProductVariant 上，
// 这里的 BasePrice 仅作列表展示参考。
type Product struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Name        string           `gorm:"size:200;not null;index" json:"name"`
	Description string           `gorm:"size:2000" json:"description"`
	SKU         string           `gorm:"size:50" json:"sku"`
	BasePrice   *decimal.Decimal `gorm:"type:decimal(10,2)" json:"base_price"`
	IsActive    bool             `gorm:"not null;default:true;index" json:"is_active"`
	BrandID     *uint            `gorm:"index" json:"brand_id"`
	CategoryID  *uint            `gorm:"index" json:"category_id"`

	Brand    *Brand           `gorm:"foreignKey:BrandID" json:"brand,omitempty"`
	Category *Category        `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Images   []ProductImage   `gorm:"foreignKey:ProductID" json:"images,omitempty"`
	Variants []ProductVariant `gorm:"foreignKey:ProductID" json:"variants,omitempty"`
}

func (Product) TableName() string { return "products" }

// ProductImage 商品图片；每个商品至多一张 IsPrimary。
type ProductImage struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	ProductID    uint   `gorm:"not null;index" json:"product_id"`
	ImageURL     string `gorm:"size:500;not null" json:"image_url"`
	AltText      string `gorm:"size:255" json:"alt_text"`
	IsPrimary    bool   `gorm:"not null;default:false" json:"is_primary"`
	DisplayOrder int    `gorm:"not null;default:0" json:"display_order"`
}

func (ProductImage) TableName() string { return "product_images" }

// ProductVariant 可购买的具体配置（尺码 × 颜色），带独立价格与库存。
// StockQuantity 只在下单事务内做条件递减，禁止出现负值。
type ProductVariant struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	ProductID     uint            `gorm:"not null;index" json:"product_id"`
	Size          string          `gorm:"size:20" json:"size"`
	Color         string          `gorm:"size:50" json:"color"`
	SKU           string          `gorm:"size:50" json:"sku"`
	Price         decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	StockQuantity int             `gorm:"not null;default:0" json:"stock_quantity"`
}

func (ProductVariant) TableName() string { return "product_variants" }

package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderStatus 订单履约状态。
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"   // 已创建，待支付
	OrderStatusConfirmed OrderStatus = "confirmed" // 已支付确认
	OrderStatusShipped   OrderStatus = "shipped"   // 已发货
	OrderStatusDelivered OrderStatus = "delivered" // 已送达（终态）
	OrderStatusCancelled OrderStatus = "cancelled" // 已取消（终态）
)

// PaymentStatus 支付状态，仅由支付入口变更。
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// ValidOrderStatus 校验入参是否为已知状态值。
func ValidOrderStatus(s OrderStatus) bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// orderTransitions 管理端状态机：只允许沿履约方向推进或取消。
// delivered / cancelled 为终态。
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:   {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:   {OrderStatusDelivered},
	OrderStatusDelivered: {},
	OrderStatusCancelled: {},
}

// CanTransition 判断订单状态能否从 from 变为 to。
// 同状态重复设置视为无操作，允许通过。
func CanTransition(from, to OrderStatus) bool {
	if from == to {
		return true
	}
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Order 订单主表。TotalAmount 使用精确小数，避免浮点误差。
type Order struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	OrderNo         string          `gorm:"size:64;uniqueIndex;not null" json:"order_no"`
	UserID          uint            `gorm:"not null;index" json:"user_id"`
	Status          OrderStatus     `gorm:"size:20;not null;default:pending;index" json:"status"`
	PaymentStatus   PaymentStatus   `gorm:"size:20;not null;default:pending" json:"payment_status"`
	TotalAmount     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total_amount"`
	PaymentMethod   string          `gorm:"size:32" json:"payment_method"`
	ShippingAddress string          `gorm:"size:255" json:"shipping_address"`

	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items"`
}

func (Order) TableName() string { return "orders" }

// OrderItem 订单行。UnitPrice 是下单时刻的价格快照，创建后不再变化，
// 与后续商品调价解耦。
type OrderItem struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	OrderID          uint            `gorm:"not null;index" json:"order_id"`
	ProductVariantID uint            `gorm:"not null;index" json:"product_variant_id"`
	Quantity         int             `gorm:"not null" json:"quantity"`
	UnitPrice        decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	TotalPrice       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total_price"`
}

func (OrderItem) TableName() string { return "order_items" }

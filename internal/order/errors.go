package order

import (
	"errors"
	"fmt"

	"sneaker_shop/internal/model"
)

var (
	// ErrEmptyCart 购物车没有任何行，无法结算。
	ErrEmptyCart = errors.New("cart is empty")
	// ErrOrderNotFound 订单不存在或不属于当前用户。
	ErrOrderNotFound = errors.New("order not found")
)

// InvalidProductError 购物车行引用的 variant 不存在或没有有效价格。
type InvalidProductError struct {
	VariantID uint
}

func (e *InvalidProductError) Error() string {
	return fmt.Sprintf("variant %d has no resolvable price", e.VariantID)
}

// InsufficientStockError 某个 variant 库存不足，Error 信息指明具体 variant。
type InsufficientStockError struct {
	VariantID uint
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for variant %d: have %d, want %d",
		e.VariantID, e.Available, e.Requested)
}

// InvalidTransitionError 管理端尝试了状态机不允许的跳转。
type InvalidTransitionError struct {
	From model.OrderStatus
	To   model.OrderStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid order status transition %s -> %s", e.From, e.To)
}

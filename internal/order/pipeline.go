package order

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"sneaker_shop/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Confirmation 是下单成功后发出的确认通知载荷。
type Confirmation struct {
	OrderNo     string          `json:"order_no"`
	Email       string          `json:"email"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// Notifier 发送订单确认通知。实现方只需尽力而为：
// 返回的错误会被记录后吞掉，绝不影响结算结果。
type Notifier interface {
	OrderConfirmed(ctx context.Context, c Confirmation) error
}

// Pipeline 把用户购物车转换为持久化订单，库存效果一致，
// 失败时不留任何部分状态。
type Pipeline struct {
	db       *gorm.DB
	notifier Notifier

	// 订单号生成可注入，测试里用来强制构造冲突。
	genOrderNo func() string
}

func NewPipeline(db *gorm.DB, notifier Notifier) *Pipeline {
	return &Pipeline{db: db, notifier: notifier, genOrderNo: newOrderNo}
}

// newOrderNo 生成人类可读订单号：CMD-<年份>-<12 位随机十六进制>。
// 随机片段来自 UUID 而不是时钟，uniqueIndex 兜底防撞。
func newOrderNo() string {
	frag := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))
	return fmt.Sprintf("CMD-%d-%s", time.Now().Year(), frag[:12])
}

// Checkout 结算流程：
// 1. 读购物车，空则拒绝
// 2. 逐行校验 variant 存在且有价格
// 3. 逐行校验库存充足
// 4. 精确小数求总额
// 5. 单事务写订单 + 订单行（价格快照）+ 条件扣库存 + 清空购物车
// 6. 提交后尽力发确认通知与审计，失败只记日志
//
// 步骤 5 的扣减带 stock_quantity >= ? 条件并检查影响行数，
// 并发下最后一件也不会被两单同时扣走。
func (p *Pipeline) Checkout(ctx context.Context, userID uint) (*model.Order, error) {
	var lines []model.ShoppingCartItem
	if err := p.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at asc, id asc").
		Find(&lines).Error; err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	variants := make(map[uint]model.ProductVariant, len(lines))
	total := decimal.Zero
	for _, line := range lines {
		var v model.ProductVariant
		err := p.db.WithContext(ctx).First(&v, line.ProductVariantID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &InvalidProductError{VariantID: line.ProductVariantID}
		}
		if err != nil {
			return nil, err
		}
		if !v.Price.IsPositive() {
			return nil, &InvalidProductError{VariantID: v.ID}
		}
		if v.StockQuantity < line.Quantity {
			return nil, &InsufficientStockError{
				VariantID: v.ID,
				Available: v.StockQuantity,
				Requested: line.Quantity,
			}
		}
		variants[line.ProductVariantID] = v
		total = total.Add(v.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}

	created := &model.Order{
		OrderNo:       p.genOrderNo(),
		UserID:        userID,
		Status:        model.OrderStatusPending,
		PaymentStatus: model.PaymentStatusPending,
		TotalAmount:   total,
	}

	err := p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(created).Error; err != nil {
			return err
		}

		for _, line := range lines {
			v := variants[line.ProductVariantID]
			item := model.OrderItem{
				OrderID:          created.ID,
				ProductVariantID: v.ID,
				Quantity:         line.Quantity,
				UnitPrice:        v.Price,
				TotalPrice:       v.Price.Mul(decimal.NewFromInt(int64(line.Quantity))),
			}
			if err := tx.Create(&item).Error; err != nil {
				return err
			}
			created.Items = append(created.Items, item)

			// 条件扣减：影响行数为 0 说明库存在校验后被并发买走。
			res := tx.Model(&model.ProductVariant{}).
				Where("id = ? AND stock_quantity >= ?", v.ID, line.Quantity).
				UpdateColumn("stock_quantity", gorm.Expr("stock_quantity - ?", line.Quantity))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return &InsufficientStockError{
					VariantID: v.ID,
					Available: v.StockQuantity,
					Requested: line.Quantity,
				}
			}
		}

		// 订单行全部落库之后才允许清空购物车。
		return tx.Where("user_id = ?", userID).
			Delete(&model.ShoppingCartItem{}).Error
	})
	if err != nil {
		return nil, err
	}

	p.audit(ctx, &userID, "ORDER_CREATE", fmt.Sprintf("order_id=%d", created.ID))
	p.notifyConfirmed(ctx, created)

	return created, nil
}

// Pay 模拟支付：订单归属校验后置为 confirmed/paid。
// 已支付订单重复调用是幂等空操作，原样返回且不追加审计。
func (p *Pipeline) Pay(ctx context.Context, userID, orderID uint, method string) (*model.Order, error) {
	if method == "" {
		method = "card"
	}

	var o model.Order
	err := p.db.WithContext(ctx).Preload("Items").
		Where("id = ? AND user_id = ?", orderID, userID).
		First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	if o.PaymentStatus == model.PaymentStatusPaid {
		return &o, nil
	}

	if err := p.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ?", o.ID).
		Updates(map[string]any{
			"status":         model.OrderStatusConfirmed,
			"payment_status": model.PaymentStatusPaid,
			"payment_method": method,
		}).Error; err != nil {
		return nil, err
	}
	o.Status = model.OrderStatusConfirmed
	o.PaymentStatus = model.PaymentStatusPaid
	o.PaymentMethod = method

	p.audit(ctx, &userID, "ORDER_PAID", fmt.Sprintf("order_id=%d", o.ID))
	return &o, nil
}

// AdminSetStatus 管理端改订单状态，经过显式状态机校验，
// 拒绝 delivered -> pending 之类的倒退跳转。同状态为无操作。
func (p *Pipeline) AdminSetStatus(ctx context.Context, orderID uint, status model.OrderStatus) (*model.Order, error) {
	var o model.Order
	err := p.db.WithContext(ctx).First(&o, orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	if !model.ValidOrderStatus(status) || !model.CanTransition(o.Status, status) {
		return nil, &InvalidTransitionError{From: o.Status, To: status}
	}
	if o.Status == status {
		return &o, nil
	}

	if err := p.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ?", o.ID).
		UpdateColumn("status", status).Error; err != nil {
		return nil, err
	}
	o.Status = status
	return &o, nil
}

// notifyConfirmed 提交后的尽力通知，任何失败都只记日志。
func (p *Pipeline) notifyConfirmed(ctx context.Context, o *model.Order) {
	var u model.User
	if err := p.db.WithContext(ctx).First(&u, o.UserID).Error; err != nil {
		log.Printf("order %s: load user for confirmation: %v", o.OrderNo, err)
		return
	}

	c := Confirmation{OrderNo: o.OrderNo, Email: u.Email, TotalAmount: o.TotalAmount}
	if p.notifier == nil {
		// 没接消息队列时退化为日志模拟发信。
		log.Printf("simulated confirmation email to %s: order %s, total %s",
			c.Email, c.OrderNo, c.TotalAmount)
		return
	}
	if err := p.notifier.OrderConfirmed(ctx, c); err != nil {
		log.Printf("order %s: confirmation notify failed (ignored): %v", o.OrderNo, err)
	}
}

// audit 写审计流水，失败不影响主流程。
func (p *Pipeline) audit(ctx context.Context, userID *uint, action, details string) {
	row := &model.AuditLog{UserID: userID, Action: action, Details: details}
	if err := p.db.WithContext(ctx).Create(row).Error; err != nil {
		log.Printf("audit %s: %v", action, err)
	}
}

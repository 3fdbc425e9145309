package model

import (
	"time"

	"gorm.io/gorm"
)

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

// User 账号。密码只存 bcrypt 哈希。
type User struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Email        string `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"size:100;not null" json:"-"`
	FirstName    string `gorm:"size:100" json:"first_name"`
	LastName     string `gorm:"size:100" json:"last_name"`
	Role         string `gorm:"size:20;not null;default:customer" json:"role"`
	IsActive     bool   `gorm:"not null;default:true" json:"is_active"`
}

func (User) TableName() string { return "users" }

// UserSession 服务端会话。客户端只持有明文 token（cookie 或 bearer），
// 库里存 sha256 哈希，可随时吊销。
type UserSession struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	UserID    uint      `gorm:"not null;index" json:"user_id"`
	TokenHash string    `gorm:"size:64;uniqueIndex;not null" json:"-"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`

	User *User `gorm:"foreignKey:UserID" json:"-"`
}

func (UserSession) TableName() string { return "user_sessions" }

// AuditLog 审计流水：认证与订单关键动作各记一行。
type AuditLog struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	UserID  *uint  `gorm:"index" json:"user_id"`
	Action  string `gorm:"size:50;not null;index" json:"action"`
	Details string `gorm:"size:255" json:"details"`
}

func (AuditLog) TableName() string { return "audit_logs" }

// AllModels 提供给 AutoMigrate 的全量模型列表。
func AllModels() []any {
	return []any{
		&User{}, &UserSession{}, &AuditLog{},
		&Brand{}, &Category{}, &Product{}, &ProductImage{}, &ProductVariant{},
		&ShoppingCartItem{},
		&Order{}, &OrderItem{},
	}
}

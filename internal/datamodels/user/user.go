package user

import (
	"context"
	"time"
)

// 角色常量，线上接口沿用原有取值
const (
	RoleBuyer  = "user"
	RoleSeller = "vendedor"
	RoleAdmin  = "admin"
)

// ValidRole 是否为合法角色
func ValidRole(role string) bool {
	switch role {
	case RoleBuyer, RoleSeller, RoleAdmin:
		return true
	}
	return false
}

// User 用户模型
type User struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:128;not null" json:"name"`
	Email     string    `gorm:"uniqueIndex;size:128;not null" json:"email"`
	Password  string    `gorm:"size:255;not null" json:"-"` // bcrypt 哈希，永不序列化
	Role      string    `gorm:"size:16;index;not null;default:user" json:"role"`
	Address   string    `gorm:"size:255" json:"address"`
	Phone     string    `gorm:"size:32" json:"phone"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// IsAdmin 便捷判断
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Repository 用户仓储接口
type Repository interface {
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Create(ctx context.Context, u *User) error
	Update(ctx context.Context, u *User) error
	Delete(ctx context.Context, id int64) error
	ListAll(ctx context.Context) ([]*User, error)
	ListByRole(ctx context.Context, role string) ([]*User, error)
}

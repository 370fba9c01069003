package model

import "time"

type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
	RoleDev      Role = "dev"
)

// IsStaff は全注文を見られるロールか（admin / dev）
func (r Role) IsStaff() bool {
	return r == RoleAdmin || r == RoleDev
}

// ユーザープロフィール。認証自体は外部プロバイダ。
type Profile struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	Name      *string   `gorm:"type:varchar(255)" json:"name"`
	Phone     *string   `gorm:"type:varchar(30)" json:"phone"`
	Address   *string   `gorm:"type:text" json:"address"`
	AvatarURL *string   `gorm:"type:text;column:avatar_url" json:"avatar_url"`
	Emoji     *string   `gorm:"type:varchar(16)" json:"emoji"`
	Role      Role      `gorm:"type:varchar(20);not null;default:'customer'" json:"role"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// リクエストごとに明示的に渡すセッション
type Session struct {
	UserID string
	Email  string
	Role   Role
}

// IsAuthenticated はユーザーIDを持っているか
func (s Session) IsAuthenticated() bool {
	return s.UserID != ""
}

package model

import (
	"gorm.io/gorm"
)

// UserInfo 用户资料，账号与认证归外部服务管理，这里只读取展示字段
type UserInfo struct {
	gorm.Model
	Uuid     string `gorm:"column:uuid;uniqueIndex;type:varchar(64);comment:用户唯一id"`
	Nickname string `gorm:"column:nickname;type:varchar(20);not null;comment:昵称"`
	Email    string `gorm:"column:email;type:varchar(64);comment:邮箱"`
	Avatar   string `gorm:"column:avatar;type:varchar(255);not null;default:'';comment:头像"`
}

func (UserInfo) TableName() string {
	return "user_info"
}

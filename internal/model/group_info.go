package model

import (
	"gorm.io/gorm"
)

// GroupInfo 群聊
// 成员关系单独存放在 group_member 表，Members 由 Repository 按加入顺序回填
type GroupInfo struct {
	gorm.Model
	Uuid        string `gorm:"column:uuid;uniqueIndex;type:char(20);not null;comment:群组唯一id"`
	Name        string `gorm:"column:name;type:varchar(64);not null;comment:群名称"`
	Description string `gorm:"column:description;type:varchar(500);not null;default:'';comment:群描述"`
	AdminId     string `gorm:"column:admin_id;index;type:varchar(64);not null;comment:群主uuid"`
	Image       string `gorm:"column:image;type:varchar(255);not null;default:'';comment:群头像url"`
	// Version 每次变更自增，成员变更按版本号做乐观并发控制
	Version int64 `gorm:"column:version;not null;default:0;comment:版本号"`

	Members []string `gorm:"-"`
}

func (GroupInfo) TableName() string {
	return "group_info"
}

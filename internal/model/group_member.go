package model

import "time"

// GroupMember 群成员关联表，自增 ID 即加入顺序
type GroupMember struct {
	ID        uint      `gorm:"primaryKey"`
	GroupUuid string    `gorm:"column:group_uuid;type:char(20);not null;uniqueIndex:idx_group_user,priority:1;comment:群组ID"`
	UserUuid  string    `gorm:"column:user_uuid;type:varchar(64);not null;uniqueIndex:idx_group_user,priority:2;index;comment:用户ID"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (GroupMember) TableName() string {
	return "group_member"
}

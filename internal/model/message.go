// Package model 定义数据库实体模型
package model

import "time"

// Message 消息，创建后不可修改
// 单聊时 ReceiveId 为用户 UUID，群聊时为群组 UUID，二者只能经由 Recipient 写入
type Message struct {
	// Uuid 雪花 ID，同一节点内单调递增，用作同一时间戳下的排序依据
	Uuid           int64     `gorm:"column:uuid;primaryKey;autoIncrement:false;comment:消息雪花ID"`
	SendId         string    `gorm:"column:send_id;index;type:varchar(64);not null;comment:发送者uuid"`
	ReceiveId      string    `gorm:"column:receive_id;index:idx_receive_created,priority:1;type:varchar(64);not null;comment:接收者uuid"`
	IsGroupMessage bool      `gorm:"column:is_group_message;not null;default:false;comment:是否群消息"`
	Text           string    `gorm:"column:text;type:TEXT;comment:文本内容"`
	Image          string    `gorm:"column:image;type:varchar(255);not null;default:'';comment:图片url"`
	CreatedAt      time.Time `gorm:"column:created_at;index:idx_receive_created,priority:2;autoCreateTime:false;comment:存储时间"`
}

func (Message) TableName() string {
	return "message"
}

// Target 消息接收方
func (m *Message) Target() Recipient {
	if m.IsGroupMessage {
		return GroupRecipient(m.ReceiveId)
	}
	return UserRecipient(m.ReceiveId)
}

// SetTarget 按接收方写入 receive_id 与 is_group_message
func (m *Message) SetTarget(r Recipient) {
	m.ReceiveId = r.id
	m.IsGroupMessage = r.group
}

// Recipient 消息接收方：用户或群组，零值无效
type Recipient struct {
	id    string
	group bool
}

// UserRecipient 单聊接收方
func UserRecipient(userId string) Recipient {
	return Recipient{id: userId}
}

// GroupRecipient 群聊接收方
func GroupRecipient(groupId string) Recipient {
	return Recipient{id: groupId, group: true}
}

func (r Recipient) ID() string    { return r.id }
func (r Recipient) IsGroup() bool { return r.group }
func (r Recipient) Valid() bool   { return r.id != "" }

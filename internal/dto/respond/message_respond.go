package respond

import "time"

// MessageRespond 消息记录，同时作为 newGroupMessage 推送事件的负载
type MessageRespond struct {
	MessageId      int64     `json:"message_id,string"`
	SendId         string    `json:"send_id"`
	ReceiveId      string    `json:"receive_id"`
	IsGroupMessage bool      `json:"is_group_message"`
	Text           string    `json:"text"`
	Image          string    `json:"image"`
	CreatedAt      time.Time `json:"created_at"`
}

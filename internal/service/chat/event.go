package chat

import (
	"group_chat_server/pkg/constants"

	"github.com/goccy/go-json"
)

// 服务端推送的控制事件
const (
	EventSubscribed       = "subscribed"
	EventUnsubscribed     = "unsubscribed"
	EventRemovedFromGroup = "removedFromGroup"
	EventGroupDeleted     = "groupDeleted"
	EventError            = "error"
)

// PushEvent 推送给客户端的统一帧
type PushEvent struct {
	Event   string `json:"event"`
	Channel string `json:"channel,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// ErrorData error 事件的负载
type ErrorData struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

// EncodeGroupEvent 编码 group:<id> 频道上的事件
func EncodeGroupEvent(event, groupID string, data any) ([]byte, error) {
	return json.Marshal(PushEvent{
		Event:   event,
		Channel: constants.GroupChannel(groupID),
		Data:    data,
	})
}

func mustEncode(ev PushEvent) []byte {
	b, err := json.Marshal(ev)
	if err != nil {
		// 只用于固定结构的控制帧
		panic(err)
	}
	return b
}

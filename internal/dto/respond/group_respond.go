package respond

import "time"

// GroupDetailRespond 群聊详情，群主与成员已展开为用户资料
type GroupDetailRespond struct {
	GroupId     string        `json:"group_id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Image       string        `json:"image"`
	Admin       UserProfile   `json:"admin"`
	Members     []UserProfile `json:"members"`
	Version     int64         `json:"version"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

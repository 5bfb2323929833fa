package respond

// UserProfile 对外展示的用户资料，不包含账号信息
type UserProfile struct {
	UserId   string `json:"user_id"`
	Nickname string `json:"nickname"`
	Email    string `json:"email"`
	Avatar   string `json:"avatar"`
}

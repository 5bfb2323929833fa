package request

// CreateGroupRequest 创建群聊，调用方即群主
type CreateGroupRequest struct {
	Name        string   `json:"name" binding:"required,max=64"`
	Description string   `json:"description" binding:"max=500"`
	Members     []string `json:"members" binding:"omitempty,max=500,dive,required,max=64"`
	Image       string   `json:"image"` // data URI 或 base64
}

// UpdateGroupRequest 只更新非 nil 字段
type UpdateGroupRequest struct {
	Name        *string `json:"name" binding:"omitempty,max=64"`
	Description *string `json:"description" binding:"omitempty,max=500"`
	Image       *string `json:"image"` // 与当前 URL 相同时不重新上传
}

type AddMembersRequest struct {
	Members []string `json:"members" binding:"required,min=1,max=500,dive,required,max=64"`
}

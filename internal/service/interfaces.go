// Package service 定义业务层接口，供 Handler 层调用
package service

import (
	"context"

	"group_chat_server/internal/dto/request"
	"group_chat_server/internal/dto/respond"
)

// UserService 用户资料只读查询
type UserService interface {
	// Profiles 批量查询资料，未知 ID 只返回 user_id
	Profiles(ctx context.Context, ids []string) (map[string]respond.UserProfile, error)
}

// GroupService 群聊目录
// 除 CreateGroup 与 ListForUser 外，都基于当次读取的群快照校验调用方权限
type GroupService interface {
	CreateGroup(ctx context.Context, callerID string, req request.CreateGroupRequest) (*respond.GroupDetailRespond, error)
	// ListForUser 调用方所在的全部群
	ListForUser(ctx context.Context, userID string) ([]respond.GroupDetailRespond, error)
	// GetGroup 仅成员可见
	GetGroup(ctx context.Context, groupID, callerID string) (*respond.GroupDetailRespond, error)
	// UpdateGroup 仅群主
	UpdateGroup(ctx context.Context, groupID, callerID string, req request.UpdateGroupRequest) (*respond.GroupDetailRespond, error)
	// DeleteGroup 仅群主，同时关闭该群的实时订阅
	DeleteGroup(ctx context.Context, groupID, callerID string) error
	// AddMembers 仅群主
	AddMembers(ctx context.Context, groupID, callerID string, memberIDs []string) (*respond.GroupDetailRespond, error)
	// RemoveMember 仅群主，不能移除群主
	RemoveMember(ctx context.Context, groupID, callerID, memberID string) error
	// LeaveGroup 成员退群，群主不能退出
	LeaveGroup(ctx context.Context, groupID, callerID string) error
	// CheckMember 非成员返回 CodeForbidden
	CheckMember(ctx context.Context, groupID, userID string) error
}

// MessageService 群消息
type MessageService interface {
	// SendGroupMessage 成员发送消息，落库后推送给在线订阅者
	SendGroupMessage(ctx context.Context, groupID, senderID string, req request.SendGroupMessageRequest) (*respond.MessageRespond, error)
	// GetGroupMessages 成员查询完整消息记录
	GetGroupMessages(ctx context.Context, groupID, callerID string) ([]respond.MessageRespond, error)
}

package group

import (
	"group_chat_server/internal/model"
	"group_chat_server/pkg/errorx"

	"github.com/samber/lo"
)

// 成员判断始终基于调用时刚读取的群快照，不跨请求缓存

func IsMember(group *model.GroupInfo, userID string) bool {
	return group != nil && userID != "" && lo.Contains(group.Members, userID)
}

func IsAdmin(group *model.GroupInfo, userID string) bool {
	return group != nil && userID != "" && group.AdminId == userID
}

// RequireMember 非成员返回 CodeForbidden
func RequireMember(group *model.GroupInfo, userID string) error {
	if !IsMember(group, userID) {
		return errorx.New(errorx.CodeForbidden, "你不是该群成员")
	}
	return nil
}

// RequireAdmin 非群主返回 CodeForbidden
func RequireAdmin(group *model.GroupInfo, userID string) error {
	if !IsAdmin(group, userID) {
		return errorx.New(errorx.CodeForbidden, "只有群主可以执行该操作")
	}
	return nil
}

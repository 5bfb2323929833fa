// Package service 提供业务逻辑层
package service

import (
	"time"

	"group_chat_server/internal/dao/mysql/repository"
	myredis "group_chat_server/internal/dao/redis"
	"group_chat_server/internal/infrastructure/blob"
	"group_chat_server/internal/service/group"
	"group_chat_server/internal/service/message"
	"group_chat_server/internal/service/user"
)

// Deps 构造 Service 所需的基础设施
type Deps struct {
	Repos      *repository.Repositories
	Cache      myredis.AsyncCacheService // 为 nil 时用户资料直接查库
	ProfileTTL time.Duration
	Uploader   blob.Uploader
	Revoker    group.SubscriptionRevoker
	Publisher  message.Publisher
}

// Services 聚合所有 Service 实例
type Services struct {
	User    UserService
	Group   GroupService
	Message MessageService
}

// NewServices 创建并注入所有 Service 实例
func NewServices(deps Deps) *Services {
	userSvc := user.NewUserService(deps.Repos, deps.Cache, deps.ProfileTTL)
	return &Services{
		User:    userSvc,
		Group:   group.NewGroupService(deps.Repos, userSvc, deps.Uploader, deps.Revoker),
		Message: message.NewMessageService(deps.Repos, deps.Uploader, deps.Publisher),
	}
}

// Package user 用户资料投影，账号与认证由外部服务负责
package user

import (
	"context"
	"time"

	"group_chat_server/internal/dao/mysql/repository"
	myredis "group_chat_server/internal/dao/redis"
	"group_chat_server/internal/dto/respond"
	"group_chat_server/pkg/constants"
	"group_chat_server/pkg/errorx"

	"github.com/goccy/go-json"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// userService 资料读取走 Redis 旁路缓存，未命中的批量查库后异步回写
type userService struct {
	repos *repository.Repositories
	cache myredis.AsyncCacheService
	ttl   time.Duration
}

func NewUserService(repos *repository.Repositories, cache myredis.AsyncCacheService, ttl time.Duration) *userService {
	return &userService{repos: repos, cache: cache, ttl: ttl}
}

func profileKey(userID string) string {
	return constants.ProfileCachePrefix + userID
}

// Profiles 批量解析用户资料，未知用户只返回 user_id
func (u *userService) Profiles(ctx context.Context, ids []string) (map[string]respond.UserProfile, error) {
	ids = lo.Uniq(lo.Compact(ids))
	result := make(map[string]respond.UserProfile, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	misses := u.fromCache(ctx, ids, result)
	if len(misses) == 0 {
		return result, nil
	}

	users, err := u.repos.User.FindByUuids(ctx, misses)
	if err != nil {
		zap.L().Error("load user profiles failed", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	loaded := make([]respond.UserProfile, 0, len(users))
	for _, user := range users {
		p := respond.UserProfile{
			UserId:   user.Uuid,
			Nickname: user.Nickname,
			Email:    user.Email,
			Avatar:   user.Avatar,
		}
		result[user.Uuid] = p
		loaded = append(loaded, p)
	}
	for _, id := range misses {
		if _, ok := result[id]; !ok {
			result[id] = respond.UserProfile{UserId: id}
		}
	}
	u.writeBack(loaded)
	return result, nil
}

// fromCache 缓存不可用时全部视为未命中
func (u *userService) fromCache(ctx context.Context, ids []string, result map[string]respond.UserProfile) []string {
	if u.cache == nil {
		return ids
	}
	keys := lo.Map(ids, func(id string, _ int) string { return profileKey(id) })
	values, err := u.cache.MGet(ctx, keys...)
	if err != nil {
		zap.L().Warn("profile cache unavailable", zap.Error(err))
		return ids
	}
	var misses []string
	for i, v := range values {
		if v == "" {
			misses = append(misses, ids[i])
			continue
		}
		var p respond.UserProfile
		if err := json.Unmarshal([]byte(v), &p); err != nil || p.UserId != ids[i] {
			misses = append(misses, ids[i])
			continue
		}
		result[ids[i]] = p
	}
	return misses
}

func (u *userService) writeBack(profiles []respond.UserProfile) {
	if u.cache == nil || len(profiles) == 0 {
		return
	}
	u.cache.SubmitTask(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		for _, p := range profiles {
			b, err := json.Marshal(p)
			if err != nil {
				continue
			}
			if err := u.cache.Set(ctx, profileKey(p.UserId), string(b), u.ttl); err != nil {
				zap.L().Warn("cache user profile failed", zap.String("user", p.UserId), zap.Error(err))
			}
		}
	})
}

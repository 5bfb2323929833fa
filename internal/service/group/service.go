// Package group 群聊目录：群的创建、查询、修改、删除与成员管理
package group

import (
	"context"
	"strconv"
	"strings"

	"group_chat_server/internal/dao/mysql/repository"
	"group_chat_server/internal/dto/request"
	"group_chat_server/internal/dto/respond"
	"group_chat_server/internal/infrastructure/blob"
	"group_chat_server/internal/infrastructure/metrics"
	"group_chat_server/internal/model"
	"group_chat_server/pkg/constants"
	"group_chat_server/pkg/errorx"
	"group_chat_server/pkg/util/random"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

// ProfileResolver 把用户 ID 展开为对外资料
type ProfileResolver interface {
	Profiles(ctx context.Context, ids []string) (map[string]respond.UserProfile, error)
}

// SubscriptionRevoker 成员被移除或群被删除时撤销实时订阅
// 由推送总线实现，多实例部署时撤销会广播到所有实例
type SubscriptionRevoker interface {
	Evict(groupID, userID string) int
	CloseGroup(groupID string) int
}

type groupService struct {
	repos    *repository.Repositories
	users    ProfileResolver
	uploader blob.Uploader
	revoker  SubscriptionRevoker
}

func NewGroupService(repos *repository.Repositories, users ProfileResolver, uploader blob.Uploader, revoker SubscriptionRevoker) *groupService {
	return &groupService{
		repos:    repos,
		users:    users,
		uploader: uploader,
		revoker:  revoker,
	}
}

// CreateGroup 调用方成为群主，成员为给定列表去重后追加群主
func (g *groupService) CreateGroup(ctx context.Context, callerID string, req request.CreateGroupRequest) (detail *respond.GroupDetailRespond, err error) {
	defer observe("create", &err)

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, errorx.New(errorx.CodeInvalidParam, "群名称不能为空")
	}
	members := normalizeIDs(req.Members)
	if !lo.Contains(members, callerID) {
		members = append(members, callerID)
	}

	var image string
	if req.Image != "" {
		if image, err = g.uploader.Upload(ctx, req.Image); err != nil {
			return nil, err
		}
	}

	group := model.GroupInfo{
		Uuid:        constants.GroupIDPrefix + random.GetNowAndLenRandomString(constants.GroupIDRandomLen),
		Name:        name,
		Description: req.Description,
		AdminId:     callerID,
		Image:       image,
		Members:     members,
	}
	if err = g.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		return tx.Group.Create(ctx, &group)
	}); err != nil {
		zap.L().Error("create group failed", zap.String("caller", callerID), zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	zap.L().Info("group created", zap.String("group", group.Uuid), zap.String("admin", callerID), zap.Int("members", len(members)))
	return g.detail(ctx, &group)
}

// GetGroup 仅成员可见
func (g *groupService) GetGroup(ctx context.Context, groupID, callerID string) (*respond.GroupDetailRespond, error) {
	group, err := g.load(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if err := RequireMember(group, callerID); err != nil {
		return nil, err
	}
	return g.detail(ctx, group)
}

// ListForUser 用户所在的全部群，资料统一批量解析
func (g *groupService) ListForUser(ctx context.Context, userID string) ([]respond.GroupDetailRespond, error) {
	groups, err := g.repos.Group.FindByMember(ctx, userID)
	if err != nil {
		zap.L().Error("list groups failed", zap.String("user", userID), zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	ids := make([]string, 0)
	for _, group := range groups {
		ids = append(ids, group.AdminId)
		ids = append(ids, group.Members...)
	}
	profiles, err := g.users.Profiles(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]respond.GroupDetailRespond, 0, len(groups))
	for i := range groups {
		out = append(out, buildDetail(&groups[i], profiles))
	}
	return out, nil
}

// UpdateGroup 仅群主，nil 字段保持不变
func (g *groupService) UpdateGroup(ctx context.Context, groupID, callerID string, req request.UpdateGroupRequest) (detail *respond.GroupDetailRespond, err error) {
	defer observe("update", &err)

	group, err := g.load(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if err = RequireAdmin(group, callerID); err != nil {
		return nil, err
	}

	updates := make(map[string]any)
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, errorx.New(errorx.CodeInvalidParam, "群名称不能为空")
		}
		updates["name"] = name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Image != nil && *req.Image != group.Image {
		image := ""
		if *req.Image != "" {
			if image, err = g.uploader.Upload(ctx, *req.Image); err != nil {
				return nil, err
			}
		}
		updates["image"] = image
	}
	if len(updates) == 0 {
		return g.detail(ctx, group)
	}

	if err = g.repos.Group.UpdateIfVersion(ctx, groupID, group.Version, updates); err != nil {
		return nil, g.mutationError("update group", groupID, err)
	}
	return g.reloadDetail(ctx, groupID)
}

// DeleteGroup 仅群主，删除群与成员关系，消息保留
func (g *groupService) DeleteGroup(ctx context.Context, groupID, callerID string) (err error) {
	defer observe("delete", &err)

	group, err := g.load(ctx, groupID)
	if err != nil {
		return err
	}
	if err = RequireAdmin(group, callerID); err != nil {
		return err
	}
	if err = g.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		if err := tx.Group.UpdateIfVersion(ctx, groupID, group.Version, nil); err != nil {
			return err
		}
		if err := tx.GroupMember.RemoveAll(ctx, groupID); err != nil {
			return err
		}
		return tx.Group.Delete(ctx, groupID)
	}); err != nil {
		return g.mutationError("delete group", groupID, err)
	}
	g.revoker.CloseGroup(groupID)
	zap.L().Info("group deleted", zap.String("group", groupID))
	return nil
}

// AddMembers 仅群主，已在群内的 ID 忽略
func (g *groupService) AddMembers(ctx context.Context, groupID, callerID string, memberIDs []string) (detail *respond.GroupDetailRespond, err error) {
	defer observe("add_members", &err)

	ids := normalizeIDs(memberIDs)
	if len(ids) == 0 {
		return nil, errorx.New(errorx.CodeInvalidParam, "成员列表不能为空")
	}
	group, err := g.load(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if err = RequireAdmin(group, callerID); err != nil {
		return nil, err
	}

	added := lo.Without(ids, group.Members...)
	if len(added) == 0 {
		return g.detail(ctx, group)
	}
	if err = g.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		if err := tx.Group.UpdateIfVersion(ctx, groupID, group.Version, nil); err != nil {
			return err
		}
		return tx.GroupMember.Add(ctx, groupID, added)
	}); err != nil {
		return nil, g.mutationError("add members", groupID, err)
	}
	return g.reloadDetail(ctx, groupID)
}

// RemoveMember 仅群主，不能移除群主本人，移除非成员视为成功
func (g *groupService) RemoveMember(ctx context.Context, groupID, callerID, memberID string) (err error) {
	defer observe("remove_member", &err)

	group, err := g.load(ctx, groupID)
	if err != nil {
		return err
	}
	if err = RequireAdmin(group, callerID); err != nil {
		return err
	}
	if memberID == group.AdminId {
		return errorx.New(errorx.CodeInvalidOperation, "不能移除群主")
	}
	if !IsMember(group, memberID) {
		return nil
	}
	return g.removeMember(ctx, group, memberID)
}

// LeaveGroup 成员主动退群，群主不能退出
func (g *groupService) LeaveGroup(ctx context.Context, groupID, callerID string) (err error) {
	defer observe("leave", &err)

	group, err := g.load(ctx, groupID)
	if err != nil {
		return err
	}
	if err = RequireMember(group, callerID); err != nil {
		return err
	}
	if IsAdmin(group, callerID) {
		return errorx.New(errorx.CodeInvalidOperation, "群主不能退出群聊")
	}
	return g.removeMember(ctx, group, callerID)
}

// CheckMember 实时订阅前的成员校验
func (g *groupService) CheckMember(ctx context.Context, groupID, userID string) error {
	group, err := g.load(ctx, groupID)
	if err != nil {
		return err
	}
	return RequireMember(group, userID)
}

func (g *groupService) removeMember(ctx context.Context, group *model.GroupInfo, memberID string) error {
	if err := g.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		if err := tx.Group.UpdateIfVersion(ctx, group.Uuid, group.Version, nil); err != nil {
			return err
		}
		return tx.GroupMember.Remove(ctx, group.Uuid, []string{memberID})
	}); err != nil {
		return g.mutationError("remove member", group.Uuid, err)
	}
	g.revoker.Evict(group.Uuid, memberID)
	zap.L().Info("group member removed", zap.String("group", group.Uuid), zap.String("member", memberID))
	return nil
}

func (g *groupService) load(ctx context.Context, groupID string) (*model.GroupInfo, error) {
	group, err := g.repos.Group.FindByUuid(ctx, groupID)
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.New(errorx.CodeNotFound, "群聊不存在")
		}
		zap.L().Error("load group failed", zap.String("group", groupID), zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	return group, nil
}

func (g *groupService) reloadDetail(ctx context.Context, groupID string) (*respond.GroupDetailRespond, error) {
	group, err := g.load(ctx, groupID)
	if err != nil {
		return nil, err
	}
	return g.detail(ctx, group)
}

// mutationError 版本冲突原样返回，其余记录日志后统一为服务繁忙
func (g *groupService) mutationError(op, groupID string, err error) error {
	if errorx.GetCode(err) == errorx.CodeConflict {
		zap.L().Info(op+" conflict", zap.String("group", groupID))
		return errorx.ErrConflict
	}
	zap.L().Error(op+" failed", zap.String("group", groupID), zap.Error(err))
	return errorx.ErrServerBusy
}

func (g *groupService) detail(ctx context.Context, group *model.GroupInfo) (*respond.GroupDetailRespond, error) {
	profiles, err := g.users.Profiles(ctx, append([]string{group.AdminId}, group.Members...))
	if err != nil {
		return nil, err
	}
	d := buildDetail(group, profiles)
	return &d, nil
}

func buildDetail(group *model.GroupInfo, profiles map[string]respond.UserProfile) respond.GroupDetailRespond {
	profile := func(id string) respond.UserProfile {
		if p, ok := profiles[id]; ok {
			return p
		}
		return respond.UserProfile{UserId: id}
	}
	return respond.GroupDetailRespond{
		GroupId:     group.Uuid,
		Name:        group.Name,
		Description: group.Description,
		Image:       group.Image,
		Admin:       profile(group.AdminId),
		Members:     lo.Map(group.Members, func(id string, _ int) respond.UserProfile { return profile(id) }),
		Version:     group.Version,
		CreatedAt:   group.CreatedAt,
		UpdatedAt:   group.UpdatedAt,
	}
}

// normalizeIDs 去空白、去空串、去重，保留首次出现的顺序
func normalizeIDs(ids []string) []string {
	trimmed := lo.Map(ids, func(id string, _ int) string { return strings.TrimSpace(id) })
	return lo.Uniq(lo.Compact(trimmed))
}

func observe(op string, err *error) {
	code := errorx.CodeSuccess
	if *err != nil {
		code = errorx.GetCode(*err)
	}
	metrics.GroupOperationsTotal.WithLabelValues(op, strconv.Itoa(code)).Inc()
}

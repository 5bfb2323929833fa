package repository

import (
	"context"

	"group_chat_server/internal/model"
	"group_chat_server/pkg/errorx"

	"gorm.io/gorm"
)

type groupRepository struct {
	db      *gorm.DB
	members GroupMemberRepository
}

func NewGroupRepository(db *gorm.DB, members GroupMemberRepository) GroupRepository {
	return &groupRepository{db: db, members: members}
}

// FindByUuid 群聊快照，每次都从数据库读取
func (r *groupRepository) FindByUuid(ctx context.Context, uuid string) (*model.GroupInfo, error) {
	var group model.GroupInfo
	if err := r.db.WithContext(ctx).First(&group, "uuid = ?", uuid).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询群组 uuid=%s", uuid)
	}
	members, err := r.members.FindByGroupUuid(ctx, uuid)
	if err != nil {
		return nil, err
	}
	group.Members = members
	return &group, nil
}

func (r *groupRepository) FindByMember(ctx context.Context, userUuid string) ([]model.GroupInfo, error) {
	var groups []model.GroupInfo
	sub := r.db.WithContext(ctx).Model(&model.GroupMember{}).Select("group_uuid").Where("user_uuid = ?", userUuid)
	if err := r.db.WithContext(ctx).
		Where("uuid IN (?)", sub).
		Order("created_at ASC, id ASC").
		Find(&groups).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询用户所在群 user_uuid=%s", userUuid)
	}
	if len(groups) == 0 {
		return groups, nil
	}

	uuids := make([]string, 0, len(groups))
	for _, g := range groups {
		uuids = append(uuids, g.Uuid)
	}
	byGroup, err := r.members.FindByGroupUuids(ctx, uuids)
	if err != nil {
		return nil, err
	}
	for i := range groups {
		groups[i].Members = byGroup[groups[i].Uuid]
	}
	return groups, nil
}

// Create 写入群聊及其成员，调用方应放在事务中
func (r *groupRepository) Create(ctx context.Context, group *model.GroupInfo) error {
	if err := r.db.WithContext(ctx).Create(group).Error; err != nil {
		return wrapDBErrorf(err, "创建群组 uuid=%s", group.Uuid)
	}
	return r.members.Add(ctx, group.Uuid, group.Members)
}

func (r *groupRepository) UpdateIfVersion(ctx context.Context, uuid string, version int64, updates map[string]any) error {
	values := make(map[string]any, len(updates)+1)
	for k, v := range updates {
		values[k] = v
	}
	values["version"] = gorm.Expr("version + 1")

	res := r.db.WithContext(ctx).Model(&model.GroupInfo{}).
		Where("uuid = ? AND version = ?", uuid, version).
		Updates(values)
	if res.Error != nil {
		return wrapDBErrorf(res.Error, "更新群组 uuid=%s", uuid)
	}
	if res.RowsAffected == 0 {
		return errorx.Newf(errorx.CodeConflict, "群组 %s 已被修改，请重试", uuid)
	}
	return nil
}

func (r *groupRepository) Delete(ctx context.Context, uuid string) error {
	if err := r.db.WithContext(ctx).Unscoped().Where("uuid = ?", uuid).Delete(&model.GroupInfo{}).Error; err != nil {
		return wrapDBErrorf(err, "删除群组 uuid=%s", uuid)
	}
	return nil
}

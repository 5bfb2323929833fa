package repository

import (
	"context"

	"group_chat_server/internal/model"

	"github.com/samber/lo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type groupMemberRepository struct {
	db *gorm.DB
}

func NewGroupMemberRepository(db *gorm.DB) GroupMemberRepository {
	return &groupMemberRepository{db: db}
}

// FindByGroupUuid 成员 ID，按加入顺序
func (r *groupMemberRepository) FindByGroupUuid(ctx context.Context, groupUuid string) ([]string, error) {
	members := make([]string, 0)
	if err := r.db.WithContext(ctx).Model(&model.GroupMember{}).
		Where("group_uuid = ?", groupUuid).
		Order("id ASC").
		Pluck("user_uuid", &members).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询群成员 group_uuid=%s", groupUuid)
	}
	return members, nil
}

func (r *groupMemberRepository) FindByGroupUuids(ctx context.Context, groupUuids []string) (map[string][]string, error) {
	result := make(map[string][]string, len(groupUuids))
	if len(groupUuids) == 0 {
		return result, nil
	}
	var rows []model.GroupMember
	if err := r.db.WithContext(ctx).
		Where("group_uuid IN ?", groupUuids).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, wrapDBError(err, "批量查询群成员")
	}
	for _, row := range rows {
		result[row.GroupUuid] = append(result[row.GroupUuid], row.UserUuid)
	}
	return result, nil
}

func (r *groupMemberRepository) Add(ctx context.Context, groupUuid string, userUuids []string) error {
	userUuids = lo.Uniq(userUuids)
	if len(userUuids) == 0 {
		return nil
	}
	rows := lo.Map(userUuids, func(u string, _ int) model.GroupMember {
		return model.GroupMember{GroupUuid: groupUuid, UserUuid: u}
	})
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rows).Error; err != nil {
		return wrapDBErrorf(err, "添加群成员 group_uuid=%s", groupUuid)
	}
	return nil
}

func (r *groupMemberRepository) Remove(ctx context.Context, groupUuid string, userUuids []string) error {
	if len(userUuids) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).
		Where("group_uuid = ? AND user_uuid IN ?", groupUuid, userUuids).
		Delete(&model.GroupMember{}).Error; err != nil {
		return wrapDBErrorf(err, "删除群成员 group_uuid=%s", groupUuid)
	}
	return nil
}

func (r *groupMemberRepository) RemoveAll(ctx context.Context, groupUuid string) error {
	if err := r.db.WithContext(ctx).
		Where("group_uuid = ?", groupUuid).
		Delete(&model.GroupMember{}).Error; err != nil {
		return wrapDBErrorf(err, "删除群所有成员 group_uuid=%s", groupUuid)
	}
	return nil
}

// Package repository 数据访问层
// 接口在此定义，实现分布在各自文件中
package repository

import (
	"context"

	"group_chat_server/internal/model"

	"gorm.io/gorm"
)

// GroupRepository 群聊数据访问
// 返回的 GroupInfo 均已按加入顺序回填 Members
type GroupRepository interface {
	FindByUuid(ctx context.Context, uuid string) (*model.GroupInfo, error)
	// FindByMember 用户所在的全部群聊，按创建时间排序
	FindByMember(ctx context.Context, userUuid string) ([]model.GroupInfo, error)
	Create(ctx context.Context, group *model.GroupInfo) error
	// UpdateIfVersion 仅当版本号仍为 version 时更新并自增版本号，否则返回 CodeConflict
	UpdateIfVersion(ctx context.Context, uuid string, version int64, updates map[string]any) error
	// Delete 物理删除群聊，成员由调用方在同一事务中清理
	Delete(ctx context.Context, uuid string) error
}

// GroupMemberRepository 群成员数据访问
type GroupMemberRepository interface {
	FindByGroupUuid(ctx context.Context, groupUuid string) ([]string, error)
	FindByGroupUuids(ctx context.Context, groupUuids []string) (map[string][]string, error)
	// Add 批量加入，已存在的成员忽略
	Add(ctx context.Context, groupUuid string, userUuids []string) error
	Remove(ctx context.Context, groupUuid string, userUuids []string) error
	RemoveAll(ctx context.Context, groupUuid string) error
}

// UserRepository 用户资料只读访问
type UserRepository interface {
	FindByUuids(ctx context.Context, uuids []string) ([]model.UserInfo, error)
}

// MessageRepository 消息只追加存储，不做成员校验
type MessageRepository interface {
	// Create 分配 ID 与存储时间后写入，接收方为零值时返回 CodeInvalidParam
	Create(ctx context.Context, message *model.Message) error
	// FindByTarget 接收方的全部消息，按 (created_at, uuid) 升序
	FindByTarget(ctx context.Context, target model.Recipient) ([]model.Message, error)
	// FindByUserIds 两个用户之间的双向单聊消息
	FindByUserIds(ctx context.Context, userOneId, userTwoId string) ([]model.Message, error)
}

// Repositories 聚合所有 Repository，Service 层通过它访问数据层
type Repositories struct {
	db          *gorm.DB
	User        UserRepository
	Group       GroupRepository
	GroupMember GroupMemberRepository
	Message     MessageRepository
}

func NewRepositories(db *gorm.DB) *Repositories {
	members := NewGroupMemberRepository(db)
	return &Repositories{
		db:          db,
		User:        NewUserRepository(db),
		Group:       NewGroupRepository(db, members),
		GroupMember: members,
		Message:     NewMessageRepository(db),
	}
}

// Transaction 事务内的操作要么全部成功，要么全部回滚
func (r *Repositories) Transaction(ctx context.Context, fn func(txRepos *Repositories) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
}

// AutoMigrate 建表或补齐字段，不会删除已有列
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.UserInfo{},
		&model.GroupInfo{},
		&model.GroupMember{},
		&model.Message{},
	)
}

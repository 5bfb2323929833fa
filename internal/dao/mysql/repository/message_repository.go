package repository

import (
	"context"
	"time"

	"group_chat_server/internal/model"
	"group_chat_server/pkg/errorx"
	"group_chat_server/pkg/util/snowflake"

	"gorm.io/gorm"
)

type messageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

// Create 未指定时由存储层分配消息 ID 与存储时间
// 时间截断到毫秒：MySQL DATETIME(3) 与 SQLite 读回的精度一致，排序才稳定
func (r *messageRepository) Create(ctx context.Context, message *model.Message) error {
	if !message.Target().Valid() {
		return errorx.New(errorx.CodeInvalidParam, "消息缺少接收方")
	}
	if message.Uuid == 0 {
		message.Uuid = snowflake.GenerateID()
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now().Truncate(time.Millisecond)
	}
	if err := r.db.WithContext(ctx).Create(message).Error; err != nil {
		return wrapDBError(err, "创建消息")
	}
	return nil
}

func (r *messageRepository) FindByTarget(ctx context.Context, target model.Recipient) ([]model.Message, error) {
	messages := make([]model.Message, 0)
	if err := r.db.WithContext(ctx).
		Where("receive_id = ? AND is_group_message = ?", target.ID(), target.IsGroup()).
		Order("created_at ASC, uuid ASC").
		Find(&messages).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询消息 receive_id=%s", target.ID())
	}
	return messages, nil
}

func (r *messageRepository) FindByUserIds(ctx context.Context, userOneId, userTwoId string) ([]model.Message, error) {
	messages := make([]model.Message, 0)
	if err := r.db.WithContext(ctx).
		Where("is_group_message = ?", false).
		Where("(send_id = ? AND receive_id = ?) OR (send_id = ? AND receive_id = ?)",
			userOneId, userTwoId, userTwoId, userOneId).
		Order("created_at ASC, uuid ASC").
		Find(&messages).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询消息 user1=%s user2=%s", userOneId, userTwoId)
	}
	return messages, nil
}

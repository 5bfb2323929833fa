// Package message 群消息的发送与历史查询
package message

import (
	"context"
	"strings"

	"group_chat_server/internal/dao/mysql/repository"
	"group_chat_server/internal/dto/request"
	"group_chat_server/internal/dto/respond"
	"group_chat_server/internal/infrastructure/blob"
	"group_chat_server/internal/model"
	"group_chat_server/internal/service/chat"
	"group_chat_server/internal/service/group"
	"group_chat_server/pkg/constants"
	"group_chat_server/pkg/errorx"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

// Publisher 实时推送总线，Publish 不得阻塞调用方
type Publisher interface {
	Publish(groupID string, payload []byte)
}

type messageService struct {
	repos     *repository.Repositories
	uploader  blob.Uploader
	publisher Publisher
}

func NewMessageService(repos *repository.Repositories, uploader blob.Uploader, publisher Publisher) *messageService {
	return &messageService{
		repos:     repos,
		uploader:  uploader,
		publisher: publisher,
	}
}

// SendGroupMessage 校验成员 -> 上传图片 -> 落库 -> 推送
// 推送失败不影响发送结果，历史记录始终以库为准
func (m *messageService) SendGroupMessage(ctx context.Context, groupID, senderID string, req request.SendGroupMessageRequest) (*respond.MessageRespond, error) {
	if err := m.authorize(ctx, groupID, senderID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Text) == "" && req.Image == "" {
		return nil, errorx.New(errorx.CodeInvalidParam, "消息内容不能为空")
	}

	var image string
	if req.Image != "" {
		var err error
		if image, err = m.uploader.Upload(ctx, req.Image); err != nil {
			return nil, err
		}
	}

	msg := model.Message{
		SendId: senderID,
		Text:   req.Text,
		Image:  image,
	}
	msg.SetTarget(model.GroupRecipient(groupID))
	if err := m.repos.Message.Create(ctx, &msg); err != nil {
		zap.L().Error("store group message failed", zap.String("group", groupID), zap.String("sender", senderID), zap.Error(err))
		return nil, errorx.ErrServerBusy
	}

	rsp := toRespond(msg)
	payload, err := chat.EncodeGroupEvent(constants.EventNewGroupMsg, groupID, rsp)
	if err != nil {
		zap.L().Error("encode group event failed", zap.Int64("message", msg.Uuid), zap.Error(err))
		return &rsp, nil
	}
	m.publisher.Publish(groupID, payload)
	return &rsp, nil
}

// GetGroupMessages 群的完整消息记录，按存储时间升序
func (m *messageService) GetGroupMessages(ctx context.Context, groupID, callerID string) ([]respond.MessageRespond, error) {
	if err := m.authorize(ctx, groupID, callerID); err != nil {
		return nil, err
	}
	messages, err := m.repos.Message.FindByTarget(ctx, model.GroupRecipient(groupID))
	if err != nil {
		zap.L().Error("list group messages failed", zap.String("group", groupID), zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	return lo.Map(messages, func(msg model.Message, _ int) respond.MessageRespond { return toRespond(msg) }), nil
}

// authorize 每次请求都重新读取群快照
func (m *messageService) authorize(ctx context.Context, groupID, userID string) error {
	g, err := m.repos.Group.FindByUuid(ctx, groupID)
	if err != nil {
		if errorx.IsNotFound(err) {
			return errorx.New(errorx.CodeNotFound, "群聊不存在")
		}
		zap.L().Error("load group failed", zap.String("group", groupID), zap.Error(err))
		return errorx.ErrServerBusy
	}
	return group.RequireMember(g, userID)
}

func toRespond(msg model.Message) respond.MessageRespond {
	return respond.MessageRespond{
		MessageId:      msg.Uuid,
		SendId:         msg.SendId,
		ReceiveId:      msg.ReceiveId,
		IsGroupMessage: msg.IsGroupMessage,
		Text:           msg.Text,
		Image:          msg.Image,
		CreatedAt:      msg.CreatedAt,
	}
}

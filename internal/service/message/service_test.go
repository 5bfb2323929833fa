package message

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"group_chat_server/internal/dao/mysql/dbtest"
	"group_chat_server/internal/dao/mysql/repository"
	"group_chat_server/internal/dto/request"
	"group_chat_server/internal/model"
	"group_chat_server/internal/service/chat"
	"group_chat_server/pkg/errorx"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type stubUploader struct {
	err error
}

func (s stubUploader) Upload(ctx context.Context, payload string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return "http://files/" + payload + ".png", nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	groups []string
	frames [][]byte
}

func (p *recordingPublisher) Publish(groupID string, payload []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.groups = append(p.groups, groupID)
	p.frames = append(p.frames, payload)
}

func seedGroup(t *testing.T, repos *repository.Repositories, uuid, admin string, members ...string) {
	t.Helper()
	require.NoError(t, repos.Group.Create(context.Background(), &model.GroupInfo{
		Uuid:    uuid,
		Name:    uuid,
		AdminId: admin,
		Members: append([]string{admin}, members...),
	}))
}

func countMessages(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&model.Message{}).Count(&n).Error)
	return n
}

func TestSendGroupMessagePersistsAndPublishes(t *testing.T) {
	repos, db := dbtest.Repositories(t)
	seedGroup(t, repos, "G1", "A", "B")
	pub := &recordingPublisher{}
	svc := NewMessageService(repos, stubUploader{}, pub)

	msg, err := svc.SendGroupMessage(context.Background(), "G1", "B", request.SendGroupMessageRequest{Text: "hi", Image: "pic"})
	require.NoError(t, err)
	require.Equal(t, "G1", msg.ReceiveId)
	require.True(t, msg.IsGroupMessage)
	require.Equal(t, "http://files/pic.png", msg.Image)
	require.NotZero(t, msg.MessageId)
	require.EqualValues(t, 1, countMessages(t, db))

	require.Equal(t, []string{"G1"}, pub.groups)
	var ev chat.PushEvent
	require.NoError(t, json.Unmarshal(pub.frames[0], &ev))
	require.Equal(t, "newGroupMessage", ev.Event)
	require.Equal(t, "group:G1", ev.Channel)
	data, ok := ev.Data.(map[string]any)
	require.True(t, ok)
	require.Equal(t, "hi", data["text"])
}

func TestSendGroupMessageRejectsNonMember(t *testing.T) {
	repos, db := dbtest.Repositories(t)
	seedGroup(t, repos, "G1", "A")
	pub := &recordingPublisher{}
	svc := NewMessageService(repos, stubUploader{}, pub)

	_, err := svc.SendGroupMessage(context.Background(), "G1", "X", request.SendGroupMessageRequest{Text: "hi"})
	require.Equal(t, errorx.CodeForbidden, errorx.GetCode(err))
	require.Zero(t, countMessages(t, db))
	require.Empty(t, pub.frames)

	_, err = svc.SendGroupMessage(context.Background(), "G404", "A", request.SendGroupMessageRequest{Text: "hi"})
	require.Equal(t, errorx.CodeNotFound, errorx.GetCode(err))
}

func TestSendGroupMessageValidation(t *testing.T) {
	repos, db := dbtest.Repositories(t)
	seedGroup(t, repos, "G1", "A")
	pub := &recordingPublisher{}
	svc := NewMessageService(repos, stubUploader{err: errorx.New(errorx.CodeUploadError, "文件上传失败")}, pub)
	ctx := context.Background()

	_, err := svc.SendGroupMessage(ctx, "G1", "A", request.SendGroupMessageRequest{Text: "  "})
	require.Equal(t, errorx.CodeInvalidParam, errorx.GetCode(err))

	_, err = svc.SendGroupMessage(ctx, "G1", "A", request.SendGroupMessageRequest{Image: "pic"})
	require.Equal(t, errorx.CodeUploadError, errorx.GetCode(err))

	require.Zero(t, countMessages(t, db))
	require.Empty(t, pub.frames)
}

func TestGetGroupMessagesOrdered(t *testing.T) {
	repos, _ := dbtest.Repositories(t)
	seedGroup(t, repos, "G1", "A", "B")
	seedGroup(t, repos, "G2", "A")
	svc := NewMessageService(repos, stubUploader{}, &recordingPublisher{})
	ctx := context.Background()

	for _, text := range []string{"one", "two", "three"} {
		_, err := svc.SendGroupMessage(ctx, "G1", "A", request.SendGroupMessageRequest{Text: text})
		require.NoError(t, err)
	}
	_, err := svc.SendGroupMessage(ctx, "G2", "A", request.SendGroupMessageRequest{Text: "other"})
	require.NoError(t, err)

	// 同一毫秒内写入的消息按雪花 ID 排序
	same := time.Now().Add(time.Hour).Truncate(time.Millisecond)
	for _, id := range []int64{20, 10} {
		m := model.Message{Uuid: id, SendId: "B", Text: "tie", CreatedAt: same}
		m.SetTarget(model.GroupRecipient("G1"))
		require.NoError(t, repos.Message.Create(ctx, &m))
	}

	list, err := svc.GetGroupMessages(ctx, "G1", "B")
	require.NoError(t, err)
	require.Len(t, list, 5)
	texts := make([]string, 0, len(list))
	for _, m := range list {
		texts = append(texts, m.Text)
	}
	require.Equal(t, "one,two,three,tie,tie", strings.Join(texts, ","))
	require.EqualValues(t, 10, list[3].MessageId)
	require.EqualValues(t, 20, list[4].MessageId)

	_, err = svc.GetGroupMessages(ctx, "G1", "X")
	require.Equal(t, errorx.CodeForbidden, errorx.GetCode(err))
}

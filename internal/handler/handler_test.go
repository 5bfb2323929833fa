package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"group_chat_server/internal/dto/request"
	"group_chat_server/internal/dto/respond"
	"group_chat_server/internal/service"
	"group_chat_server/pkg/constants"
	"group_chat_server/pkg/errorx"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
)

type stubGroupService struct {
	service.GroupService
	err     error
	lastReq request.CreateGroupRequest
	caller  string
}

func (s *stubGroupService) CreateGroup(ctx context.Context, callerID string, req request.CreateGroupRequest) (*respond.GroupDetailRespond, error) {
	s.caller, s.lastReq = callerID, req
	if s.err != nil {
		return nil, s.err
	}
	return &respond.GroupDetailRespond{GroupId: "G1", Name: req.Name, Admin: respond.UserProfile{UserId: callerID}}, nil
}

func (s *stubGroupService) GetGroup(ctx context.Context, groupID, callerID string) (*respond.GroupDetailRespond, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &respond.GroupDetailRespond{GroupId: groupID}, nil
}

func (s *stubGroupService) RemoveMember(ctx context.Context, groupID, callerID, memberID string) error {
	return s.err
}

type stubMessageService struct {
	err error
}

func (s *stubMessageService) SendGroupMessage(ctx context.Context, groupID, senderID string, req request.SendGroupMessageRequest) (*respond.MessageRespond, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &respond.MessageRespond{
		MessageId:      1865000000000000001,
		SendId:         senderID,
		ReceiveId:      groupID,
		IsGroupMessage: true,
		Text:           req.Text,
		CreatedAt:      time.Now(),
	}, nil
}

func (s *stubMessageService) GetGroupMessages(ctx context.Context, groupID, callerID string) ([]respond.MessageRespond, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []respond.MessageRespond{}, nil
}

func newTestEngine(groups *stubGroupService, messages *stubMessageService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(constants.CtxUserIDKey, "U1")
	})
	gh := NewGroupHandler(groups)
	mh := NewMessageHandler(messages)
	r.POST("/api/groups/create", gh.CreateGroup)
	r.GET("/api/groups/:id", gh.GetGroup)
	r.DELETE("/api/groups/:id/members/:memberId", gh.RemoveMember)
	r.GET("/api/groups/:id/messages", mh.GetGroupMessages)
	r.POST("/api/groups/:id/messages", mh.SendGroupMessage)
	return r
}

func doRequest(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestCreateGroupReturnsCreated(t *testing.T) {
	groups := &stubGroupService{}
	r := newTestEngine(groups, &stubMessageService{})

	w := doRequest(r, http.MethodPost, "/api/groups/create", `{"name":"team","members":["U2"]}`)
	require.Equal(t, http.StatusCreated, w.Code)
	body := decode(t, w)
	require.EqualValues(t, errorx.CodeSuccess, body["code"])
	data := body["data"].(map[string]any)
	require.Equal(t, "G1", data["group_id"])
	require.Equal(t, "U1", groups.caller)
	require.Equal(t, []string{"U2"}, groups.lastReq.Members)
}

func TestCreateGroupBindError(t *testing.T) {
	r := newTestEngine(&stubGroupService{}, &stubMessageService{})

	w := doRequest(r, http.MethodPost, "/api/groups/create", `{"members":["U2"]}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.EqualValues(t, errorx.CodeInvalidParam, decode(t, w)["code"])

	w = doRequest(r, http.MethodPost, "/api/groups/create", `{not json`)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestErrorCodesMapToStatus(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{errorx.New(errorx.CodeForbidden, "你不是该群成员"), http.StatusForbidden},
		{errorx.New(errorx.CodeNotFound, "群聊不存在"), http.StatusNotFound},
		{errorx.ErrConflict, http.StatusConflict},
		{errorx.New(errorx.CodeInvalidOperation, "不能移除群主"), http.StatusBadRequest},
	}
	for _, tc := range cases {
		r := newTestEngine(&stubGroupService{err: tc.err}, &stubMessageService{})
		w := doRequest(r, http.MethodDelete, "/api/groups/G1/members/U2", "")
		require.Equal(t, tc.status, w.Code)
		require.EqualValues(t, errorx.GetCode(tc.err), decode(t, w)["code"])
	}
}

func TestInternalErrorIsFlattened(t *testing.T) {
	err := errorx.Wrap(context.DeadlineExceeded, errorx.CodeDBError, "查询群组 uuid=G1")
	r := newTestEngine(&stubGroupService{err: err}, &stubMessageService{})

	w := doRequest(r, http.MethodGet, "/api/groups/G1", "")
	require.Equal(t, http.StatusInternalServerError, w.Code)
	body := decode(t, w)
	require.EqualValues(t, errorx.CodeServerBusy, body["code"])
	require.Equal(t, errorx.ErrServerBusy.Msg, body["msg"])
	require.NotContains(t, w.Body.String(), "uuid=G1")
}

func TestSendGroupMessage(t *testing.T) {
	r := newTestEngine(&stubGroupService{}, &stubMessageService{})
	w := doRequest(r, http.MethodPost, "/api/groups/G1/messages", `{"text":"hi"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	data := decode(t, w)["data"].(map[string]any)
	require.Equal(t, "1865000000000000001", data["message_id"])
	require.Equal(t, "G1", data["receive_id"])
	require.Equal(t, "U1", data["send_id"])

	r = newTestEngine(&stubGroupService{}, &stubMessageService{err: errorx.New(errorx.CodeForbidden, "你不是该群成员")})
	w = doRequest(r, http.MethodGet, "/api/groups/G1/messages", "")
	require.Equal(t, http.StatusForbidden, w.Code)
}

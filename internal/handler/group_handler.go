// Package handler 提供 HTTP 请求处理器
package handler

import (
	"group_chat_server/internal/dto/request"
	"group_chat_server/internal/service"
	"group_chat_server/pkg/constants"

	"github.com/gin-gonic/gin"
)

// GroupHandler 群聊目录请求处理器
type GroupHandler struct {
	groupSvc service.GroupService
}

func NewGroupHandler(groupSvc service.GroupService) *GroupHandler {
	return &GroupHandler{groupSvc: groupSvc}
}

// callerID JWTAuth 写入的调用方 ID
func callerID(c *gin.Context) string {
	return c.GetString(constants.CtxUserIDKey)
}

// CreateGroup 创建群聊
// POST /api/groups/create
func (h *GroupHandler) CreateGroup(c *gin.Context) {
	var req request.CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.groupSvc.CreateGroup(c.Request.Context(), callerID(c), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleCreated(c, data)
}

// ListGroups 我所在的群聊
// GET /api/groups
func (h *GroupHandler) ListGroups(c *gin.Context) {
	data, err := h.groupSvc.ListForUser(c.Request.Context(), callerID(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// GetGroup 群聊详情
// GET /api/groups/:id
func (h *GroupHandler) GetGroup(c *gin.Context) {
	data, err := h.groupSvc.GetGroup(c.Request.Context(), c.Param("id"), callerID(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// UpdateGroup 修改群资料
// PUT /api/groups/:id
func (h *GroupHandler) UpdateGroup(c *gin.Context) {
	var req request.UpdateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.groupSvc.UpdateGroup(c.Request.Context(), c.Param("id"), callerID(c), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// DeleteGroup 解散群聊
// DELETE /api/groups/:id
func (h *GroupHandler) DeleteGroup(c *gin.Context) {
	if err := h.groupSvc.DeleteGroup(c.Request.Context(), c.Param("id"), callerID(c)); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// AddMembers 拉人入群
// POST /api/groups/:id/members
func (h *GroupHandler) AddMembers(c *gin.Context) {
	var req request.AddMembersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.groupSvc.AddMembers(c.Request.Context(), c.Param("id"), callerID(c), req.Members)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// RemoveMember 移出群聊
// DELETE /api/groups/:id/members/:memberId
func (h *GroupHandler) RemoveMember(c *gin.Context) {
	if err := h.groupSvc.RemoveMember(c.Request.Context(), c.Param("id"), callerID(c), c.Param("memberId")); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// LeaveGroup 退出群聊
// POST /api/groups/:id/leave
func (h *GroupHandler) LeaveGroup(c *gin.Context) {
	if err := h.groupSvc.LeaveGroup(c.Request.Context(), c.Param("id"), callerID(c)); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

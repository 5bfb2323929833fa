package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterGroupRoutes 群聊目录与群消息
func (rt *Router) RegisterGroupRoutes(rg *gin.RouterGroup) {
	groups := rg.Group("/api/groups")
	{
		groups.POST("/create", rt.handlers.Group.CreateGroup)
		groups.GET("", rt.handlers.Group.ListGroups)
		groups.GET("/:id", rt.handlers.Group.GetGroup)
		groups.PUT("/:id", rt.handlers.Group.UpdateGroup)
		groups.DELETE("/:id", rt.handlers.Group.DeleteGroup)

		// ===== 成员管理 =====
		groups.POST("/:id/members", rt.handlers.Group.AddMembers)
		groups.DELETE("/:id/members/:memberId", rt.handlers.Group.RemoveMember)
		groups.POST("/:id/leave", rt.handlers.Group.LeaveGroup)

		// ===== 群消息 =====
		groups.GET("/:id/messages", rt.handlers.Message.GetGroupMessages)
		groups.POST("/:id/messages", rt.handlers.Message.SendGroupMessage)
	}
}

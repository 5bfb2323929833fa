package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterWebSocketRoutes 浏览器无法设置 Authorization 头，token 走查询参数
// 请求示例: ws://host:port/wss?token=xxx
func (rt *Router) RegisterWebSocketRoutes(rg *gin.RouterGroup) {
	rg.GET("/wss", rt.handlers.Ws.Connect)
}

// Package router 提供 HTTP 路由注册
package router

import (
	"group_chat_server/internal/handler"
	"group_chat_server/internal/infrastructure/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Router 持有 Handler 聚合，按模块注册路由
type Router struct {
	handlers *handler.Handlers
}

func NewRouter(handlers *handler.Handlers) *Router {
	return &Router{handlers: handlers}
}

// RegisterRoutes 注册全部路由，除 /metrics 外都需要认证
func (rt *Router) RegisterRoutes(r *gin.Engine) {
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authed := r.Group("", middleware.JWTAuth())
	rt.RegisterGroupRoutes(authed)
	rt.RegisterWebSocketRoutes(authed)
}

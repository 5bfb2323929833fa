// Package https_server 创建 gin 引擎并装配中间件、静态资源和路由
package https_server

import (
	"net/http"

	"group_chat_server/internal/config"
	"group_chat_server/internal/handler"
	"group_chat_server/internal/infrastructure/blob"
	"group_chat_server/internal/infrastructure/logger"
	"group_chat_server/internal/infrastructure/middleware"
	"group_chat_server/internal/router"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Init 返回装配完成的 gin 引擎
func Init(cfg *config.Config, handlers *handler.Handlers) *gin.Engine {
	engine := gin.New()
	engine.Use(logger.GinLogger())
	engine.Use(logger.GinRecovery(true))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"} // 生产环境应指定具体域名
	corsConfig.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	engine.Use(cors.New(corsConfig))

	engine.Use(middleware.Secure(cfg.MainConfig.Host, cfg.MainConfig.Port, cfg.ForceTLS))

	// 群头像与消息图片
	engine.Static(blob.PublicPrefix, cfg.UploadConfig.Dir)

	router.NewRouter(handlers).RegisterRoutes(engine)
	return engine
}

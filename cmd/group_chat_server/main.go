package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"group_chat_server/internal/config"
	dao "group_chat_server/internal/dao/mysql"
	myredis "group_chat_server/internal/dao/redis"
	"group_chat_server/internal/handler"
	"group_chat_server/internal/https_server"
	"group_chat_server/internal/infrastructure/blob"
	"group_chat_server/internal/infrastructure/logger"
	"group_chat_server/internal/service"
	"group_chat_server/internal/service/chat"
	"group_chat_server/pkg/util/jwt"
	"group_chat_server/pkg/util/snowflake"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// 1. 加载配置
	conf := config.GetConfig()
	gin.SetMode(conf.Mode)

	// 2. 初始化日志
	if err := logger.Init(&conf.LogConfig, conf.Mode); err != nil {
		log.Fatalf("init logger failed: %v", err)
	}
	defer func() { _ = zap.L().Sync() }()

	// 3. ID 生成与鉴权
	snowflake.Init(conf.MachineID)
	jwt.Init(conf.JWTConfig.Secret, conf.AccessTokenExpiry)
	if err := handler.InitTrans("zh"); err != nil {
		zap.L().Fatal("init validator translator failed", zap.Error(err))
	}

	// 4. 数据库
	repos, db, err := dao.Init(&conf.MysqlConfig)
	if err != nil {
		zap.L().Fatal("init mysql failed", zap.Error(err))
	}
	zap.L().Info("数据库初始化成功")

	// 5. Redis 不可用时用户资料直接查库
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var cache myredis.AsyncCacheService
	if client, err := myredis.NewClient(ctx, &conf.RedisConfig); err != nil {
		zap.L().Warn("redis unavailable, profile cache disabled", zap.Error(err))
	} else {
		rc := myredis.NewRedisCache(client, conf.RedisConfig.Workers, conf.RedisConfig.QueueSize)
		defer rc.Close()
		cache = rc
		zap.L().Info("Redis 初始化成功")
	}

	// 6. 文件存储
	uploader, err := blob.NewLocalUploader(&conf.UploadConfig)
	if err != nil {
		zap.L().Fatal("init uploader failed", zap.Error(err))
	}

	// 7. 实时推送
	hub := chat.NewHub()
	broker := chat.NewBroker(hub, &conf.KafkaConfig, &conf.FanoutConfig)
	if err := broker.Start(ctx); err != nil {
		zap.L().Fatal("start broker failed", zap.Error(err))
	}
	zap.L().Info("推送总线启动成功", zap.String("mode", conf.MessageMode))

	// 8. Service 与 Handler
	svc := service.NewServices(service.Deps{
		Repos:      repos,
		Cache:      cache,
		ProfileTTL: time.Duration(conf.ProfileTTL) * time.Minute,
		Uploader:   uploader,
		Revoker:    broker,
		Publisher:  broker,
	})
	gateway := chat.NewGateway(hub, svc.Group, &conf.FanoutConfig)
	engine := https_server.Init(conf, handler.NewHandlers(svc, gateway))

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", conf.MainConfig.Host, conf.MainConfig.Port),
		Handler: engine,
	}
	go func() {
		zap.L().Info("服务启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.L().Fatal("server running fault", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zap.L().Info("关闭服务器...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.L().Error("server shutdown failed", zap.Error(err))
	}
	broker.Close()
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	zap.L().Info("服务器已关闭")
}

package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/unrolled/secure"
	"go.uber.org/zap"
)

// Secure 安全响应头，forceTLS 时把明文请求重定向到 HTTPS
func Secure(host string, port int, forceTLS bool) gin.HandlerFunc {
	opts := secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
		ReferrerPolicy:     "same-origin",
	}
	if forceTLS {
		opts.SSLRedirect = true
		opts.SSLHost = host + ":" + strconv.Itoa(port)
	}
	sm := secure.New(opts)

	return func(c *gin.Context) {
		// 发生 HTTPS 重定向时 Process 已写出响应并返回 error
		if err := sm.Process(c.Writer, c.Request); err != nil {
			zap.L().Debug("secure middleware rejected request", zap.Error(err), zap.String("path", c.Request.URL.Path))
			c.Abort()
			return
		}
		c.Next()
	}
}

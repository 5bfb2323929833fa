package middleware

import (
	"net/http"
	"strings"

	"group_chat_server/pkg/constants"
	"group_chat_server/pkg/errorx"
	"group_chat_server/pkg/util/jwt"

	"github.com/gin-gonic/gin"
)

// JWTAuth 校验 Access Token 并把调用方 ID 写入上下文
// 浏览器 websocket 无法自定义请求头，允许通过 ?token= 传递
func JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := extractToken(c)
		if !ok {
			abortUnauthorized(c, "请先登录")
			return
		}

		claims, err := jwt.ParseToken(token)
		if err != nil {
			abortUnauthorized(c, "Token 已过期或无效，请重新登录")
			return
		}
		if !claims.IsAccessToken() || claims.UserID == "" {
			abortUnauthorized(c, "请使用 Access Token 访问此接口")
			return
		}

		c.Set(constants.CtxUserIDKey, claims.UserID)
		c.Next()
	}
}

func extractToken(c *gin.Context) (string, bool) {
	if header := c.GetHeader("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			return "", false
		}
		return parts[1], true
	}
	if q := c.Query("token"); q != "" {
		return q, true
	}
	return "", false
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"code": errorx.CodeUnauthorized,
		"msg":  msg,
	})
}

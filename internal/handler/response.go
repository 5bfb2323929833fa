package handler

import (
	"errors"
	"net/http"

	"group_chat_server/pkg/errorx"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// ResponseData 统一响应结构体
type ResponseData struct {
	Code int `json:"code"`           // 业务响应状态码
	Msg  any `json:"msg"`            // 提示信息
	Data any `json:"data,omitempty"` // 数据
}

// HandleSuccess 返回 200 成功响应
func HandleSuccess(c *gin.Context, data any) {
	c.JSON(http.StatusOK, ResponseData{
		Code: errorx.CodeSuccess,
		Msg:  "success",
		Data: data,
	})
}

// HandleCreated 返回 201 成功响应
func HandleCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, ResponseData{
		Code: errorx.CodeSuccess,
		Msg:  "success",
		Data: data,
	})
}

// HandleError 业务错误按错误码映射 HTTP 状态
// 内部错误只记录日志，对外统一为服务繁忙
func HandleError(c *gin.Context, err error) {
	var codeErr *errorx.CodeError
	if !errors.As(err, &codeErr) || errorx.IsInternal(codeErr.Code) {
		zap.L().Error("system error",
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
			zap.Error(err),
		)
		abort(c, errorx.ErrServerBusy.Code, errorx.ErrServerBusy.Msg)
		return
	}
	abort(c, codeErr.Code, codeErr.Msg)
}

// HandleParamError 处理参数绑定错误，validator 错误翻译为字段提示
func HandleParamError(c *gin.Context, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) && Trans != nil {
		abort(c, errorx.CodeInvalidParam, RemoveTopStruct(validationErrs.Translate(Trans)))
		return
	}
	zap.L().Debug("param bind error", zap.Error(err))
	abort(c, errorx.ErrInvalidParam.Code, errorx.ErrInvalidParam.Msg)
}

func abort(c *gin.Context, code int, msg any) {
	c.AbortWithStatusJSON(errorx.HTTPStatus(code), ResponseData{
		Code: code,
		Msg:  msg,
	})
}

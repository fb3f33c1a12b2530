package response

import (
	"Mosaic/internal/api/dto"
	"Mosaic/internal/service"
	stdjson "encoding/json"
	"errors"
	"io"
	log "log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
)

const (
	Ok                  = 200
	BadRequest          = 400
	NotFound            = 404
	InternalServerError = 500
)

// MsgRetrievalFailed 未知错误统一返回的提示
const MsgRetrievalFailed = "error retrieving resource"

// Success 成功返回封装
func Success(ctx *gin.Context, data interface{}) {
	ctx.JSON(http.StatusOK, dto.Response{
		Code:    Ok,
		Message: "success",
		Data:    data,
	})
}

// Fail 失败返回封装，HTTP 状态码与业务码一致
func Fail(c *gin.Context, businessCode int, message string) {
	c.JSON(businessCode, dto.Response{
		Code:    businessCode,
		Message: message,
		Data:    nil,
	})
}

// Error 处理错误
func Error(c *gin.Context, err error) {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		Fail(c, BadRequest, "参数错误")
		return
	}

	if isMalformedBody(err) {
		Fail(c, BadRequest, "Json错误")
		return
	}

	code, ok := service.ErrorCode(err)
	if ok && code < InternalServerError {
		Fail(c, code, err.Error())
		return
	}
	if !ok {
		code = InternalServerError
	}
	log.ErrorContext(c.Request.Context(), "Error", "path", c.FullPath(), "err", err)
	Fail(c, code, MsgRetrievalFailed)
}

// isMalformedBody gin 默认用 encoding/json 解码请求体
func isMalformedBody(err error) bool {
	var typeErr *json.UnmarshalTypeError
	var stdTypeErr *stdjson.UnmarshalTypeError
	var syntaxErr *stdjson.SyntaxError
	return errors.As(err, &typeErr) ||
		errors.As(err, &stdTypeErr) ||
		errors.As(err, &syntaxErr) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF)
}

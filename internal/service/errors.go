package service

import (
	"Mosaic/internal/pkg/graph"
	"errors"
)

const (
	BadRequest          = 400
	NotFound            = 404
	BadGateway          = 502
	InternalServerError = 500
)

var (
	ErrParamInvalid        = errors.New("参数错误")
	ErrPostNotFound        = errors.New("post not found")
	ErrProfileNotFound     = errors.New("profile not found")
	ErrIndexUpdateFailed   = errors.New("index update failed")
	ErrPostRetrievalFailed = errors.New("error retrieving post")
)

var ErrorMap = map[error]int{
	ErrParamInvalid:                 BadRequest,
	ErrPostNotFound:                 NotFound,
	ErrProfileNotFound:              NotFound,
	ErrIndexUpdateFailed:            BadGateway,
	ErrPostRetrievalFailed:          InternalServerError,
	graph.ErrUnexpectedResultFormat: InternalServerError,
}

// ErrorCode 按 errors.Is 查找业务码，包装过的错误也能命中
func ErrorCode(err error) (int, bool) {
	if code, ok := ErrorMap[err]; ok {
		return code, true
	}
	// 先匹配 not found，再匹配外层的 retrieval failed
	for _, target := range []error{ErrPostNotFound, ErrProfileNotFound, ErrParamInvalid, ErrIndexUpdateFailed} {
		if errors.Is(err, target) {
			return ErrorMap[target], true
		}
	}
	for target, code := range ErrorMap {
		if errors.Is(err, target) {
			return code, true
		}
	}
	return 0, false
}

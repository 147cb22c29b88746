package http

import (
	"errors"
	"net/http"

	"lunch-picker/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// 错误码，供客户端区分同一状态码下的不同原因
const (
	CodeAlreadyExists     = "already_exists"
	CodeRetryLimitReached = "retry_limit_reached"
	CodeEmptyPool         = "empty_pool"
	CodeNotFound          = "not_found"
	CodeNoCurrentPick     = "no_current_pick"
	CodeInvalidInput      = "invalid_input"
	CodeStoreUnavailable  = "store_unavailable"
	CodeInternal          = "internal"
)

// HandleServiceError 将服务层错误映射为 HTTP 状态码和错误码
func HandleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAlreadyExists):
		CodedErrorResponse(c, http.StatusConflict, CodeAlreadyExists, err.Error())
	case errors.Is(err, service.ErrRetryLimitReached):
		// 与传输层限流同为 429，靠 code 区分
		CodedErrorResponse(c, http.StatusTooManyRequests, CodeRetryLimitReached, err.Error())
	case errors.Is(err, service.ErrEmptyPool):
		CodedErrorResponse(c, http.StatusUnprocessableEntity, CodeEmptyPool, err.Error())
	case errors.Is(err, service.ErrPlaceNotFound), errors.Is(err, service.ErrMenuNotFound):
		CodedErrorResponse(c, http.StatusNotFound, CodeNotFound, err.Error())
	case errors.Is(err, service.ErrNoCurrentPick):
		CodedErrorResponse(c, http.StatusConflict, CodeNoCurrentPick, err.Error())
	case errors.Is(err, service.ErrInvalidRoomID),
		errors.Is(err, service.ErrInvalidName),
		errors.Is(err, service.ErrInvalidKind),
		errors.Is(err, service.ErrInvalidScore):
		CodedErrorResponse(c, http.StatusBadRequest, CodeInvalidInput, err.Error())
	case errors.Is(err, service.ErrStoreUnavailable):
		// 不把底层存储错误暴露给客户端
		logrus.WithError(err).Error("Room store unavailable")
		CodedErrorResponse(c, http.StatusServiceUnavailable, CodeStoreUnavailable, service.ErrStoreUnavailable.Error())
	default:
		logrus.WithError(err).Error("Unhandled internal server error")
		CodedErrorResponse(c, http.StatusInternalServerError, CodeInternal, "An unexpected error occurred")
	}
}

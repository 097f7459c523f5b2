package router

import (
	"errors"
	"net/http"

	"github.com/questx-lab/raffle/pkg/errorx"
)

type response struct {
	Code  int64  `json:"code"`
	Error string `json:"error,omitempty"`
	Data  any    `json:"data,omitempty"`
}

func newResponse(data any) response {
	return response{
		Code: 0,
		Data: data,
	}
}

func newErrorResponse(err error) response {
	var code errorx.Coder
	if errors.As(err, &code) {
		return response{
			Code:  int64(code.ErrorCode()),
			Error: err.Error(),
		}
	}

	return response{
		Code:  int64(errorx.Unknown.Code),
		Error: errorx.Unknown.Message,
	}
}

func statusCode(err error) int {
	var code errorx.Coder
	if !errors.As(err, &code) {
		return http.StatusInternalServerError
	}

	switch errorx.Code(code.ErrorCode()) {
	case errorx.Unauthenticated:
		return http.StatusUnauthorized
	case errorx.PermissionDenied, errorx.NotOperator:
		return http.StatusForbidden
	case errorx.NotFound:
		return http.StatusNotFound
	case errorx.Internal, errorx.Unknown.Code:
		return http.StatusInternalServerError
	case errorx.Unavailable:
		return http.StatusServiceUnavailable
	case errorx.NotImplemented:
		return http.StatusNotImplemented
	default:
		return http.StatusBadRequest
	}
}

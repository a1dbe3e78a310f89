package api

import (
	"errors"
	"net/http"

	"alcyxob/gym-platform/internal/logger"
	"alcyxob/gym-platform/internal/scheduler"
	"alcyxob/gym-platform/internal/service"

	"github.com/gin-gonic/gin"
)

type errorResponse struct {
	Error        string   `json:"error"`
	ToastMessage string   `json:"toastMessage"`
	Code         string   `json:"code"`
	Fields       []string `json:"fields,omitempty"`
}

var kindStatus = map[service.ErrorKind]int{
	service.KindValidation:    http.StatusBadRequest,
	service.KindUnprocessable: http.StatusUnprocessableEntity,
	service.KindNotFound:      http.StatusNotFound,
	service.KindForbidden:     http.StatusForbidden,
	service.KindConflict:      http.StatusConflict,
	service.KindUnauthorized:  http.StatusUnauthorized,
	service.KindUnavailable:   http.StatusServiceUnavailable,
}

// respondError renders a service error. Unknown errors are logged and
// hidden behind a generic 500 outside debug mode.
func respondError(c *gin.Context, err error) {
	if errors.Is(err, scheduler.ErrRunInProgress) {
		c.AbortWithStatusJSON(http.StatusConflict, errorResponse{
			Error:        err.Error(),
			ToastMessage: "A weekly report run is already in progress",
			Code:         "RUN_IN_PROGRESS",
		})
		return
	}

	kind, code := service.Classify(err)
	status, ok := kindStatus[kind]
	if !ok {
		logger.WithError(err).Error("request failed",
			"request_id", c.GetString(ContextRequestIDKey),
			"method", c.Request.Method,
			"path", c.FullPath(),
		)
		msg := "Internal server error"
		if gin.Mode() == gin.DebugMode {
			msg = err.Error()
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, errorResponse{
			Error:        msg,
			ToastMessage: "Something went wrong, please try again later",
			Code:         code,
		})
		return
	}

	resp := errorResponse{Error: err.Error(), ToastMessage: err.Error(), Code: code}
	var ve *service.ValidationError
	if errors.As(err, &ve) {
		resp.Fields = ve.Fields
	}
	c.AbortWithStatusJSON(status, resp)
}

// bindError reports a malformed JSON body.
func bindError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{
		Error:        "Invalid request body: " + err.Error(),
		ToastMessage: "Invalid request body",
		Code:         "INVALID_BODY",
	})
}

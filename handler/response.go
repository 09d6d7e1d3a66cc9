package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/Suryansh0910/ImageProcessor/model"
	"github.com/Suryansh0910/ImageProcessor/service"
	"github.com/gin-gonic/gin"
)

// statusOf 把服务层错误映射为 HTTP 状态码
func statusOf(err error) int {
	switch {
	case errors.Is(err, service.ErrFileNotFound),
		errors.Is(err, service.ErrImageNotFound),
		errors.Is(err, service.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrInvalidFilename),
		errors.Is(err, service.ErrInvalidParams),
		errors.Is(err, service.ErrInvalidTolerance),
		errors.Is(err, service.ErrInvalidBuffer),
		errors.Is(err, service.ErrUnsupportedFormat),
		errors.Is(err, service.ErrMissingFields),
		errors.Is(err, service.ErrWeakPassword),
		errors.Is(err, service.ErrInvalidName),
		errors.Is(err, service.ErrEmailTaken),
		errors.Is(err, service.ErrMissingUser):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrGalleryLimit):
		return http.StatusForbidden
	case errors.Is(err, service.ErrQueueFull):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func fail(c *gin.Context, status int, message string, err error) {
	resp := model.ErrorResponse{Success: false, Message: message}
	if err != nil {
		resp.Error = err.Error()
	}
	c.AbortWithStatusJSON(status, resp)
}

// failWith 根据错误类型选择状态码；500 时使用 fallback 文案且不暴露内部错误
func failWith(c *gin.Context, err error, fallback string) {
	status := statusOf(err)
	switch status {
	case http.StatusInternalServerError:
		fail(c, status, fallback, nil)
	case http.StatusNotFound:
		fail(c, status, "File not found", err)
	default:
		fail(c, status, messageOf(err, fallback), err)
	}
}

func messageOf(err error, fallback string) string {
	for _, known := range []error{
		service.ErrInvalidFilename, service.ErrInvalidParams, service.ErrInvalidTolerance,
		service.ErrInvalidBuffer, service.ErrUnsupportedFormat, service.ErrMissingFields,
		service.ErrWeakPassword, service.ErrInvalidName, service.ErrEmailTaken,
		service.ErrMissingUser, service.ErrInvalidCredentials, service.ErrInvalidToken,
		service.ErrGalleryLimit, service.ErrQueueFull,
	} {
		if errors.Is(err, known) {
			return capitalize(known.Error())
		}
	}
	return fallback
}

func capitalize(s string) string {
	if s == "" || s[0] < 'a' || s[0] > 'z' {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}

// bindOptional 允许请求体为空，此时保留零值
func bindOptional(c *gin.Context, obj any) error {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return nil
	}
	if err := c.ShouldBindJSON(obj); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

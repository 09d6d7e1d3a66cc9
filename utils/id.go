package utils

import (
	"strings"

	"github.com/google/uuid"
	"github.com/segmentio/ksuid"
)

// GenerateFilename 生成随机文件名，ext 可带或不带前导点
func GenerateFilename(ext string) string {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	if ext == "" {
		return uuid.NewString()
	}
	return uuid.NewString() + "." + ext
}

// GenerateRequestID 生成按时间排序的请求ID
func GenerateRequestID() string {
	return ksuid.New().String()
}

package utils

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"
)

// FileMD5 计算文件内容的 MD5，作为处理结果缓存键的一部分
func FileMD5(filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = file.Close()
	}()

	hash := md5.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", fmt.Errorf("hash %s: %w", filePath, err)
	}

	return hex.EncodeToString(hash.Sum(nil)), nil
}

// ParamsKey 把操作参数拼成稳定的短键
func ParamsKey(op string, params ...any) string {
	parts := make([]string, 0, len(params)+1)
	parts = append(parts, op)
	for _, p := range params {
		parts = append(parts, fmt.Sprint(p))
	}
	sum := md5.Sum([]byte(strings.Join(parts, "|")))
	return op + ":" + hex.EncodeToString(sum[:8])
}

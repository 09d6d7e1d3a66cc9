package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/Suryansh0910/ImageProcessor/config"
	"github.com/Suryansh0910/ImageProcessor/model"
	"github.com/Suryansh0910/ImageProcessor/service"
	"github.com/Suryansh0910/ImageProcessor/utils"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type UploadHandler struct {
	cfg       *config.UploadConfig
	store     *service.FileStore
	maxPixels int64
}

func NewUploadHandler(cfg *config.UploadConfig, store *service.FileStore, maxPixels int64) *UploadHandler {
	return &UploadHandler{
		cfg:       cfg,
		store:     store,
		maxPixels: maxPixels,
	}
}

// Upload 处理图片上传
func (h *UploadHandler) Upload(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		fail(c, http.StatusBadRequest, "No file uploaded", err)
		return
	}

	// 验证文件大小
	if file.Size > h.cfg.MaxSize {
		fail(c, http.StatusBadRequest,
			fmt.Sprintf("File exceeds size limit (%d MB)", h.cfg.MaxSize/(1024*1024)), nil)
		return
	}

	// 验证文件类型
	contentType := file.Header.Get("Content-Type")
	if !h.isAllowedType(contentType) {
		fail(c, http.StatusBadRequest, "Unsupported file type", nil)
		return
	}

	filename, savePath, err := h.store.SaveUpload(file)
	if err != nil {
		utils.Logger.Error("failed to save file", zap.Error(err))
		fail(c, http.StatusInternalServerError, "Upload failed", nil)
		return
	}

	info, err := h.store.Info(service.AreaUploads, filename)
	if err != nil {
		utils.Logger.Warn("uploaded file is not a decodable image",
			zap.String("file", savePath), zap.Error(err))
		if rmErr := h.store.Remove(service.AreaUploads, filename); rmErr != nil {
			utils.Logger.Warn("failed to delete rejected upload", zap.Error(rmErr))
		}
		fail(c, http.StatusBadRequest, "Invalid image file", err)
		return
	}

	if err := service.CheckPixels(&service.ImageMeta{Width: info.Width, Height: info.Height}, h.maxPixels); err != nil {
		utils.Logger.Warn("uploaded image exceeds pixel limit",
			zap.String("file", savePath), zap.Error(err))
		if rmErr := h.store.Remove(service.AreaUploads, filename); rmErr != nil {
			utils.Logger.Warn("failed to delete rejected upload", zap.Error(rmErr))
		}
		fail(c, http.StatusBadRequest, "Image too large", err)
		return
	}

	utils.Logger.Info("file uploaded",
		zap.String("filename", filename),
		zap.String("original_name", file.Filename),
		zap.Int64("size", file.Size),
		zap.Int("width", info.Width),
		zap.Int("height", info.Height))

	c.JSON(http.StatusOK, model.FileResponse{
		Success: true,
		Message: "Upload successful",
		File:    info,
	})
}

// GetUploaded 返回上传的原图
func (h *UploadHandler) GetUploaded(c *gin.Context) {
	h.serve(c, service.AreaUploads)
}

// GetProcessed 返回处理结果
func (h *UploadHandler) GetProcessed(c *gin.Context) {
	h.serve(c, service.AreaProcessed)
}

func (h *UploadHandler) serve(c *gin.Context, area service.Area) {
	p, err := h.store.Existing(area, c.Param("filename"))
	if err != nil {
		fail(c, http.StatusNotFound, "Not found", nil)
		return
	}
	c.File(p)
}

// RequireFile 路径参数 filename 对应的文件必须存在于 area 中
func (h *UploadHandler) RequireFile(area service.Area) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := h.store.Existing(area, c.Param("filename")); err != nil {
			fail(c, http.StatusNotFound, "File not found", nil)
			return
		}
		c.Next()
	}
}

func (h *UploadHandler) isAllowedType(contentType string) bool {
	for _, allowed := range h.cfg.AllowedTypes {
		if strings.EqualFold(contentType, allowed) {
			return true
		}
	}
	return false
}

package handler

import (
	"net/http"

	"github.com/Suryansh0910/ImageProcessor/model"
	"github.com/Suryansh0910/ImageProcessor/service"
	"github.com/Suryansh0910/ImageProcessor/utils"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// TransformHandler 所有变换接口都以上传文件名为路径参数
type TransformHandler struct {
	images           *service.ImageService
	defaultTolerance int
}

func NewTransformHandler(images *service.ImageService, defaultTolerance int) *TransformHandler {
	if defaultTolerance < 0 {
		defaultTolerance = service.DefaultTolerance
	}
	return &TransformHandler{
		images:           images,
		defaultTolerance: defaultTolerance,
	}
}

func (h *TransformHandler) Resize(c *gin.Context) {
	var req model.ResizeRequest
	if !h.bind(c, &req, "Resize failed") {
		return
	}
	info, err := h.images.Resize(c.Request.Context(), c.Param("filename"), req.Width, req.Height)
	h.respond(c, info, err, "Resized", "Resize failed")
}

func (h *TransformHandler) Crop(c *gin.Context) {
	var req model.CropRequest
	if !h.bind(c, &req, "Crop failed") {
		return
	}
	info, err := h.images.Crop(c.Request.Context(), c.Param("filename"), req.Left, req.Top, req.Width, req.Height)
	h.respond(c, info, err, "Cropped", "Crop failed")
}

func (h *TransformHandler) Rotate(c *gin.Context) {
	var req model.RotateRequest
	if !h.bind(c, &req, "Rotate failed") {
		return
	}
	info, err := h.images.Rotate(c.Request.Context(), c.Param("filename"), req.Angle)
	h.respond(c, info, err, "Rotated", "Rotate failed")
}

func (h *TransformHandler) Filter(c *gin.Context) {
	var req model.FilterRequest
	if !h.bind(c, &req, "Filter failed") {
		return
	}
	info, err := h.images.Filter(c.Request.Context(), c.Param("filename"), req.Filter)
	h.respond(c, info, err, req.Filter+" applied", "Filter failed")
}

func (h *TransformHandler) Adjust(c *gin.Context) {
	var req model.AdjustRequest
	if !h.bind(c, &req, "Adjustment failed") {
		return
	}
	brightness, saturation := 1.0, 1.0
	if req.Brightness != nil {
		brightness = *req.Brightness
	}
	if req.Saturation != nil {
		saturation = *req.Saturation
	}
	info, err := h.images.Adjust(c.Request.Context(), c.Param("filename"), brightness, saturation)
	h.respond(c, info, err, "Adjustments applied", "Adjustment failed")
}

func (h *TransformHandler) Convert(c *gin.Context) {
	var req model.ConvertRequest
	if !h.bind(c, &req, "Convert failed") {
		return
	}
	info, err := h.images.Convert(c.Request.Context(), c.Param("filename"), req.Format, req.Quality)
	h.respond(c, info, err, "Converted to "+req.Format, "Convert failed")
}

// RemoveBackground tolerance 缺省为配置的默认值，负数或非数字拒绝
func (h *TransformHandler) RemoveBackground(c *gin.Context) {
	var req model.RemoveBgRequest
	if !h.bind(c, &req, "Invalid tolerance") {
		return
	}
	tolerance := h.defaultTolerance
	if req.Tolerance != nil {
		tolerance = *req.Tolerance
	}
	if tolerance < 0 {
		fail(c, http.StatusBadRequest, "Invalid tolerance", service.ErrInvalidTolerance)
		return
	}

	info, err := h.images.RemoveBackground(c.Request.Context(), c.Param("filename"), tolerance)
	h.respond(c, info, err, "Background removed", "Remove background failed")
}

func (h *TransformHandler) bind(c *gin.Context, req any, message string) bool {
	if err := bindOptional(c, req); err != nil {
		fail(c, http.StatusBadRequest, message, err)
		return false
	}
	return true
}

func (h *TransformHandler) respond(c *gin.Context, info *model.FileInfo, err error, message, fallback string) {
	if err != nil {
		if statusOf(err) >= http.StatusInternalServerError {
			utils.Logger.Error("failed to process image",
				zap.String("filename", c.Param("filename")),
				zap.String("path", c.FullPath()),
				zap.Error(err))
			_ = c.Error(err)
		}
		failWith(c, err, fallback)
		return
	}

	c.JSON(http.StatusOK, model.FileResponse{
		Success: true,
		Message: message,
		File:    info,
	})
}

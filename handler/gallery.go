package handler

import (
	"net/http"

	"github.com/Suryansh0910/ImageProcessor/model"
	"github.com/Suryansh0910/ImageProcessor/service"
	"github.com/Suryansh0910/ImageProcessor/utils"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type GalleryHandler struct {
	gallery *service.GalleryService
}

func NewGalleryHandler(gallery *service.GalleryService) *GalleryHandler {
	return &GalleryHandler{gallery: gallery}
}

// Count 返回用户已保存数量与免费上限
func (h *GalleryHandler) Count(c *gin.Context) {
	count, err := h.gallery.Count(c.Request.Context(), c.Param("userId"))
	if err != nil {
		utils.Logger.Error("failed to count gallery images", zap.Error(err))
		fail(c, http.StatusInternalServerError, "Error", nil)
		return
	}

	c.JSON(http.StatusOK, model.GalleryCountResponse{
		Count: count,
		Limit: h.gallery.Limit(),
	})
}

func (h *GalleryHandler) List(c *gin.Context) {
	images, err := h.gallery.List(c.Request.Context(), c.Param("userId"))
	if err != nil {
		utils.Logger.Error("failed to list gallery images", zap.Error(err))
		fail(c, http.StatusInternalServerError, "Error", nil)
		return
	}

	c.JSON(http.StatusOK, model.GalleryListResponse{
		Images: images,
		Count:  len(images),
	})
}

// Save 把处理结果保存到图库
func (h *GalleryHandler) Save(c *gin.Context) {
	var req model.SaveRequest
	if err := bindOptional(c, &req); err != nil {
		fail(c, http.StatusBadRequest, "User ID required", err)
		return
	}

	img, count, err := h.gallery.Save(c.Request.Context(), req.UserID, c.Param("filename"), req.OriginalName)
	if err != nil {
		if statusOf(err) == http.StatusInternalServerError {
			utils.Logger.Error("failed to save to gallery", zap.Error(err))
		}
		failWith(c, err, "Save failed")
		return
	}

	c.JSON(http.StatusOK, model.GallerySaveResponse{
		Success: true,
		Message: "Saved",
		Image:   img,
		Count:   count,
	})
}

func (h *GalleryHandler) Delete(c *gin.Context) {
	count, err := h.gallery.Delete(c.Request.Context(), c.Param("imageId"))
	if err != nil {
		if statusOf(err) == http.StatusNotFound {
			fail(c, http.StatusNotFound, "Not found", nil)
			return
		}
		utils.Logger.Error("failed to delete gallery image", zap.Error(err))
		fail(c, http.StatusInternalServerError, "Delete failed", nil)
		return
	}

	c.JSON(http.StatusOK, model.GalleryDeleteResponse{
		Success: true,
		Message: "Deleted",
		Count:   count,
	})
}

// Public 分享链接，无需登录
func (h *GalleryHandler) Public(c *gin.Context) {
	p, err := h.gallery.Public(c.Request.Context(), c.Param("imageId"))
	if err != nil {
		if statusOf(err) == http.StatusNotFound {
			fail(c, http.StatusNotFound, "Not found", nil)
			return
		}
		utils.Logger.Error("failed to load public image", zap.Error(err))
		fail(c, http.StatusInternalServerError, "Error", nil)
		return
	}
	c.File(p)
}

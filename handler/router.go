package handler

import (
	"github.com/Suryansh0910/ImageProcessor/middleware"
	"github.com/Suryansh0910/ImageProcessor/service"
	"github.com/gin-gonic/gin"
)

// Handlers 路由依赖
type Handlers struct {
	Auth      *AuthHandler
	Upload    *UploadHandler
	Transform *TransformHandler
	Gallery   *GalleryHandler
	Tokens    middleware.TokenParser
}

// Register 注册 /api 下的全部路由
func Register(r gin.IRouter, h Handlers) {
	auth := r.Group("/api/auth")
	{
		auth.POST("/signup", h.Auth.Signup)
		auth.POST("/login", h.Auth.Login)
		auth.GET("/verify", middleware.Auth(h.Tokens), h.Auth.Verify)
	}

	img := r.Group("/api/image")
	upload := h.Upload.RequireFile(service.AreaUploads)
	processed := h.Upload.RequireFile(service.AreaProcessed)
	{
		img.POST("/upload", h.Upload.Upload)

		img.POST("/resize/:filename", upload, h.Transform.Resize)
		img.POST("/crop/:filename", upload, h.Transform.Crop)
		img.POST("/rotate/:filename", upload, h.Transform.Rotate)
		img.POST("/filter/:filename", upload, h.Transform.Filter)
		img.POST("/adjust/:filename", upload, h.Transform.Adjust)
		img.POST("/convert/:filename", upload, h.Transform.Convert)
		img.POST("/remove-bg/:filename", upload, h.Transform.RemoveBackground)

		img.GET("/uploads/:filename", h.Upload.GetUploaded)
		img.GET("/processed/:filename", h.Upload.GetProcessed)

		img.GET("/gallery/count/:userId", h.Gallery.Count)
		img.GET("/gallery/:userId", h.Gallery.List)
		img.POST("/save/:filename", processed, h.Gallery.Save)
		img.DELETE("/gallery/:imageId", h.Gallery.Delete)
		img.GET("/public/:imageId", h.Gallery.Public)
	}
}

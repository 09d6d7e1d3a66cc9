package model

// FileInfo 处理后或上传后的文件信息
type FileInfo struct {
	Filename string `json:"filename"`
	Path     string `json:"path"`
	Size     int64  `json:"size"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
}

// FileResponse 上传/处理响应
type FileResponse struct {
	Success bool      `json:"success"`
	Message string    `json:"message"`
	File    *FileInfo `json:"file,omitempty"`
}

// ErrorResponse 错误响应
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// AuthResponse 注册/登录响应
type AuthResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Token   string      `json:"token"`
	User    *PublicUser `json:"user"`
}

// VerifyResponse token 校验响应
type VerifyResponse struct {
	Success bool        `json:"success"`
	User    *PublicUser `json:"user"`
}

// GalleryCountResponse 图库数量
type GalleryCountResponse struct {
	Count int64 `json:"count"`
	Limit int64 `json:"limit"`
}

// GalleryListResponse 图库列表
type GalleryListResponse struct {
	Images []*Image `json:"images"`
	Count  int      `json:"count"`
}

// GallerySaveResponse 保存到图库
type GallerySaveResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Image   *Image `json:"image"`
	Count   int64  `json:"count"`
}

// GalleryDeleteResponse 从图库删除
type GalleryDeleteResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Count   int64  `json:"count"`
}

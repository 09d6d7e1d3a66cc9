package model

type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// 以下请求体字段均为可选，缺省时由处理层补默认值

type ResizeRequest struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type CropRequest struct {
	Left   int `json:"left"`
	Top    int `json:"top"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

type RotateRequest struct {
	Angle float64 `json:"angle"`
}

type FilterRequest struct {
	Filter string `json:"filter"`
}

type AdjustRequest struct {
	Brightness *float64 `json:"brightness"`
	Saturation *float64 `json:"saturation"`
}

type ConvertRequest struct {
	Format  string `json:"format"`
	Quality int    `json:"quality"`
}

type RemoveBgRequest struct {
	Tolerance *int `json:"tolerance"`
}

type SaveRequest struct {
	UserID       string `json:"userId"`
	OriginalName string `json:"originalName"`
}

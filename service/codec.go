package service

import (
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

var ErrUnsupportedFormat = errors.New("unsupported image format")

// DefaultMaxPixels 单张图片允许的最大像素数
const DefaultMaxPixels = 268402689

// ImageMeta 图片基础元数据
type ImageMeta struct {
	Width  int
	Height int
	Format string
}

// EncodeOptions 编码参数
type EncodeOptions struct {
	Quality int
}

// NormalizeFormat 统一格式名称，返回格式与文件扩展名
func NormalizeFormat(format string) (string, string, error) {
	switch strings.ToLower(strings.TrimPrefix(format, ".")) {
	case "jpg", "jpeg":
		return "jpeg", "jpg", nil
	case "png":
		return "png", "png", nil
	case "webp":
		return "webp", "webp", nil
	case "gif":
		return "gif", "gif", nil
	case "bmp":
		return "bmp", "bmp", nil
	case "tif", "tiff":
		return "tiff", "tiff", nil
	}
	return "", "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

// DecodeFile 按存储顺序解码像素，不读取 EXIF 方向
func DecodeFile(path string) (image.Image, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

// DecodeRGBA 解码为紧密排列的 NRGBA 缓冲区，强制带 alpha 通道，原点为 (0,0)
func DecodeRGBA(path string) (*image.NRGBA, error) {
	img, err := DecodeFile(path)
	if err != nil {
		return nil, err
	}
	return ToRGBA(img), nil
}

// ToRGBA 保证 Stride == 4*width
func ToRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) && n.Stride == 4*n.Rect.Dx() {
		return n
	}
	return imaging.Clone(img)
}

// Encode 按指定格式写出图片
func Encode(w io.Writer, img image.Image, format string, opts EncodeOptions) error {
	format, _, err := NormalizeFormat(format)
	if err != nil {
		return err
	}

	switch format {
	case "jpeg":
		quality := opts.Quality
		if quality <= 0 || quality > 100 {
			quality = 80
		}
		return imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(quality))
	case "png":
		return imaging.Encode(w, img, imaging.PNG)
	case "gif":
		return imaging.Encode(w, img, imaging.GIF)
	case "bmp":
		return imaging.Encode(w, img, imaging.BMP)
	case "tiff":
		return imaging.Encode(w, img, imaging.TIFF)
	case "webp":
		// nativewebp 只支持无损编码，忽略 quality
		return nativewebp.Encode(w, img, nil)
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

// EncodeFile 编码并写入文件，失败时删除半成品
func EncodeFile(path string, img image.Image, format string, opts EncodeOptions) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	if err := Encode(f, img, format, opts); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

// CheckPixels 像素数超过 max 时返回 ErrInvalidParams，max <= 0 时使用 DefaultMaxPixels
func CheckPixels(meta *ImageMeta, max int64) error {
	if max <= 0 {
		max = DefaultMaxPixels
	}
	if int64(meta.Width)*int64(meta.Height) > max {
		return fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrInvalidParams, meta.Width, meta.Height, max)
	}
	return nil
}

// Metadata 仅读取图片头获取尺寸与格式
func Metadata(path string) (*ImageMeta, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}
	return &ImageMeta{Width: cfg.Width, Height: cfg.Height, Format: format}, nil
}

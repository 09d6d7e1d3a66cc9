package service

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"time"

	"github.com/Suryansh0910/ImageProcessor/config"
	"github.com/Suryansh0910/ImageProcessor/model"
	"github.com/Suryansh0910/ImageProcessor/utils"
	"github.com/disintegration/imaging"
	"github.com/nfnt/resize"
	"go.uber.org/zap"
)

var (
	ErrQueueFull     = errors.New("processing queue is full, try again later")
	ErrInvalidParams = errors.New("invalid parameters")
)

// 支持的滤镜
const (
	FilterGrayscale = "grayscale"
	FilterSepia     = "sepia"
	FilterInvert    = "invert"
	FilterBlur      = "blur"
	FilterSharpen   = "sharpen"
	FilterWarm      = "warm"
	FilterCool      = "cool"
	FilterVivid     = "vivid"
)

// ImageService 负责所有图片变换，每次变换都会在 processed 目录生成新文件
type ImageService struct {
	store             *FileStore
	cache             ResultCache
	semaphore         chan struct{}
	queueTimeout      time.Duration
	parallelThreshold int
	workers           int
	jpegQuality       int
	maxPixels         int64
}

func NewImageService(cfg *config.ProcessingConfig, store *FileStore, cache ResultCache) *ImageService {
	if cache == nil {
		cache = NoopCache()
	}
	return &ImageService{
		store:             store,
		cache:             cache,
		semaphore:         make(chan struct{}, max(1, cfg.MaxConcurrent)),
		queueTimeout:      time.Duration(cfg.QueueTimeout) * time.Second,
		parallelThreshold: cfg.ParallelThreshold,
		workers:           cfg.Workers,
		jpegQuality:       cfg.JPEGQuality,
		maxPixels:         cfg.MaxPixels,
	}
}

// job 描述一次变换：输出格式与对解码结果的处理
type job struct {
	op      string
	params  []any
	format  string
	quality int
	apply   func(srcPath string) (image.Image, error)
}

func (s *ImageService) Resize(ctx context.Context, filename string, width, height int) (*model.FileInfo, error) {
	if width < 0 || height < 0 {
		return nil, fmt.Errorf("%w: width and height must not be negative", ErrInvalidParams)
	}

	return s.run(ctx, filename, job{
		op:     "resize",
		params: []any{width, height},
		format: "jpeg",
		apply: func(p string) (image.Image, error) {
			img, err := DecodeFile(p)
			if err != nil || (width == 0 && height == 0) {
				return img, err
			}
			return resize.Resize(uint(width), uint(height), img, resize.Lanczos3), nil
		},
	})
}

func (s *ImageService) Crop(ctx context.Context, filename string, left, top, width, height int) (*model.FileInfo, error) {
	if left < 0 || top < 0 || width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: crop rectangle must have a positive size", ErrInvalidParams)
	}

	return s.run(ctx, filename, job{
		op:     "crop",
		params: []any{left, top, width, height},
		format: "jpeg",
		apply: func(p string) (image.Image, error) {
			img, err := DecodeFile(p)
			if err != nil {
				return nil, err
			}
			b := img.Bounds()
			rect := image.Rect(left, top, left+width, top+height).Add(b.Min)
			if !rect.In(b) {
				return nil, fmt.Errorf("%w: crop area %v outside image %dx%d", ErrInvalidParams, rect, b.Dx(), b.Dy())
			}
			return imaging.Crop(img, rect), nil
		},
	})
}

// Rotate 顺时针旋转，angle 为 0 时旋转 90 度
func (s *ImageService) Rotate(ctx context.Context, filename string, angle float64) (*model.FileInfo, error) {
	if angle == 0 {
		angle = 90
	}

	return s.run(ctx, filename, job{
		op:     "rotate",
		params: []any{angle},
		format: "jpeg",
		apply: func(p string) (image.Image, error) {
			img, err := DecodeFile(p)
			if err != nil {
				return nil, err
			}
			// imaging 按逆时针方向旋转
			return imaging.Rotate(img, -angle, color.Black), nil
		},
	})
}

// Filter 应用预设滤镜，未知滤镜原样输出
func (s *ImageService) Filter(ctx context.Context, filename, filter string) (*model.FileInfo, error) {
	return s.run(ctx, filename, job{
		op:     "filter",
		params: []any{filter},
		format: "jpeg",
		apply: func(p string) (image.Image, error) {
			img, err := DecodeFile(p)
			if err != nil {
				return nil, err
			}
			return applyFilter(img, filter), nil
		},
	})
}

// Adjust brightness 与 saturation 均为倍数，1 表示不变
func (s *ImageService) Adjust(ctx context.Context, filename string, brightness, saturation float64) (*model.FileInfo, error) {
	if brightness < 0 || saturation < 0 {
		return nil, fmt.Errorf("%w: brightness and saturation must not be negative", ErrInvalidParams)
	}

	return s.run(ctx, filename, job{
		op:     "adjust",
		params: []any{brightness, saturation},
		format: "jpeg",
		apply: func(p string) (image.Image, error) {
			img, err := DecodeFile(p)
			if err != nil {
				return nil, err
			}
			return modulate(img, brightness, saturation), nil
		},
	})
}

func (s *ImageService) Convert(ctx context.Context, filename, format string, quality int) (*model.FileInfo, error) {
	format, _, err := NormalizeFormat(format)
	if err != nil {
		return nil, err
	}

	return s.run(ctx, filename, job{
		op:      "convert",
		params:  []any{format, quality},
		format:  format,
		quality: quality,
		apply:   DecodeFile,
	})
}

// RemoveBackground 解码为 RGBA 缓冲区，按左上角颜色去除背景后输出 PNG
func (s *ImageService) RemoveBackground(ctx context.Context, filename string, tolerance int) (*model.FileInfo, error) {
	if tolerance < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidTolerance, tolerance)
	}

	return s.run(ctx, filename, job{
		op:     "remove-bg",
		params: []any{tolerance},
		format: "png",
		apply: func(p string) (image.Image, error) {
			img, err := DecodeRGBA(p)
			if err != nil {
				return nil, err
			}

			w, h := img.Rect.Dx(), img.Rect.Dy()
			if s.parallelThreshold > 0 && w*h >= s.parallelThreshold {
				err = RemoveBackgroundParallel(img.Pix, w, h, tolerance, s.workers)
			} else {
				err = RemoveBackground(img.Pix, w, h, tolerance)
			}
			if err != nil {
				return nil, err
			}
			return img, nil
		},
	})
}

func (s *ImageService) run(ctx context.Context, filename string, j job) (*model.FileInfo, error) {
	srcPath, err := s.store.Existing(AreaUploads, filename)
	if err != nil {
		return nil, err
	}

	// 解码前按图片头校验像素数
	meta, err := Metadata(srcPath)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", j.op, filename, err)
	}
	if err := CheckPixels(meta, s.maxPixels); err != nil {
		return nil, err
	}

	cacheKey := ""
	if sum, err := utils.FileMD5(srcPath); err != nil {
		utils.Logger.Warn("failed to hash source file", zap.String("file", srcPath), zap.Error(err))
	} else {
		cacheKey = sum + ":" + utils.ParamsKey(j.op, j.params...)
		if info := s.cached(ctx, cacheKey); info != nil {
			utils.Logger.Info("cache hit", zap.String("op", j.op), zap.String("cache_key", cacheKey))
			return info, nil
		}
	}

	// 并发控制
	waitCtx, cancel := context.WithTimeout(ctx, s.queueTimeout)
	defer cancel()

	select {
	case s.semaphore <- struct{}{}:
		defer func() { <-s.semaphore }()
	case <-waitCtx.Done():
		return nil, ErrQueueFull
	}

	start := time.Now()

	img, err := j.apply(srcPath)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", j.op, filename, err)
	}

	_, ext, err := NormalizeFormat(j.format)
	if err != nil {
		return nil, err
	}
	quality := j.quality
	if quality <= 0 {
		quality = s.jpegQuality
	}

	outName, outPath := s.store.NewOutput(ext)
	if err := EncodeFile(outPath, img, j.format, EncodeOptions{Quality: quality}); err != nil {
		return nil, err
	}

	info, err := s.store.Info(AreaProcessed, outName)
	if err != nil {
		return nil, err
	}

	if cacheKey != "" {
		if err := s.cache.SetResult(ctx, cacheKey, info); err != nil {
			utils.Logger.Warn("failed to set cache", zap.Error(err))
		}
	}

	utils.Logger.Info("image processed",
		zap.String("op", j.op),
		zap.String("source", filename),
		zap.String("output", outName),
		zap.Int("width", info.Width),
		zap.Int("height", info.Height),
		zap.Duration("duration", time.Since(start)))

	return info, nil
}

// cached 仅当缓存记录对应的文件仍存在时才返回
func (s *ImageService) cached(ctx context.Context, key string) *model.FileInfo {
	info, err := s.cache.GetResult(ctx, key)
	if err != nil {
		utils.Logger.Warn("failed to get cache", zap.Error(err))
		return nil
	}
	if info == nil {
		return nil
	}
	if _, err := s.store.Existing(AreaProcessed, info.Filename); err != nil {
		return nil
	}
	return info
}

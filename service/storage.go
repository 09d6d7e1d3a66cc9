package service

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Suryansh0910/ImageProcessor/config"
	"github.com/Suryansh0910/ImageProcessor/model"
	"github.com/Suryansh0910/ImageProcessor/utils"
	"go.uber.org/zap"
)

var (
	ErrFileNotFound    = errors.New("file not found")
	ErrInvalidFilename = errors.New("invalid filename")
)

// Area 文件所在的存储区域
type Area string

const (
	AreaUploads   Area = "uploads"
	AreaProcessed Area = "processed"
	AreaGallery   Area = "gallery"
)

// FileStore 管理上传、处理结果与图库三个目录
type FileStore struct {
	dirs map[Area]string
}

func NewFileStore(cfg *config.UploadConfig) *FileStore {
	return &FileStore{
		dirs: map[Area]string{
			AreaUploads:   cfg.UploadDir,
			AreaProcessed: cfg.ProcessedDir,
			AreaGallery:   cfg.GalleryDir,
		},
	}
}

// Init 确保所有目录存在
func (s *FileStore) Init() error {
	for area, dir := range s.dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s dir: %w", area, err)
		}
	}
	return nil
}

func (s *FileStore) Dir(area Area) string {
	return s.dirs[area]
}

// Path 返回区域内文件的完整路径，拒绝任何路径穿越
func (s *FileStore) Path(area Area, name string) (string, error) {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || filepath.Base(name) != name {
		return "", fmt.Errorf("%w: %q", ErrInvalidFilename, name)
	}
	return filepath.Join(s.dirs[area], name), nil
}

// Existing 同 Path，但文件必须存在
func (s *FileStore) Existing(area Area, name string) (string, error) {
	p, err := s.Path(area, name)
	if err != nil {
		return "", err
	}
	st, err := os.Stat(p)
	if err != nil || st.IsDir() {
		return "", fmt.Errorf("%w: %s/%s", ErrFileNotFound, area, name)
	}
	return p, nil
}

// SaveUpload 以随机文件名保存上传文件，保留小写扩展名
func (s *FileStore) SaveUpload(fh *multipart.FileHeader) (string, string, error) {
	name := utils.GenerateFilename(filepath.Ext(fh.Filename))
	dst := filepath.Join(s.dirs[AreaUploads], name)

	src, err := fh.Open()
	if err != nil {
		return "", "", fmt.Errorf("open upload: %w", err)
	}
	defer func() {
		_ = src.Close()
	}()

	if err := writeFile(dst, src); err != nil {
		return "", "", err
	}
	return name, dst, nil
}

// NewOutput 在 processed 目录下分配输出文件
func (s *FileStore) NewOutput(ext string) (string, string) {
	if ext == "" {
		ext = "jpg"
	}
	name := utils.GenerateFilename(ext)
	return name, filepath.Join(s.dirs[AreaProcessed], name)
}

// Info 组装文件信息（大小与尺寸）
func (s *FileStore) Info(area Area, name string) (*model.FileInfo, error) {
	p, err := s.Existing(area, name)
	if err != nil {
		return nil, err
	}
	st, err := os.Stat(p)
	if err != nil {
		return nil, err
	}
	meta, err := Metadata(p)
	if err != nil {
		return nil, err
	}

	return &model.FileInfo{
		Filename: name,
		Path:     "/" + string(area) + "/" + name,
		Size:     st.Size(),
		Width:    meta.Width,
		Height:   meta.Height,
	}, nil
}

// CopyToGallery 将文件复制进图库目录
func (s *FileStore) CopyToGallery(srcPath, name string) (string, error) {
	dst, err := s.Path(AreaGallery, name)
	if err != nil {
		return "", err
	}

	src, err := os.Open(srcPath)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", srcPath, err)
	}
	defer func() {
		_ = src.Close()
	}()

	if err := writeFile(dst, src); err != nil {
		return "", err
	}
	return dst, nil
}

// Remove 删除区域内文件，文件不存在不视为错误
func (s *FileStore) Remove(area Area, name string) error {
	p, err := s.Path(area, name)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Cleanup 删除 uploads 与 processed 中超过 maxAge 的文件，返回删除数量
func (s *FileStore) Cleanup(maxAge time.Duration, now time.Time) int {
	removed := 0
	for _, area := range []Area{AreaUploads, AreaProcessed} {
		dir := s.dirs[area]
		entries, err := os.ReadDir(dir)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				utils.Logger.Warn("failed to read dir", zap.String("dir", dir), zap.Error(err))
			}
			continue
		}

		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			info, err := e.Info()
			if err != nil || now.Sub(info.ModTime()) <= maxAge {
				continue
			}
			p := filepath.Join(dir, e.Name())
			if err := os.Remove(p); err != nil {
				utils.Logger.Warn("failed to delete expired file", zap.String("file", p), zap.Error(err))
				continue
			}
			removed++
		}
	}
	return removed
}

func writeFile(dst string, r io.Reader) error {
	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, r); err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return fmt.Errorf("write %s: %w", dst, err)
	}
	return out.Close()
}

package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/Suryansh0910/ImageProcessor/config"
	"github.com/Suryansh0910/ImageProcessor/model"
	"github.com/Suryansh0910/ImageProcessor/utils"
	"go.uber.org/zap"
)

var (
	ErrGalleryLimit  = errors.New("save limit reached")
	ErrImageNotFound = errors.New("image not found")
	ErrMissingUser   = errors.New("user ID required")
)

// GalleryService 管理用户保存的处理结果
type GalleryService struct {
	images ImageRepository
	store  *FileStore
	limit  int64
	now    func() time.Time

	mu    sync.Mutex
	locks map[string]*userLock
}

// userLock 串行化同一用户的保存操作，refs 为零时回收
type userLock struct {
	sync.Mutex
	refs int
}

func NewGalleryService(cfg *config.GalleryConfig, images ImageRepository, store *FileStore) *GalleryService {
	return &GalleryService{
		images: images,
		store:  store,
		limit:  cfg.FreeLimit,
		now:    time.Now,
		locks:  make(map[string]*userLock),
	}
}

func (s *GalleryService) Limit() int64 {
	return s.limit
}

func (s *GalleryService) Count(ctx context.Context, userID string) (int64, error) {
	return s.images.CountByUser(ctx, userID)
}

func (s *GalleryService) List(ctx context.Context, userID string) ([]*model.Image, error) {
	return s.images.ListByUser(ctx, userID)
}

// Save 把 processed 中的文件复制进图库并记录元数据，返回保存后的数量
func (s *GalleryService) Save(ctx context.Context, userID, processedName, originalName string) (*model.Image, int64, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, 0, ErrMissingUser
	}

	srcPath, err := s.store.Existing(AreaProcessed, processedName)
	if err != nil {
		return nil, 0, err
	}

	// 同一用户的计数与写入在一把锁内完成
	unlock := s.lockUser(userID)
	defer unlock()

	count, err := s.images.CountByUser(ctx, userID)
	if err != nil {
		return nil, 0, fmt.Errorf("count images: %w", err)
	}
	if count >= s.limit {
		return nil, count, ErrGalleryLimit
	}

	now := s.now()
	galleryName, err := s.galleryName(userID, now, processedName)
	if err != nil {
		return nil, count, err
	}
	dst, err := s.store.CopyToGallery(srcPath, galleryName)
	if err != nil {
		return nil, count, err
	}

	info, err := s.store.Info(AreaGallery, galleryName)
	if err != nil {
		_ = os.Remove(dst)
		return nil, count, err
	}
	meta, err := Metadata(dst)
	if err != nil {
		_ = os.Remove(dst)
		return nil, count, err
	}

	if originalName == "" {
		originalName = processedName
	}
	img := &model.Image{
		UserID:       userID,
		OriginalName: originalName,
		Filename:     galleryName,
		Path:         info.Path,
		Size:         info.Size,
		Width:        info.Width,
		Height:       info.Height,
		Format:       meta.Format,
		Type:         model.ImageTypeProcessed,
		CreatedAt:    now,
	}
	if err := s.images.Create(ctx, img); err != nil {
		_ = os.Remove(dst)
		return nil, count, fmt.Errorf("create image: %w", err)
	}

	utils.Logger.Info("image saved to gallery",
		zap.String("user_id", userID),
		zap.String("filename", galleryName))

	return img, count + 1, nil
}

// galleryName 生成 <userId>_<毫秒>_<name>，同一毫秒内重名时顺延
func (s *GalleryService) galleryName(userID string, now time.Time, name string) (string, error) {
	for ms := now.UnixMilli(); ; ms++ {
		candidate := fmt.Sprintf("%s_%d_%s", userID, ms, name)
		p, err := s.store.Path(AreaGallery, candidate)
		if err != nil {
			return "", err
		}
		if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
			return candidate, nil
		}
	}
}

func (s *GalleryService) lockUser(userID string) func() {
	s.mu.Lock()
	l := s.locks[userID]
	if l == nil {
		l = &userLock{}
		s.locks[userID] = l
	}
	l.refs++
	s.mu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()

		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, userID)
		}
		s.mu.Unlock()
	}
}

// Delete 删除图库文件与记录，返回该用户剩余数量
func (s *GalleryService) Delete(ctx context.Context, imageID string) (int64, error) {
	img, err := s.find(ctx, imageID)
	if err != nil {
		return 0, err
	}

	if err := s.store.Remove(AreaGallery, img.Filename); err != nil {
		utils.Logger.Warn("failed to delete gallery file",
			zap.String("filename", img.Filename), zap.Error(err))
	}
	if err := s.images.Delete(ctx, imageID); err != nil {
		return 0, err
	}

	return s.images.CountByUser(ctx, img.UserID)
}

// Public 返回图库文件路径，供分享链接直接访问
func (s *GalleryService) Public(ctx context.Context, imageID string) (string, error) {
	img, err := s.find(ctx, imageID)
	if err != nil {
		return "", err
	}
	return s.store.Existing(AreaGallery, img.Filename)
}

func (s *GalleryService) find(ctx context.Context, imageID string) (*model.Image, error) {
	img, err := s.images.FindByID(ctx, imageID)
	if err != nil {
		return nil, fmt.Errorf("find image: %w", err)
	}
	if img == nil {
		return nil, ErrImageNotFound
	}
	return img, nil
}

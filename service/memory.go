package service

import (
	"context"
	"sort"
	"sync"

	"github.com/Suryansh0910/ImageProcessor/model"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// 内存实现：未配置 MongoDB 时用于本地开发，数据不持久化

type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[primitive.ObjectID]*model.User
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[primitive.ObjectID]*model.User)}
}

func (r *MemoryUserRepository) Create(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == user.Email {
			return ErrEmailTaken
		}
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *MemoryUserRepository) FindByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *MemoryUserRepository) FindByID(_ context.Context, id string) (*model.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[oid]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

type MemoryImageRepository struct {
	mu     sync.RWMutex
	images map[primitive.ObjectID]*model.Image
}

func NewMemoryImageRepository() *MemoryImageRepository {
	return &MemoryImageRepository{images: make(map[primitive.ObjectID]*model.Image)}
}

func (r *MemoryImageRepository) Create(_ context.Context, img *model.Image) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if img.ID.IsZero() {
		img.ID = primitive.NewObjectID()
	}
	cp := *img
	r.images[img.ID] = &cp
	return nil
}

func (r *MemoryImageRepository) FindByID(_ context.Context, id string) (*model.Image, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	img, ok := r.images[oid]
	if !ok {
		return nil, nil
	}
	cp := *img
	return &cp, nil
}

func (r *MemoryImageRepository) ListByUser(_ context.Context, userID string) ([]*model.Image, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*model.Image, 0)
	for _, img := range r.images {
		if img.UserID == userID {
			cp := *img
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *MemoryImageRepository) CountByUser(_ context.Context, userID string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var n int64
	for _, img := range r.images {
		if img.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (r *MemoryImageRepository) Delete(_ context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrImageNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.images[oid]; !ok {
		return ErrImageNotFound
	}
	delete(r.images, oid)
	return nil
}

// MemoryCache 进程内结果缓存，不做过期
type MemoryCache struct {
	mu      sync.RWMutex
	results map[string]model.FileInfo
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{results: make(map[string]model.FileInfo)}
}

func (c *MemoryCache) GetResult(_ context.Context, key string) (*model.FileInfo, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	info, ok := c.results[key]
	if !ok {
		return nil, nil
	}
	return &info, nil
}

func (c *MemoryCache) SetResult(_ context.Context, key string, info *model.FileInfo) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.results[key] = *info
	return nil
}

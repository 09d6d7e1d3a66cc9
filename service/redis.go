package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/Suryansh0910/ImageProcessor/config"
	"github.com/Suryansh0910/ImageProcessor/model"
	"github.com/Suryansh0910/ImageProcessor/utils"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ResultCache 缓存处理结果，key 由源文件 MD5 与操作参数组成
type ResultCache interface {
	GetResult(ctx context.Context, key string) (*model.FileInfo, error)
	SetResult(ctx context.Context, key string, info *model.FileInfo) error
}

type RedisService struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisService(cfg *config.RedisConfig) *RedisService {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	return &RedisService{
		client: client,
		ttl:    cfg.TTL,
	}
}

func (s *RedisService) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// GetResult 未命中时返回 nil, nil
func (s *RedisService) GetResult(ctx context.Context, key string) (*model.FileInfo, error) {
	data, err := s.client.Get(ctx, "result:"+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var info model.FileInfo
	if err := json.Unmarshal(data, &info); err != nil {
		utils.Logger.Error("failed to unmarshal cached result",
			zap.String("key", key), zap.Error(err))
		return nil, err
	}

	return &info, nil
}

func (s *RedisService) SetResult(ctx context.Context, key string, info *model.FileInfo) error {
	data, err := json.Marshal(info)
	if err != nil {
		return err
	}

	return s.client.Set(ctx, "result:"+key, data, s.ttl).Err()
}

func (s *RedisService) Close() error {
	return s.client.Close()
}

// noopCache 在 Redis 不可用时使用
type noopCache struct{}

func NoopCache() ResultCache { return noopCache{} }

func (noopCache) GetResult(context.Context, string) (*model.FileInfo, error) { return nil, nil }

func (noopCache) SetResult(context.Context, string, *model.FileInfo) error { return nil }

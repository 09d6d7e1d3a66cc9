package service

import (
	"fmt"
	"time"

	"github.com/Suryansh0910/ImageProcessor/config"
	"github.com/Suryansh0910/ImageProcessor/utils"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// CleanupService 定期清理过期的上传与处理文件
type CleanupService struct {
	store    *FileStore
	maxAge   time.Duration
	schedule string
	cron     *cron.Cron
}

func NewCleanupService(cfg *config.CleanupConfig, store *FileStore) *CleanupService {
	return &CleanupService{
		store:    store,
		maxAge:   cfg.MaxAge,
		schedule: cfg.Interval,
		cron:     cron.New(),
	}
}

// Start 立即清理一次，然后按计划周期执行
func (s *CleanupService) Start() error {
	s.RunOnce()

	if _, err := s.cron.AddFunc(s.schedule, s.RunOnce); err != nil {
		return fmt.Errorf("schedule cleanup %q: %w", s.schedule, err)
	}
	s.cron.Start()
	return nil
}

func (s *CleanupService) RunOnce() {
	removed := s.store.Cleanup(s.maxAge, time.Now())
	if removed > 0 {
		utils.Logger.Info("expired files removed", zap.Int("count", removed))
	}
}

// Stop 等待正在执行的清理结束
func (s *CleanupService) Stop() {
	<-s.cron.Stop().Done()
}

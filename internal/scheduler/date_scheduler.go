package scheduler

import (
	"time"

	"github.com/hyeonkim/tabling-backend/internal/app/service"
	"github.com/hyeonkim/tabling-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

// DateScheduler 지나간 예약 오픈 날짜 자동 정리 스케줄러
type DateScheduler struct {
	cron         *cron.Cron
	storeService service.StoreService
}

// NewDateScheduler 날짜 정리 스케줄러 생성
func NewDateScheduler(storeService service.StoreService) *DateScheduler {
	return &DateScheduler{
		cron:         cron.New(),
		storeService: storeService,
	}
}

// Start 스케줄러 시작
func (s *DateScheduler) Start() error {
	// 매일 자정 5분에 지나간 날짜 정리
	// cron 표현식: "5 0 * * *" = 매일 0시 5분
	_, err := s.cron.AddFunc("5 0 * * *", func() {
		logger.Info("Starting scheduled expired date cleanup", nil)

		if err := s.storeService.PruneExpiredDates(time.Now()); err != nil {
			logger.Error("Failed to prune expired dates from scheduler", err)
			return
		}

		logger.Info("Successfully pruned expired dates from scheduler", nil)
	})

	if err != nil {
		logger.Error("Failed to add cron job for date cleanup", err)
		return err
	}

	s.cron.Start()
	logger.Info("Date cleanup scheduler started successfully (daily at 00:05)", nil)

	return nil
}

// Stop 스케줄러 중지
func (s *DateScheduler) Stop() {
	logger.Info("Stopping date cleanup scheduler...", nil)
	s.cron.Stop()
	logger.Info("Date cleanup scheduler stopped", nil)
}

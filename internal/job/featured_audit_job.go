package job

import (
	"Airena/internal/pkg/logger"
	"Airena/internal/service"
	"context"
	log "log/slog"
	"time"

	"github.com/google/uuid"
)

// FeaturedAuditJob 检查精选文章数量不超过一篇
type FeaturedAuditJob struct {
	postSvc service.PostService
	timeout time.Duration
}

func NewFeaturedAuditJob(postSvc service.PostService, timeout time.Duration) *FeaturedAuditJob {
	return &FeaturedAuditJob{
		postSvc: postSvc,
		timeout: timeout,
	}
}

func (s *FeaturedAuditJob) Run() {
	traceID := "job-featured-" + uuid.NewString()
	ctx := context.WithValue(context.Background(), logger.TraceIDKey, traceID)
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	count, err := s.postSvc.CountFeatured(ctx)
	if err != nil {
		log.ErrorContext(ctx, "count featured posts error", "err", err)
		return
	}
	if count > 1 {
		log.ErrorContext(ctx, "more than one featured post", "featured_count", count)
		return
	}
	log.InfoContext(ctx, "FeaturedAuditJob finished", "featured_count", count)
}

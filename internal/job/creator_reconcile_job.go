package job

import (
	"Airena/internal/pkg/logger"
	"Airena/internal/service"
	"context"
	log "log/slog"
	"time"

	"github.com/google/uuid"
)

// CreatorReconcileJob 找出晋升中断的用户：已有 creator 角色或申请已通过，但频道缺失
type CreatorReconcileJob struct {
	appSvc  service.ApplicationService
	timeout time.Duration
}

func NewCreatorReconcileJob(appSvc service.ApplicationService, timeout time.Duration) *CreatorReconcileJob {
	return &CreatorReconcileJob{
		appSvc:  appSvc,
		timeout: timeout,
	}
}

func (s *CreatorReconcileJob) Run() {
	traceID := "job-creator-" + uuid.NewString()
	ctx := context.WithValue(context.Background(), logger.TraceIDKey, traceID)
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	incomplete, err := s.appSvc.FindIncompletePromotions(ctx)
	if err != nil {
		log.ErrorContext(ctx, "find incomplete promotions error", "err", err)
		return
	}

	for _, p := range incomplete {
		log.WarnContext(ctx, "incomplete creator promotion", "user_id", p.UserID, "reason", p.Reason)
	}
	log.InfoContext(ctx, "CreatorReconcileJob finished", "incomplete_count", len(incomplete))
}

package cron

import (
	"Airena/internal/job"
	log "log/slog"

	"github.com/robfig/cron/v3"
)

type Manager struct {
	engine              *cron.Cron
	creatorReconcileJob *job.CreatorReconcileJob
	featuredAuditJob    *job.FeaturedAuditJob
}

func NewCronManager(creatorReconcileJob *job.CreatorReconcileJob, featuredAuditJob *job.FeaturedAuditJob) *Manager {
	return &Manager{
		engine: cron.New(cron.WithSeconds(), cron.WithChain(
			cron.Recover(cron.DefaultLogger),
			cron.SkipIfStillRunning(cron.DefaultLogger),
		)),
		creatorReconcileJob: creatorReconcileJob,
		featuredAuditJob:    featuredAuditJob,
	}
}

// RegisterJobs 注册定时任务
func (s *Manager) RegisterJobs() error {
	if _, err := s.engine.AddJob("0 */10 * * * *", s.creatorReconcileJob); err != nil {
		return err
	}
	if _, err := s.engine.AddJob("@hourly", s.featuredAuditJob); err != nil {
		return err
	}
	return nil
}

func (s *Manager) Start() {
	log.Info("Cron 定时任务引擎启动")
	s.engine.Start()
}

// Stop 停止调度并等待正在执行的任务结束
func (s *Manager) Stop() {
	log.Info("Cron 定时任务引擎停止")
	<-s.engine.Stop().Done()
}

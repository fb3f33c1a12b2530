package cron

import (
	"fmt"
	log "log/slog"
)

// InitCron 注册任务后启动引擎；注册失败时引擎不启动
func InitCron(mgr *Manager) error {
	if err := mgr.RegisterJobs(); err != nil {
		return fmt.Errorf("register cron jobs: %w", err)
	}
	mgr.Start()
	log.Info("Cron jobs started", "jobs", mgr.Entries(), "next", mgr.NextRun())
	return nil
}

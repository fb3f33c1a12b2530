package cron

import (
	"Mosaic/internal/api/config"
	"Mosaic/internal/job"
	log "log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

const defaultCacheHealthSpec = "@every 30s"

type Manager struct {
	engine         *cron.Cron
	cfg            config.CronConfig
	cacheHealthJob *job.CacheHealthJob
}

func NewCronManager(cfg config.CronConfig, cacheHealthJob *job.CacheHealthJob) *Manager {
	return &Manager{
		engine:         cron.New(cron.WithSeconds(), cron.WithChain(cron.Recover(cronLogger{}))),
		cfg:            cfg,
		cacheHealthJob: cacheHealthJob,
	}
}

// RegisterJobs 注册定时任务
func (s *Manager) RegisterJobs() error {
	spec := s.cfg.CacheHealth
	if spec == "" {
		spec = defaultCacheHealthSpec
	}
	if _, err := s.engine.AddJob(spec, cron.NewChain(cron.SkipIfStillRunning(cronLogger{})).Then(s.cacheHealthJob)); err != nil {
		return err
	}
	log.Info("Cron job registered", "job", "cache_health", "spec", spec)
	return nil
}

func (s *Manager) Start() {
	log.Info("Cron 定时任务引擎启动")
	s.engine.Start()
}

// Stop 等待正在执行的任务结束
func (s *Manager) Stop() {
	log.Info("Cron 定时任务引擎停止")
	<-s.engine.Stop().Done()
}

func (s *Manager) Entries() int {
	return len(s.engine.Entries())
}

// NextRun 最近一次待执行时间，引擎未启动时为零值
func (s *Manager) NextRun() time.Time {
	var next time.Time
	for _, e := range s.engine.Entries() {
		if !e.Next.IsZero() && (next.IsZero() || e.Next.Before(next)) {
			next = e.Next
		}
	}
	return next
}

// cronLogger 将 cron 内部日志接入 slog
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	log.Debug(msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	log.Error(msg, append(keysAndValues, "err", err)...)
}

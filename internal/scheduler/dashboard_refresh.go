package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/metrics-dashboard/internal/config"
	"github.com/vfg2006/metrics-dashboard/internal/usecases/dashboard"
	"github.com/vfg2006/metrics-dashboard/pkg/log"
)

type DashboardRefreshService struct {
	scheduler *gocron.Scheduler
	engine    DashboardRefresher
	sessions  SessionWatcher
	config    config.Refresh

	syncRunning         bool
	syncMutex           sync.Mutex
	lastSyncStartedAt   time.Time
	lastSyncCompletedAt time.Time
	lastOutcome         dashboard.Outcome
}

func NewDashboardRefreshService(
	engine DashboardRefresher,
	sessions SessionWatcher,
	cfg *config.Config,
) *DashboardRefreshService {
	logrus.WithFields(logrus.Fields{
		"cron_schedule": cfg.Refresh.CronSchedule,
	}).Info("Configuração da atualização automática do painel carregada")

	return &DashboardRefreshService{
		scheduler: gocron.NewScheduler(time.Local),
		engine:    engine,
		sessions:  sessions,
		config:    cfg.Refresh,
	}
}

func (s *DashboardRefreshService) Start(ctx context.Context) error {
	if !s.config.Enabled {
		logrus.Info("Atualização automática do painel desabilitada por configuração")
		return nil
	}

	logrus.WithField("cron", s.config.CronSchedule).Info("Iniciando atualização automática do painel")

	_, err := s.scheduler.Cron(s.config.CronSchedule).Do(func() {
		s.RefreshDashboard(ctx)
	})
	if err != nil {
		return fmt.Errorf("erro ao agendar atualização do painel: %w", err)
	}

	s.scheduler.StartAsync()

	go func() {
		<-ctx.Done()
		logrus.Info("Parando atualização automática do painel")
		s.scheduler.Stop()
	}()

	return nil
}

// RefreshDashboard repete a consulta atual. Só roda com sessão ativa, depois
// da primeira carga e sem outra busca em andamento.
func (s *DashboardRefreshService) RefreshDashboard(ctx context.Context) bool {
	s.syncMutex.Lock()
	if s.syncRunning {
		s.syncMutex.Unlock()
		logrus.Debug("Atualização do painel já está em execução")
		return false
	}
	s.syncRunning = true
	s.lastSyncStartedAt = time.Now()
	s.syncMutex.Unlock()

	outcome, ran := s.refresh(ctx)

	s.syncMutex.Lock()
	s.syncRunning = false
	if ran {
		s.lastSyncCompletedAt = time.Now()
		s.lastOutcome = outcome
	}
	s.syncMutex.Unlock()

	return ran
}

func (s *DashboardRefreshService) refresh(ctx context.Context) (dashboard.Outcome, bool) {
	if s.sessions.Current() == nil {
		return "", false
	}

	snap := s.engine.Snapshot()
	if !snap.Loaded || snap.State == dashboard.StateFetching || snap.State == dashboard.StateUnauthorized {
		return "", false
	}

	ctx, _ = log.WithCorrelationID(ctx)
	res := s.engine.Refresh(ctx)

	log.ForContext(ctx).WithField("outcome", res.Outcome).Debug("Painel atualizado automaticamente")

	return res.Outcome, true
}

// TriggerManualSync dispara a atualização fora do agendamento
func (s *DashboardRefreshService) TriggerManualSync(ctx context.Context) {
	logrus.Info("Iniciando atualização manual do painel")
	go s.RefreshDashboard(context.WithoutCancel(ctx))
}

// GetStatus retorna o status atual do agendador
func (s *DashboardRefreshService) GetStatus() map[string]any {
	s.syncMutex.Lock()
	defer s.syncMutex.Unlock()

	return map[string]any{
		"sync_enabled":           s.config.Enabled,
		"sync_cron":              s.config.CronSchedule,
		"sync_running":           s.syncRunning,
		"last_sync_started_at":   s.lastSyncStartedAt,
		"last_sync_completed_at": s.lastSyncCompletedAt,
		"last_outcome":           s.lastOutcome,
	}
}

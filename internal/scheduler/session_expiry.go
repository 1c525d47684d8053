package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/metrics-dashboard/internal/config"
	"github.com/vfg2006/metrics-dashboard/internal/usecases/authenticating"
	"github.com/vfg2006/metrics-dashboard/internal/usecases/session"
)

// SessionExpiryService encerra a sessão quando o exp do token passa, sem
// esperar o próximo 401 da API.
type SessionExpiryService struct {
	scheduler *gocron.Scheduler
	sessions  SessionWatcher
	config    config.SessionWatch
	now       func() time.Time

	syncMutex     sync.Mutex
	lastCheckedAt time.Time
	invalidations int
}

func NewSessionExpiryService(sessions SessionWatcher, cfg *config.Config) *SessionExpiryService {
	return &SessionExpiryService{
		scheduler: gocron.NewScheduler(time.Local),
		sessions:  sessions,
		config:    cfg.SessionWatch,
		now:       time.Now,
	}
}

func (s *SessionExpiryService) Start(ctx context.Context) error {
	if !s.config.Enabled {
		logrus.Info("Verificação de expiração de sessão desabilitada por configuração")
		return nil
	}

	_, err := s.scheduler.Cron(s.config.CronSchedule).Do(func() {
		if _, err := s.CheckExpiry(ctx); err != nil {
			logrus.WithError(err).Error("Erro ao verificar expiração da sessão")
		}
	})
	if err != nil {
		return fmt.Errorf("erro ao agendar verificação de expiração: %w", err)
	}

	s.scheduler.StartAsync()

	go func() {
		<-ctx.Done()
		logrus.Info("Parando verificação de expiração de sessão")
		s.scheduler.Stop()
	}()

	return nil
}

// CheckExpiry invalida a sessão se o token expirou ou não pode mais ser lido
func (s *SessionExpiryService) CheckExpiry(ctx context.Context) (bool, error) {
	s.syncMutex.Lock()
	s.lastCheckedAt = s.now()
	s.syncMutex.Unlock()

	current := s.sessions.Current()
	if current == nil {
		return false, nil
	}

	reason := ""
	info, err := authenticating.DecodeToken(current.Token)
	switch {
	case err != nil:
		reason = session.ReasonMalformed
	case info.Expired(s.now()):
		reason = session.ReasonExpired
	default:
		return false, nil
	}

	invalidated, err := s.sessions.InvalidateToken(ctx, current.Token, reason)
	if err != nil {
		return false, err
	}
	if !invalidated {
		return false, nil
	}

	s.syncMutex.Lock()
	s.invalidations++
	s.syncMutex.Unlock()

	return true, nil
}

func (s *SessionExpiryService) GetStatus() map[string]any {
	s.syncMutex.Lock()
	defer s.syncMutex.Unlock()

	return map[string]any{
		"sync_enabled":    s.config.Enabled,
		"sync_cron":       s.config.CronSchedule,
		"last_checked_at": s.lastCheckedAt,
		"invalidations":   s.invalidations,
	}
}
